package cmd

import (
	"slices"
	"testing"
)

func TestNewAppCommands(t *testing.T) {
	app := NewApp()

	if app.Name != "shiplint" {
		t.Errorf("Name = %q", app.Name)
	}

	var names []string
	for _, sub := range app.Commands {
		names = append(names, sub.Name)
	}
	for _, want := range []string{"check", "rules", "version"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing %q command, have %v", want, names)
		}
	}
}

func TestCheckCommandFlags(t *testing.T) {
	check := checkCommand()

	var names []string
	for _, flag := range check.Flags {
		names = append(names, flag.Names()...)
	}
	for _, want := range []string{"format", "chart", "config", "threshold", "no-fail", "fixable-only", "debug"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing flag %q, have %v", want, names)
		}
	}
}
