// Package shell extracts command names from the shell fragments inside
// build-script instructions. It wraps mvdan.cc/sh/v3/syntax so rules get a
// simple API instead of a full shell AST.
package shell

import (
	"path"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/shiplint/shiplint/internal/buildfile"
)

// Commands returns the command names invoked by a RUN-style argument.
// Exec form yields at most the first argument; shell form is parsed as bash
// and every call expression contributes its first word.
func Commands(cmd buildfile.ShellOrExec) []string {
	if cmd.Exec {
		if len(cmd.Args) == 0 {
			return nil
		}
		return []string{path.Base(cmd.Args[0])}
	}
	return scriptCommands(cmd.Script)
}

// Invokes reports whether the argument invokes the named command.
func Invokes(cmd buildfile.ShellOrExec, name string) bool {
	return slices.Contains(Commands(cmd), name)
}

// scriptCommands parses a shell script and collects the first word of every
// call expression. Unparseable scripts fall back to coarse word splitting;
// a rule working from a fallback result sees the same approximation the
// reference tool produces.
func scriptCommands(script string) []string {
	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash), // RUN uses bash semantics by default
		syntax.KeepComments(false),
	)

	prog, err := parser.Parse(strings.NewReader(script), "")
	if err != nil {
		return fallbackCommands(script)
	}

	var names []string
	syntax.Walk(prog, func(node syntax.Node) bool {
		if call, ok := node.(*syntax.CallExpr); ok && len(call.Args) > 0 {
			if name := call.Args[0].Lit(); name != "" {
				names = append(names, path.Base(name))
			}
		}
		return true
	})
	return names
}

// fallbackCommands splits on shell operators and takes the first
// non-assignment, non-flag word of each sequence.
func fallbackCommands(script string) []string {
	const marker = "\x00"
	for _, sep := range []string{"&&", "||", ";", "|", "`", "$(", "\n"} {
		script = strings.ReplaceAll(script, sep, marker)
	}

	var names []string
	for _, seq := range strings.Split(script, marker) {
		for _, word := range strings.Fields(seq) {
			if strings.Contains(word, "=") || strings.HasPrefix(word, "-") {
				continue
			}
			names = append(names, path.Base(word))
			break
		}
	}
	return names
}
