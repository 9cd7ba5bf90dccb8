package dl

import (
	"testing"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
)

// runRule feeds a parsed build script through one streaming rule, including
// the unwrapped inner instructions of ONBUILD wrappers.
func runRule(t *testing.T, rule rules.StreamingRule, content string) []rules.Failure {
	t.Helper()
	parsed, err := buildfile.Parse([]byte(content), "Dockerfile")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	state := rule.NewState()
	var failures []rules.Failure
	for _, inst := range parsed.Instructions {
		failures = append(failures, rule.Check(state, inst)...)
		if ob, ok := inst.Inst.(*buildfile.Onbuild); ok {
			failures = append(failures, rule.Check(state, buildfile.PositionedInstruction{
				Inst:   ob.Inner,
				Line:   inst.Line,
				Source: inst.Source,
			})...)
		}
	}
	return append(failures, rule.Finalize(state)...)
}

func TestWorkdirAbsolute(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		failures int
	}{
		{"absolute", "FROM alpine:3.18\nWORKDIR /app\n", 0},
		{"relative", "FROM alpine:3.18\nWORKDIR app\n", 1},
		{"quoted relative", "FROM alpine:3.18\nWORKDIR \"app\"\n", 1},
		{"variable", "FROM alpine:3.18\nWORKDIR $HOME\n", 0},
		{"windows drive", "FROM alpine:3.18\nWORKDIR C:\\\\app\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runRule(t, &WorkdirAbsolute{}, tt.content)
			if len(got) != tt.failures {
				t.Errorf("failures = %v, want %d", got, tt.failures)
			}
		})
	}
}

func TestUntaggedImage(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		failures int
	}{
		{"untagged", "FROM ubuntu\n", 1},
		{"tagged", "FROM ubuntu:22.04\n", 0},
		{"digest pinned", "FROM alpine@sha256:c5b1261d6d3e43071626931fc004f70149baeba2c8ec672bd4f27761f8e1ad6b\n", 0},
		{"scratch", "FROM scratch\n", 0},
		{"arg reference", "ARG BASE\nFROM $BASE\n", 0},
		{"stage alias", "FROM golang:1.22 AS builder\nFROM builder\n", 0},
		{"stage index", "FROM golang:1.22\nFROM 0\n", 0},
		{"alias case insensitive", "FROM golang:1.22 AS Builder\nFROM builder\n", 0},
		{"two untagged stages", "FROM ubuntu\nFROM debian\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runRule(t, &UntaggedImage{}, tt.content)
			if len(got) != tt.failures {
				t.Errorf("failures = %v, want %d", got, tt.failures)
			}
		})
	}
}

func TestLatestTag(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		failures int
	}{
		{"latest", "FROM ubuntu:latest\n", 1},
		{"pinned", "FROM ubuntu:22.04\n", 0},
		{"untagged is not latest", "FROM ubuntu\n", 0},
		{"stage reuse exempt", "FROM ubuntu:22.04 AS base\nFROM base\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runRule(t, &LatestTag{}, tt.content)
			if len(got) != tt.failures {
				t.Errorf("failures = %v, want %d", got, tt.failures)
			}
			for _, f := range got {
				if !f.Fixable {
					t.Error("latest-tag failures carry a fix")
				}
			}
		})
	}
}

func TestValidPorts(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		failures int
	}{
		{"valid", "FROM alpine:3.18\nEXPOSE 80 443/tcp\n", 0},
		{"out of range", "FROM alpine:3.18\nEXPOSE 70000\n", 1},
		{"valid range", "FROM alpine:3.18\nEXPOSE 8000-8010\n", 0},
		{"bad range end", "FROM alpine:3.18\nEXPOSE 8000-99999\n", 1},
		{"variable", "FROM alpine:3.18\nEXPOSE $PORT\n", 0},
		{"not a number", "FROM alpine:3.18\nEXPOSE http\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runRule(t, &ValidPorts{}, tt.content)
			if len(got) != tt.failures {
				t.Errorf("failures = %v, want %d", got, tt.failures)
			}
		})
	}
}

func TestUseCopy(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		failures int
	}{
		{"plain file", "FROM alpine:3.18\nADD app.conf /etc/\n", 1},
		{"url", "FROM alpine:3.18\nADD https://example.com/x /tmp/\n", 0},
		{"archive", "FROM alpine:3.18\nADD rootfs.tar.gz /\n", 0},
		{"variable source", "FROM alpine:3.18\nADD $SRC /app/\n", 0},
		{"copy is fine", "FROM alpine:3.18\nCOPY app.conf /etc/\n", 0},
		{"inside onbuild", "FROM alpine:3.18\nONBUILD ADD app.conf /etc/\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runRule(t, &UseCopy{}, tt.content)
			if len(got) != tt.failures {
				t.Errorf("failures = %v, want %d", got, tt.failures)
			}
		})
	}
}

func TestWgetOrCurl(t *testing.T) {
	t.Run("both used", func(t *testing.T) {
		content := "FROM alpine:3.18\nRUN wget http://a\nRUN curl http://b\n"
		got := runRule(t, &WgetOrCurl{}, content)
		if len(got) != 2 {
			t.Fatalf("failures = %v, want 2", got)
		}
		lines := []int{got[0].Line, got[1].Line}
		if lines[0] != 2 || lines[1] != 3 {
			t.Errorf("lines = %v, want [2 3]", lines)
		}
	})

	t.Run("only one tool", func(t *testing.T) {
		got := runRule(t, &WgetOrCurl{}, "FROM alpine:3.18\nRUN curl http://a\nRUN curl http://b\n")
		if len(got) != 0 {
			t.Errorf("failures = %v, want none", got)
		}
	})

	t.Run("both in one run", func(t *testing.T) {
		got := runRule(t, &WgetOrCurl{}, "FROM alpine:3.18\nRUN wget http://a && curl http://b\n")
		if len(got) != 2 {
			t.Errorf("failures = %v, want 2", got)
		}
	})
}

func TestMultipleCmd(t *testing.T) {
	t.Run("duplicates in one stage", func(t *testing.T) {
		content := "FROM alpine:3.18\nCMD [\"a\"]\nCMD [\"b\"]\nCMD [\"c\"]\n"
		got := runRule(t, &MultipleCmd{}, content)
		if len(got) != 2 {
			t.Fatalf("failures = %v, want 2 (all but the last)", got)
		}
		if got[0].Line != 2 || got[1].Line != 3 {
			t.Errorf("lines = %d, %d; want 2, 3", got[0].Line, got[1].Line)
		}
	})

	t.Run("one per stage", func(t *testing.T) {
		content := "FROM alpine:3.18 AS a\nCMD [\"a\"]\nFROM alpine:3.18\nCMD [\"b\"]\n"
		got := runRule(t, &MultipleCmd{}, content)
		if len(got) != 0 {
			t.Errorf("failures = %v, want none", got)
		}
	})

	t.Run("duplicates in earlier stage", func(t *testing.T) {
		content := "FROM alpine:3.18 AS a\nCMD [\"a\"]\nCMD [\"b\"]\nFROM alpine:3.18\nCMD [\"c\"]\n"
		got := runRule(t, &MultipleCmd{}, content)
		if len(got) != 1 || got[0].Line != 2 {
			t.Errorf("failures = %v, want one at line 2", got)
		}
	})
}

func TestLabelKeys(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		failures int
	}{
		{"valid keys", "FROM alpine:3.18\nLABEL com.example.team=core version=1\n", 0},
		{"uppercase", "FROM alpine:3.18\nLABEL Maintainer=me\n", 1},
		{"known oci annotation", "FROM alpine:3.18\nLABEL org.opencontainers.image.source=https://example.com\n", 0},
		{"unknown oci key", "FROM alpine:3.18\nLABEL org.opencontainers.image.sauce=https://example.com\n", 1},
		{"variable key", "FROM alpine:3.18\nLABEL ${KEY}=x\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runRule(t, &LabelKeys{}, tt.content)
			if len(got) != tt.failures {
				t.Errorf("failures = %v, want %d", got, tt.failures)
			}
		})
	}
}

func TestLabelKeysConfigure(t *testing.T) {
	base := &LabelKeys{}
	configured := base.Configure(map[string]any{"allow": []any{"Internal."}})

	streaming := configured.(rules.StreamingRule)
	got := runRule(t, streaming, "FROM alpine:3.18\nLABEL Internal.Build=1\n")
	if len(got) != 0 {
		t.Errorf("allowed prefix should pass: %v", got)
	}

	// The original rule is untouched.
	got = runRule(t, base, "FROM alpine:3.18\nLABEL Internal.Build=1\n")
	if len(got) != 1 {
		t.Errorf("unconfigured rule should still flag: %v", got)
	}
}

func TestMetadataWellFormed(t *testing.T) {
	for _, rule := range []rules.Rule{
		&WorkdirAbsolute{}, &UntaggedImage{}, &LatestTag{}, &ValidPorts{},
		&UseCopy{}, &WgetOrCurl{}, &MultipleCmd{}, &LabelKeys{},
	} {
		md := rule.Metadata()
		if md.Code == "" || md.Name == "" || md.Description == "" {
			t.Errorf("incomplete metadata: %+v", md)
		}
		if md.Category != "buildfile" {
			t.Errorf("%s category = %q", md.Code, md.Category)
		}
		if !md.EnabledByDefault {
			t.Errorf("%s should be enabled by default", md.Code)
		}
	}
}
