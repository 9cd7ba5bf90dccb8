package buildfile

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, content string) *ParseResult {
	t.Helper()
	result, err := Parse([]byte(content), "Dockerfile")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return result
}

func TestParseBasics(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantInsts     int
		wantComments  int
		wantLines     int
		wantInstNames []string
	}{
		{
			name:          "simple",
			content:       "FROM alpine:3.18\nRUN echo hello\n",
			wantInsts:     2,
			wantLines:     2,
			wantInstNames: []string{"FROM", "RUN"},
		},
		{
			name:          "comments and blanks skipped",
			content:       "# header\n\nFROM alpine:3.18\n# mid\nCMD [\"sh\"]\n",
			wantInsts:     2,
			wantComments:  2,
			wantLines:     5,
			wantInstNames: []string{"FROM", "CMD"},
		},
		{
			name:          "no trailing newline",
			content:       "FROM alpine:3.18",
			wantInsts:     1,
			wantLines:     1,
			wantInstNames: []string{"FROM"},
		},
		{
			name:          "byte order mark stripped",
			content:       "\uFEFFFROM alpine:3.18\n",
			wantInsts:     1,
			wantLines:     1,
			wantInstNames: []string{"FROM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustParse(t, tt.content)
			if got := len(result.Instructions); got != tt.wantInsts {
				t.Errorf("instructions = %d, want %d", got, tt.wantInsts)
			}
			if got := len(result.Comments); got != tt.wantComments {
				t.Errorf("comments = %d, want %d", got, tt.wantComments)
			}
			if result.TotalLines != tt.wantLines {
				t.Errorf("TotalLines = %d, want %d", result.TotalLines, tt.wantLines)
			}
			for i, want := range tt.wantInstNames {
				if got := result.Instructions[i].Inst.Name(); got != want {
					t.Errorf("instruction %d name = %s, want %s", i, got, want)
				}
			}
		})
	}
}

func TestParseLineNumbers(t *testing.T) {
	content := "# comment\nFROM alpine:3.18\n\nRUN apk add --no-cache \\\n    curl \\\n    wget\nCMD [\"sh\"]\n"
	result := mustParse(t, content)

	wantLines := []int{2, 4, 7}
	if len(result.Instructions) != len(wantLines) {
		t.Fatalf("instructions = %d, want %d", len(result.Instructions), len(wantLines))
	}
	prev := 0
	for i, want := range wantLines {
		got := result.Instructions[i].Line
		if got != want {
			t.Errorf("instruction %d line = %d, want %d", i, got, want)
		}
		if got <= prev {
			t.Errorf("instruction %d line %d not strictly increasing after %d", i, got, prev)
		}
		prev = got
	}
}

func TestParseContinuations(t *testing.T) {
	t.Run("joined across lines", func(t *testing.T) {
		result := mustParse(t, "RUN apk add \\\n    curl \\\n    wget\n")
		run, ok := result.Instructions[0].Inst.(*Run)
		if !ok {
			t.Fatalf("instruction = %T, want *Run", result.Instructions[0].Inst)
		}
		if run.Cmd.Script != "apk add curl wget" {
			t.Errorf("script = %q", run.Cmd.Script)
		}
		if !strings.Contains(result.Instructions[0].Source, "\n") {
			t.Error("source should preserve the physical lines")
		}
	})

	t.Run("comment inside continuation", func(t *testing.T) {
		result := mustParse(t, "RUN apk add \\\n    # explain\n    curl\n")
		run := result.Instructions[0].Inst.(*Run)
		if run.Cmd.Script != "apk add curl" {
			t.Errorf("script = %q", run.Cmd.Script)
		}
	})

	t.Run("eof after continuation", func(t *testing.T) {
		_, err := Parse([]byte("RUN apk add \\\n"), "Dockerfile")
		if err == nil {
			t.Fatal("want error for dangling continuation")
		}
		perr, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("error = %T, want *ParseError", err)
		}
		if !strings.Contains(perr.Message, "end of file") {
			t.Errorf("message = %q", perr.Message)
		}
	})
}

func TestParseEscapeDirective(t *testing.T) {
	content := "# escape=`\nFROM alpine:3.18\nRUN echo one `\n    two\n"
	result := mustParse(t, content)
	if result.EscapeChar != '`' {
		t.Fatalf("EscapeChar = %c, want `", result.EscapeChar)
	}
	run := result.Instructions[1].Inst.(*Run)
	if run.Cmd.Script != "echo one two" {
		t.Errorf("script = %q", run.Cmd.Script)
	}
}

func TestParseFrom(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    From
		wantErr bool
	}{
		{
			name: "bare image",
			line: "FROM ubuntu",
			want: From{Image: "ubuntu", BaseRaw: "ubuntu"},
		},
		{
			name: "tagged",
			line: "FROM ubuntu:22.04",
			want: From{Image: "ubuntu", Tag: "22.04", BaseRaw: "ubuntu:22.04"},
		},
		{
			name: "registry with port keeps tag separate",
			line: "FROM registry.example.com:5000/app",
			want: From{Image: "registry.example.com:5000/app", BaseRaw: "registry.example.com:5000/app"},
		},
		{
			name: "digest",
			line: "FROM alpine@sha256:c5b1261d6d3e43071626931fc004f70149baeba2c8ec672bd4f27761f8e1ad6b",
			want: From{
				Image:   "alpine",
				Digest:  "sha256:c5b1261d6d3e43071626931fc004f70149baeba2c8ec672bd4f27761f8e1ad6b",
				BaseRaw: "alpine@sha256:c5b1261d6d3e43071626931fc004f70149baeba2c8ec672bd4f27761f8e1ad6b",
			},
		},
		{
			name: "alias",
			line: "FROM golang:1.22 AS builder",
			want: From{Image: "golang", Tag: "1.22", Alias: "builder", BaseRaw: "golang:1.22"},
		},
		{
			name: "platform flag",
			line: "FROM --platform=linux/amd64 alpine:3.18",
			want: From{Image: "alpine", Tag: "3.18", Platform: "linux/amd64", BaseRaw: "alpine:3.18"},
		},
		{
			name: "variable platform skips validation",
			line: "FROM --platform=$BUILDPLATFORM alpine",
			want: From{Image: "alpine", Platform: "$BUILDPLATFORM", BaseRaw: "alpine"},
		},
		{
			name:    "invalid platform",
			line:    "FROM --platform=not/a/real/platform/at/all alpine",
			wantErr: true,
		},
		{
			name:    "invalid digest",
			line:    "FROM alpine@sha256:notadigest",
			wantErr: true,
		},
		{
			name:    "missing image",
			line:    "FROM",
			wantErr: true,
		},
		{
			name:    "garbage after image",
			line:    "FROM alpine WITH feelings",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse([]byte(tt.line+"\n"), "Dockerfile")
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got := result.Instructions[0].Inst.(*From)
			if *got != tt.want {
				t.Errorf("From = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseRun(t *testing.T) {
	t.Run("shell form", func(t *testing.T) {
		result := mustParse(t, "RUN echo hello\n")
		run := result.Instructions[0].Inst.(*Run)
		if run.Cmd.Exec {
			t.Error("want shell form")
		}
		if run.Cmd.Script != "echo hello" {
			t.Errorf("script = %q", run.Cmd.Script)
		}
	})

	t.Run("exec form", func(t *testing.T) {
		result := mustParse(t, `RUN ["echo", "hello"]` + "\n")
		run := result.Instructions[0].Inst.(*Run)
		if !run.Cmd.Exec {
			t.Fatal("want exec form")
		}
		if len(run.Cmd.Args) != 2 || run.Cmd.Args[0] != "echo" {
			t.Errorf("args = %v", run.Cmd.Args)
		}
	})

	t.Run("mount flag", func(t *testing.T) {
		result := mustParse(t, "RUN --mount=type=cache,target=/root/.cache go build ./...\n")
		run := result.Instructions[0].Inst.(*Run)
		if len(run.Mounts) != 1 {
			t.Fatalf("mounts = %d", len(run.Mounts))
		}
		if run.Mounts[0].Type != "cache" {
			t.Errorf("mount type = %q", run.Mounts[0].Type)
		}
		if run.Mounts[0].Options["target"] != "/root/.cache" {
			t.Errorf("mount options = %v", run.Mounts[0].Options)
		}
		if run.Cmd.Script != "go build ./..." {
			t.Errorf("script = %q", run.Cmd.Script)
		}
	})

	t.Run("network flag", func(t *testing.T) {
		result := mustParse(t, "RUN --network=none true\n")
		run := result.Instructions[0].Inst.(*Run)
		if run.Network != "none" {
			t.Errorf("network = %q", run.Network)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Parse([]byte("RUN\n"), "Dockerfile"); err == nil {
			t.Error("want error for empty RUN")
		}
	})
}

func TestParseCopyAdd(t *testing.T) {
	t.Run("copy with flags", func(t *testing.T) {
		result := mustParse(t, "COPY --from=builder --chown=app:app /src/app /usr/local/bin/app\n")
		cp := result.Instructions[0].Inst.(*Copy)
		if cp.From != "builder" || cp.Chown != "app:app" {
			t.Errorf("Copy = %+v", cp)
		}
		if len(cp.Sources) != 1 || cp.Sources[0] != "/src/app" || cp.Dest != "/usr/local/bin/app" {
			t.Errorf("sources/dest = %v %q", cp.Sources, cp.Dest)
		}
	})

	t.Run("copy json form", func(t *testing.T) {
		result := mustParse(t, `COPY ["a file", "b file", "/dest dir/"]` + "\n")
		cp := result.Instructions[0].Inst.(*Copy)
		if len(cp.Sources) != 2 || cp.Sources[0] != "a file" || cp.Dest != "/dest dir/" {
			t.Errorf("sources = %v dest = %q", cp.Sources, cp.Dest)
		}
	})

	t.Run("add specific flags", func(t *testing.T) {
		result := mustParse(t, "ADD --checksum=sha256:abc --keep-git-dir https://example.com/repo.git /src\n")
		add := result.Instructions[0].Inst.(*Add)
		if add.Checksum != "sha256:abc" || !add.KeepGitDir {
			t.Errorf("Add = %+v", add)
		}
	})

	t.Run("copy rejects from-less add flags", func(t *testing.T) {
		if _, err := Parse([]byte("COPY --checksum=sha256:abc a b\n"), "Dockerfile"); err == nil {
			t.Error("want error for COPY --checksum")
		}
	})

	t.Run("missing dest", func(t *testing.T) {
		if _, err := Parse([]byte("COPY onlyone\n"), "Dockerfile"); err == nil {
			t.Error("want error for single argument")
		}
	})
}

func TestParseEnvLabel(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []KeyValue
		wantErr bool
	}{
		{
			name: "modern pairs",
			line: `ENV FOO=bar BAZ="with space"`,
			want: []KeyValue{{Key: "FOO", Value: "bar"}, {Key: "BAZ", Value: "with space"}},
		},
		{
			name: "legacy form",
			line: "ENV FOO bar baz",
			want: []KeyValue{{Key: "FOO", Value: "bar baz"}},
		},
		{
			name: "label quoted key",
			line: `LABEL "com.example.vendor"="ACME Inc"`,
			want: []KeyValue{{Key: "com.example.vendor", Value: "ACME Inc"}},
		},
		{
			name:    "empty",
			line:    "ENV",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse([]byte(tt.line+"\n"), "Dockerfile")
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			var pairs []KeyValue
			switch inst := result.Instructions[0].Inst.(type) {
			case *Env:
				pairs = inst.Pairs
			case *Label:
				pairs = inst.Pairs
			default:
				t.Fatalf("instruction = %T", inst)
			}
			if len(pairs) != len(tt.want) {
				t.Fatalf("pairs = %v, want %v", pairs, tt.want)
			}
			for i := range pairs {
				if pairs[i] != tt.want[i] {
					t.Errorf("pair %d = %+v, want %+v", i, pairs[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseExpose(t *testing.T) {
	result := mustParse(t, "EXPOSE 80 443/tcp 53/udp\n")
	expose := result.Instructions[0].Inst.(*Expose)
	want := []Port{{Port: "80", Protocol: "tcp"}, {Port: "443", Protocol: "tcp"}, {Port: "53", Protocol: "udp"}}
	if len(expose.Ports) != len(want) {
		t.Fatalf("ports = %v", expose.Ports)
	}
	for i := range want {
		if expose.Ports[i] != want[i] {
			t.Errorf("port %d = %+v, want %+v", i, expose.Ports[i], want[i])
		}
	}
}

func TestParseArg(t *testing.T) {
	result := mustParse(t, "ARG VERSION=1.0 NAME\n")
	arg := result.Instructions[0].Inst.(*Arg)
	if len(arg.Args) != 2 {
		t.Fatalf("args = %v", arg.Args)
	}
	if arg.Args[0].Key != "VERSION" || arg.Args[0].Default == nil || *arg.Args[0].Default != "1.0" {
		t.Errorf("arg 0 = %+v", arg.Args[0])
	}
	if arg.Args[1].Key != "NAME" || arg.Args[1].Default != nil {
		t.Errorf("arg 1 = %+v", arg.Args[1])
	}
}

func TestParseShellInstruction(t *testing.T) {
	result := mustParse(t, `SHELL ["/bin/bash", "-c"]` + "\n")
	sh := result.Instructions[0].Inst.(*Shell)
	if !sh.Cmd.Exec || sh.Cmd.Args[0] != "/bin/bash" {
		t.Errorf("Shell = %+v", sh)
	}

	if _, err := Parse([]byte("SHELL /bin/bash -c\n"), "Dockerfile"); err == nil {
		t.Error("want error for shell-form SHELL")
	}
}

func TestParseHealthcheck(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		result := mustParse(t, "HEALTHCHECK NONE\n")
		hc := result.Instructions[0].Inst.(*Healthcheck)
		if !hc.None {
			t.Error("want None")
		}
	})

	t.Run("flags and cmd", func(t *testing.T) {
		result := mustParse(t, "HEALTHCHECK --interval=30s --retries=3 CMD curl -f http://localhost/\n")
		hc := result.Instructions[0].Inst.(*Healthcheck)
		if hc.Interval == nil || hc.Interval.String() != "30s" {
			t.Errorf("interval = %v", hc.Interval)
		}
		if hc.Retries == nil || *hc.Retries != 3 {
			t.Errorf("retries = %v", hc.Retries)
		}
		if hc.Cmd == nil || hc.Cmd.Script != "curl -f http://localhost/" {
			t.Errorf("cmd = %+v", hc.Cmd)
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		if _, err := Parse([]byte("HEALTHCHECK --interval=sometimes CMD true\n"), "Dockerfile"); err == nil {
			t.Error("want error")
		}
	})

	t.Run("missing cmd keyword", func(t *testing.T) {
		if _, err := Parse([]byte("HEALTHCHECK curl -f http://localhost/\n"), "Dockerfile"); err == nil {
			t.Error("want error")
		}
	})
}

func TestParseOnbuild(t *testing.T) {
	result := mustParse(t, "ONBUILD COPY . /app\n")
	ob := result.Instructions[0].Inst.(*Onbuild)
	inner, ok := ob.Inner.(*Copy)
	if !ok {
		t.Fatalf("inner = %T, want *Copy", ob.Inner)
	}
	if inner.Dest != "/app" {
		t.Errorf("dest = %q", inner.Dest)
	}

	if _, err := Parse([]byte("ONBUILD ONBUILD RUN true\n"), "Dockerfile"); err == nil {
		t.Error("want error for nested ONBUILD")
	}
}

func TestParseMaintainer(t *testing.T) {
	result := mustParse(t, "MAINTAINER Jane Doe <jane@example.com>\n")
	m := result.Instructions[0].Inst.(*Maintainer)
	if m.Author != "Jane Doe <jane@example.com>" {
		t.Errorf("author = %q", m.Author)
	}
	if m.Name() != "MAINTAINER" {
		t.Errorf("name = %q", m.Name())
	}
}

func TestParseUnknownInstruction(t *testing.T) {
	_, err := Parse([]byte("FRMO alpine\n"), "Dockerfile")
	if err == nil {
		t.Fatal("want error")
	}
	perr := err.(*ParseError)
	if perr.Line != 1 {
		t.Errorf("line = %d, want 1", perr.Line)
	}
	if !strings.Contains(perr.Message, "unknown instruction") {
		t.Errorf("message = %q", perr.Message)
	}
	if !strings.Contains(perr.Error(), "Dockerfile:1:") {
		t.Errorf("Error() = %q", perr.Error())
	}
}

func TestParseIdempotent(t *testing.T) {
	content := "FROM alpine:3.18\nRUN apk add \\\n    curl\nEXPOSE 8080\n"
	first := mustParse(t, content)
	second := mustParse(t, content)

	if len(first.Instructions) != len(second.Instructions) {
		t.Fatal("instruction counts differ across parses")
	}
	for i := range first.Instructions {
		if first.Instructions[i].Line != second.Instructions[i].Line ||
			first.Instructions[i].Source != second.Instructions[i].Source ||
			first.Instructions[i].Inst.Name() != second.Instructions[i].Inst.Name() {
			t.Errorf("instruction %d differs across parses", i)
		}
	}
}
