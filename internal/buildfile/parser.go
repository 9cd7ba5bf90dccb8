package buildfile

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/platforms"
	"github.com/moby/buildkit/frontend/dockerfile/command"
	"github.com/opencontainers/go-digest"
)

// ParseError is a structural error in a build script. The parser is
// fail-fast: the first ParseError aborts the file's parse.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// ParseResult contains the parsed build script.
type ParseResult struct {
	// Instructions is the ordered instruction stream, 1-indexed lines.
	Instructions []PositionedInstruction
	// Comments is the auxiliary comment layer (full-line comments only).
	Comments []Comment
	// TotalLines is the number of physical lines in the file.
	TotalLines int
	// EscapeChar is the effective line-continuation character.
	EscapeChar byte
}

// ParseFile reads and parses a build script from disk.
// If path is "-", it reads from stdin.
func ParseFile(path string) (*ParseResult, error) {
	var content []byte
	var err error
	if path == "-" {
		content, err = readAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return Parse(content, path)
}

// Parse parses raw build-script text. The file argument is used only for
// error attribution and may be empty.
func Parse(content []byte, file string) (*ParseResult, error) {
	text := strings.TrimPrefix(string(content), "\uFEFF")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	result := &ParseResult{
		TotalLines: len(lines),
		EscapeChar: escapeChar(lines),
	}

	p := &parser{file: file, lines: lines, escape: result.EscapeChar}

	for i := 0; i < len(lines); i++ {
		lineNo := i + 1
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			result.Comments = append(result.Comments, Comment{
				Line: lineNo,
				Text: strings.TrimPrefix(trimmed, "#"),
			})
			continue
		}

		logical, source, next, err := p.joinLogicalLine(i)
		if err != nil {
			return nil, err
		}
		i = next

		inst, err := p.parseLine(logical, lineNo)
		if err != nil {
			return nil, err
		}
		result.Instructions = append(result.Instructions, PositionedInstruction{
			Inst:   inst,
			Line:   lineNo,
			Source: source,
		})
	}

	return result, nil
}

var escapeDirective = regexp.MustCompile(`^#\s*escape\s*=\s*(\\|` + "`" + `)\s*$`)

// escapeChar inspects leading comment lines for a "# escape=" parser
// directive; only comments before the first instruction count.
func escapeChar(lines []string) byte {
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		if m := escapeDirective.FindStringSubmatch(trimmed); m != nil {
			return m[1][0]
		}
	}
	return '\\'
}

type parser struct {
	file   string
	lines  []string
	escape byte
}

// joinLogicalLine merges continuation lines starting at physical index i.
// It returns the joined instruction text, the original source text, and
// the index of the last consumed physical line. Comment and blank lines
// inside a continuation are skipped, matching the build tool.
func (p *parser) joinLogicalLine(i int) (logical, source string, last int, err error) {
	var parts []string
	var srcLines []string

	for ; i < len(p.lines); i++ {
		raw := p.lines[i]
		trimmed := strings.TrimSpace(raw)
		if len(parts) > 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				srcLines = append(srcLines, raw)
				continue
			}
		}
		srcLines = append(srcLines, raw)
		cont := false
		if strings.HasSuffix(trimmed, string(p.escape)) && !strings.HasSuffix(trimmed, string(p.escape)+string(p.escape)) {
			cont = true
			trimmed = strings.TrimSpace(trimmed[:len(trimmed)-1])
		}
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
		if !cont {
			return strings.Join(parts, " "), strings.Join(srcLines, "\n"), i, nil
		}
	}

	return "", "", i - 1, &ParseError{
		File:    p.file,
		Line:    len(p.lines),
		Message: "unexpected end of file after line continuation",
	}
}

// parseLine parses one joined logical line into a typed instruction.
func (p *parser) parseLine(logical string, line int) (Instruction, error) {
	name, rest, _ := strings.Cut(logical, " ")
	rest = strings.TrimSpace(rest)
	upper := strings.ToUpper(name)

	if _, known := command.Commands[strings.ToLower(name)]; !known {
		return nil, p.errf(line, "unknown instruction: %s", upper)
	}

	switch upper {
	case "FROM":
		return p.parseFrom(rest, line)
	case "RUN":
		return p.parseRun(rest, line)
	case "COPY":
		return p.parseCopy(rest, line)
	case "ADD":
		return p.parseAdd(rest, line)
	case "ENV":
		return p.parseKeyValues(rest, line, "ENV", func(pairs []KeyValue) Instruction { return &Env{Pairs: pairs} })
	case "LABEL":
		return p.parseKeyValues(rest, line, "LABEL", func(pairs []KeyValue) Instruction { return &Label{Pairs: pairs} })
	case "EXPOSE":
		return p.parseExpose(rest, line)
	case "ARG":
		return p.parseArg(rest, line)
	case "ENTRYPOINT":
		return &Entrypoint{Cmd: shellOrExec(rest)}, nil
	case "CMD":
		return &Cmd{Cmd: shellOrExec(rest)}, nil
	case "SHELL":
		return p.parseShell(rest, line)
	case "USER":
		if rest == "" {
			return nil, p.errf(line, "USER requires exactly one argument")
		}
		return &User{User: rest}, nil
	case "WORKDIR":
		if rest == "" {
			return nil, p.errf(line, "WORKDIR requires exactly one argument")
		}
		return &Workdir{Path: rest}, nil
	case "VOLUME":
		return p.parseVolume(rest, line)
	case "MAINTAINER":
		return &Maintainer{Author: rest}, nil
	case "STOPSIGNAL":
		if rest == "" || strings.ContainsAny(rest, " \t") {
			return nil, p.errf(line, "STOPSIGNAL requires exactly one argument")
		}
		return &Stopsignal{Signal: rest}, nil
	case "HEALTHCHECK":
		return p.parseHealthcheck(rest, line)
	case "ONBUILD":
		return p.parseOnbuild(rest, line)
	default:
		return nil, p.errf(line, "unknown instruction: %s", upper)
	}
}

func (p *parser) parseFrom(rest string, line int) (Instruction, error) {
	tokens := splitTokens(rest)
	from := &From{}

	for len(tokens) > 0 && strings.HasPrefix(tokens[0], "--") {
		flag, value, ok := cutFlag(tokens[0])
		if !ok || flag != "platform" {
			return nil, p.errf(line, "FROM: unsupported flag %s", tokens[0])
		}
		from.Platform = value
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, p.errf(line, "FROM requires a base image")
	}
	if from.Platform != "" && !strings.Contains(from.Platform, "$") {
		if _, err := platforms.Parse(from.Platform); err != nil {
			return nil, p.errf(line, "FROM: invalid platform %q: %v", from.Platform, err)
		}
	}

	from.BaseRaw = tokens[0]
	tokens = tokens[1:]

	base := from.BaseRaw
	if name, dig, ok := strings.Cut(base, "@"); ok {
		if !strings.Contains(dig, "$") {
			if _, err := digest.Parse(dig); err != nil {
				return nil, p.errf(line, "FROM: invalid digest %q: %v", dig, err)
			}
		}
		from.Digest = dig
		base = name
	}
	// A ':' after the last '/' separates the tag; earlier ones belong to a
	// registry host:port.
	if idx := strings.LastIndex(base, ":"); idx > strings.LastIndex(base, "/") {
		from.Tag = base[idx+1:]
		base = base[:idx]
	}
	from.Image = base

	switch len(tokens) {
	case 0:
	case 2:
		if !strings.EqualFold(tokens[0], "AS") {
			return nil, p.errf(line, "FROM: expected AS, got %q", tokens[0])
		}
		from.Alias = tokens[1]
	default:
		return nil, p.errf(line, "FROM: expected [--platform=...] image [AS name]")
	}

	return from, nil
}

func (p *parser) parseRun(rest string, line int) (Instruction, error) {
	run := &Run{}

	for {
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "--") {
			break
		}
		token, remainder, _ := strings.Cut(rest, " ")
		flag, value, _ := cutFlag(token)
		switch flag {
		case "mount":
			run.Mounts = append(run.Mounts, parseMount(value))
		case "network":
			run.Network = value
		case "security":
			run.Security = value
		default:
			return nil, p.errf(line, "RUN: unsupported flag --%s", flag)
		}
		rest = remainder
	}
	if rest == "" {
		return nil, p.errf(line, "RUN requires at least one argument")
	}

	run.Cmd = shellOrExec(rest)
	return run, nil
}

// copyFlags parses the leading --flag tokens shared by COPY and ADD and
// returns the remaining tokens.
type copyFlags struct {
	from, chown, chmod, checksum string
	link, keepGitDir             bool
	excludes                     []string
}

func (p *parser) parseCopyFlags(tokens []string, line int, name string, allowAdd bool) (copyFlags, []string, error) {
	var f copyFlags
	for len(tokens) > 0 && strings.HasPrefix(tokens[0], "--") {
		flag, value, hasValue := cutFlag(tokens[0])
		switch {
		case flag == "from" && !allowAdd:
			f.from = value
		case flag == "chown":
			f.chown = value
		case flag == "chmod":
			f.chmod = value
		case flag == "link":
			f.link = value != "false" || !hasValue
		case flag == "exclude":
			f.excludes = append(f.excludes, value)
		case flag == "checksum" && allowAdd:
			f.checksum = value
		case flag == "keep-git-dir" && allowAdd:
			f.keepGitDir = value != "false" || !hasValue
		default:
			return f, nil, p.errf(line, "%s: unsupported flag --%s", name, flag)
		}
		tokens = tokens[1:]
	}
	if len(tokens) < 2 {
		return f, nil, p.errf(line, "%s requires at least one source and a destination", name)
	}
	return f, tokens, nil
}

func (p *parser) parseCopy(rest string, line int) (Instruction, error) {
	tokens, err := p.sourceDestTokens(rest, line)
	if err != nil {
		return nil, err
	}
	f, tokens, err := p.parseCopyFlags(tokens, line, "COPY", false)
	if err != nil {
		return nil, err
	}
	return &Copy{
		Sources:  tokens[:len(tokens)-1],
		Dest:     tokens[len(tokens)-1],
		From:     f.from,
		Chown:    f.chown,
		Chmod:    f.chmod,
		Link:     f.link,
		Excludes: f.excludes,
	}, nil
}

func (p *parser) parseAdd(rest string, line int) (Instruction, error) {
	tokens, err := p.sourceDestTokens(rest, line)
	if err != nil {
		return nil, err
	}
	f, tokens, err := p.parseCopyFlags(tokens, line, "ADD", true)
	if err != nil {
		return nil, err
	}
	return &Add{
		Sources:    tokens[:len(tokens)-1],
		Dest:       tokens[len(tokens)-1],
		Chown:      f.chown,
		Chmod:      f.chmod,
		Checksum:   f.checksum,
		Link:       f.link,
		KeepGitDir: f.keepGitDir,
		Excludes:   f.excludes,
	}, nil
}

// sourceDestTokens tokenizes COPY/ADD arguments, accepting the JSON-array
// form for the source/destination list after any flags.
func (p *parser) sourceDestTokens(rest string, line int) ([]string, error) {
	var flags []string
	remainder := strings.TrimSpace(rest)
	for strings.HasPrefix(remainder, "--") {
		token, after, _ := strings.Cut(remainder, " ")
		flags = append(flags, token)
		remainder = strings.TrimSpace(after)
	}
	if strings.HasPrefix(remainder, "[") {
		var args []string
		if err := json.Unmarshal([]byte(remainder), &args); err != nil {
			return nil, p.errf(line, "invalid JSON array: %v", err)
		}
		return append(flags, args...), nil
	}
	return append(flags, splitTokens(remainder)...), nil
}

func (p *parser) parseKeyValues(rest string, line int, name string, build func([]KeyValue) Instruction) (Instruction, error) {
	pairs, err := scanKeyValues(rest)
	if err != nil {
		return nil, p.errf(line, "%s: %v", name, err)
	}
	if len(pairs) == 0 {
		return nil, p.errf(line, "%s requires at least one key/value pair", name)
	}
	return build(pairs), nil
}

func (p *parser) parseExpose(rest string, line int) (Instruction, error) {
	tokens := splitTokens(rest)
	if len(tokens) == 0 {
		return nil, p.errf(line, "EXPOSE requires at least one port")
	}
	expose := &Expose{}
	for _, tok := range tokens {
		port, proto, ok := strings.Cut(tok, "/")
		if !ok {
			proto = "tcp"
		}
		if port == "" {
			return nil, p.errf(line, "EXPOSE: invalid port %q", tok)
		}
		expose.Ports = append(expose.Ports, Port{Port: port, Protocol: strings.ToLower(proto)})
	}
	return expose, nil
}

func (p *parser) parseArg(rest string, line int) (Instruction, error) {
	tokens := splitTokens(rest)
	if len(tokens) == 0 {
		return nil, p.errf(line, "ARG requires at least one argument")
	}
	arg := &Arg{}
	for _, tok := range tokens {
		key, value, hasDefault := strings.Cut(tok, "=")
		if key == "" {
			return nil, p.errf(line, "ARG: invalid declaration %q", tok)
		}
		def := ArgDef{Key: key}
		if hasDefault {
			v := value
			def.Default = &v
		}
		arg.Args = append(arg.Args, def)
	}
	return arg, nil
}

func (p *parser) parseShell(rest string, line int) (Instruction, error) {
	cmd := shellOrExec(rest)
	if !cmd.Exec {
		return nil, p.errf(line, "SHELL requires the arguments to be in JSON form")
	}
	return &Shell{Cmd: cmd}, nil
}

func (p *parser) parseVolume(rest string, line int) (Instruction, error) {
	if rest == "" {
		return nil, p.errf(line, "VOLUME requires at least one argument")
	}
	if strings.HasPrefix(rest, "[") {
		var paths []string
		if err := json.Unmarshal([]byte(rest), &paths); err != nil {
			return nil, p.errf(line, "VOLUME: invalid JSON array: %v", err)
		}
		return &Volume{Paths: paths}, nil
	}
	return &Volume{Paths: splitTokens(rest)}, nil
}

func (p *parser) parseHealthcheck(rest string, line int) (Instruction, error) {
	if strings.EqualFold(strings.TrimSpace(rest), "NONE") {
		return &Healthcheck{None: true}, nil
	}

	hc := &Healthcheck{}
	remainder := strings.TrimSpace(rest)
	for strings.HasPrefix(remainder, "--") {
		token, after, _ := strings.Cut(remainder, " ")
		flag, value, _ := cutFlag(token)
		switch flag {
		case "interval", "timeout", "start-period", "start-interval":
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, p.errf(line, "HEALTHCHECK: invalid --%s value %q", flag, value)
			}
			switch flag {
			case "interval":
				hc.Interval = &d
			case "timeout":
				hc.Timeout = &d
			case "start-period":
				hc.StartPeriod = &d
			case "start-interval":
				hc.StartInterval = &d
			}
		case "retries":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, p.errf(line, "HEALTHCHECK: invalid --retries value %q", value)
			}
			hc.Retries = &n
		default:
			return nil, p.errf(line, "HEALTHCHECK: unsupported flag --%s", flag)
		}
		remainder = strings.TrimSpace(after)
	}

	keyword, cmdRest, _ := strings.Cut(remainder, " ")
	if !strings.EqualFold(keyword, "CMD") {
		return nil, p.errf(line, "HEALTHCHECK must be followed by NONE or CMD")
	}
	cmdRest = strings.TrimSpace(cmdRest)
	if cmdRest == "" {
		return nil, p.errf(line, "HEALTHCHECK CMD requires a command")
	}
	cmd := shellOrExec(cmdRest)
	hc.Cmd = &cmd
	return hc, nil
}

func (p *parser) parseOnbuild(rest string, line int) (Instruction, error) {
	if rest == "" {
		return nil, p.errf(line, "ONBUILD requires an instruction")
	}
	inner, err := p.parseLine(rest, line)
	if err != nil {
		return nil, err
	}
	if _, nested := inner.(*Onbuild); nested {
		return nil, p.errf(line, "ONBUILD may not wrap another ONBUILD")
	}
	return &Onbuild{Inner: inner}, nil
}

func (p *parser) errf(line int, format string, args ...any) error {
	return &ParseError{File: p.file, Line: line, Message: fmt.Sprintf(format, args...)}
}

// shellOrExec classifies the argument text. Text starting with '[' is
// decoded as a JSON string array (exec form); invalid JSON falls back to
// shell form, matching the build tool.
func shellOrExec(rest string) ShellOrExec {
	trimmed := strings.TrimSpace(rest)
	if strings.HasPrefix(trimmed, "[") {
		var args []string
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
			return ShellOrExec{Exec: true, Args: args}
		}
	}
	return ShellOrExec{Script: trimmed}
}

// parseMount turns a --mount flag value into a typed record.
func parseMount(value string) Mount {
	m := Mount{Type: "bind", Options: map[string]string{}, Raw: value}
	for _, part := range strings.Split(value, ",") {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			val = "true"
		}
		if key == "type" {
			m.Type = val
			continue
		}
		if key != "" {
			m.Options[key] = val
		}
	}
	return m
}

// cutFlag splits a "--name=value" token. The boolean reports whether a
// value was present ("--link" has none).
func cutFlag(token string) (name, value string, hasValue bool) {
	token = strings.TrimPrefix(token, "--")
	name, value, hasValue = strings.Cut(token, "=")
	return name, value, hasValue
}
