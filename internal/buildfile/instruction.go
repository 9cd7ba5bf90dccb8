// Package buildfile parses container build scripts into a line-positioned,
// typed instruction stream for the rule engine.
//
// The parser is fail-fast per file: the first structurally invalid line
// aborts the parse with a *ParseError and no partial instruction stream is
// returned. Sibling files in a batch are unaffected (the orchestrator lints
// each file independently).
package buildfile

import "time"

// Instruction is the closed set of build-script directives. Every concrete
// instruction type lives in this package; rules switch on the concrete type.
type Instruction interface {
	// Name returns the uppercase directive keyword (e.g., "FROM").
	Name() string

	isInstruction()
}

// PositionedInstruction pairs an instruction with its source position.
// Immutable once produced by the parser.
type PositionedInstruction struct {
	// Inst is the parsed instruction.
	Inst Instruction
	// Line is the 1-based physical line where the instruction starts.
	Line int
	// Source is the original source text of the logical line, with
	// continuation lines joined by newlines.
	Source string
}

// Comment is a full-line comment retained as an auxiliary layer; the
// pragma resolver scans it for suppression directives.
type Comment struct {
	// Line is the 1-based line number.
	Line int
	// Text is the comment text without the leading '#'.
	Text string
}

// ShellOrExec holds the argument form of RUN/CMD/ENTRYPOINT/SHELL and of
// HEALTHCHECK CMD. The distinction between forms is structural: several
// rules key on it directly.
type ShellOrExec struct {
	// Exec reports JSON-array (exec) form.
	Exec bool
	// Args are the exec-form arguments; empty in shell form.
	Args []string
	// Script is the raw shell-form command line; empty in exec form.
	Script string
}

// KeyValue is a single key/value pair of an ENV or LABEL instruction.
type KeyValue struct {
	Key   string
	Value string
}

// Port is one entry of an EXPOSE instruction.
type Port struct {
	// Port is the port number or range as written (may reference an ARG).
	Port string
	// Protocol is "tcp" or "udp"; defaults to "tcp" when unspecified.
	Protocol string
}

// ArgDef is one declaration of an ARG instruction.
type ArgDef struct {
	Key string
	// Default is nil when the ARG has no default value.
	Default *string
}

// Mount is a typed record of a RUN --mount flag.
type Mount struct {
	// Type is the mount type ("bind", "cache", "secret", "ssh", "tmpfs");
	// "bind" when unspecified.
	Type string
	// Options holds the remaining key=value entries (target, from, source,
	// id, mode, ...). Bare keys map to "true".
	Options map[string]string
	// Raw is the flag value as written.
	Raw string
}

// From declares a build stage base image.
type From struct {
	// Image is the repository part of the reference (may contain ARG refs).
	Image string
	// Tag is the tag without the leading ':' (empty when untagged).
	Tag string
	// Digest is the digest without the leading '@' (empty when absent).
	Digest string
	// Alias is the stage name following AS (empty when unnamed).
	Alias string
	// Platform is the --platform flag value (empty when absent).
	Platform string
	// BaseRaw is the full base reference as written.
	BaseRaw string
}

// Run executes a command in the build container.
type Run struct {
	Cmd ShellOrExec
	// Mounts are parsed --mount flags, in order.
	Mounts []Mount
	// Network is the --network flag value (empty when absent).
	Network string
	// Security is the --security flag value (empty when absent).
	Security string
}

// Copy copies files from the context or another stage.
type Copy struct {
	Sources []string
	Dest    string
	// From is the --from flag value (stage name or image).
	From     string
	Chown    string
	Chmod    string
	Link     bool
	Excludes []string
}

// Add copies files like Copy but also fetches URLs and unpacks archives.
type Add struct {
	Sources    []string
	Dest       string
	Chown      string
	Chmod      string
	Checksum   string
	Link       bool
	KeepGitDir bool
	Excludes   []string
}

// Env sets environment variables.
type Env struct {
	Pairs []KeyValue
}

// Label attaches metadata to the image.
type Label struct {
	Pairs []KeyValue
}

// Expose documents listening ports.
type Expose struct {
	Ports []Port
}

// Arg declares build arguments.
type Arg struct {
	Args []ArgDef
}

// Entrypoint sets the image entrypoint.
type Entrypoint struct {
	Cmd ShellOrExec
}

// Cmd sets the default command.
type Cmd struct {
	Cmd ShellOrExec
}

// Shell overrides the default shell for shell-form commands.
type Shell struct {
	Cmd ShellOrExec
}

// User switches the active user.
type User struct {
	User string
}

// Workdir changes the working directory.
type Workdir struct {
	Path string
}

// Volume declares mount points.
type Volume struct {
	Paths []string
}

// Maintainer is the deprecated image author field.
type Maintainer struct {
	Author string
}

// Stopsignal sets the signal used to stop the container.
type Stopsignal struct {
	Signal string
}

// Healthcheck configures the container health probe.
type Healthcheck struct {
	// None is true for "HEALTHCHECK NONE".
	None bool
	// Cmd is the probe command; nil when None.
	Cmd *ShellOrExec
	// Timing fields are nil when the flag was not given.
	Interval      *time.Duration
	Timeout       *time.Duration
	StartPeriod   *time.Duration
	StartInterval *time.Duration
	Retries       *int
}

// Onbuild wraps exactly one other instruction to run in downstream builds.
// The parser rejects a wrapper wrapping another wrapper.
type Onbuild struct {
	Inner Instruction
}

func (*From) Name() string        { return "FROM" }
func (*Run) Name() string         { return "RUN" }
func (*Copy) Name() string        { return "COPY" }
func (*Add) Name() string         { return "ADD" }
func (*Env) Name() string         { return "ENV" }
func (*Label) Name() string       { return "LABEL" }
func (*Expose) Name() string      { return "EXPOSE" }
func (*Arg) Name() string         { return "ARG" }
func (*Entrypoint) Name() string  { return "ENTRYPOINT" }
func (*Cmd) Name() string         { return "CMD" }
func (*Shell) Name() string       { return "SHELL" }
func (*User) Name() string        { return "USER" }
func (*Workdir) Name() string     { return "WORKDIR" }
func (*Volume) Name() string      { return "VOLUME" }
func (*Maintainer) Name() string  { return "MAINTAINER" }
func (*Stopsignal) Name() string  { return "STOPSIGNAL" }
func (*Healthcheck) Name() string { return "HEALTHCHECK" }
func (*Onbuild) Name() string     { return "ONBUILD" }

func (*From) isInstruction()        {}
func (*Run) isInstruction()         {}
func (*Copy) isInstruction()        {}
func (*Add) isInstruction()         {}
func (*Env) isInstruction()         {}
func (*Label) isInstruction()       {}
func (*Expose) isInstruction()      {}
func (*Arg) isInstruction()         {}
func (*Entrypoint) isInstruction()  {}
func (*Cmd) isInstruction()         {}
func (*Shell) isInstruction()       {}
func (*User) isInstruction()        {}
func (*Workdir) isInstruction()     {}
func (*Volume) isInstruction()      {}
func (*Maintainer) isInstruction()  {}
func (*Stopsignal) isInstruction()  {}
func (*Healthcheck) isInstruction() {}
func (*Onbuild) isInstruction()     {}
