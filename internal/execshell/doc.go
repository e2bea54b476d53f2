// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging, per-command timeouts, and an optional dry-run
// mode via ShellExecutor, exposes OSCommandRunner for default process
// execution, and defines the abstractions used throughout gitsync to run the
// git binary in a testable manner.
package execshell
