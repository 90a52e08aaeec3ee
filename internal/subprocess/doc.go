// Package subprocess spawns a child process wired to two asynchronous pipes.
//
// A Subprocess is created synchronously: the parent flushes its buffered
// output, creates the stdin and stdout pipes, starts the child with only the
// child ends of those pipes inherited, and hands the parent ends to a
// Reactor. Process creation is implemented per platform: fork/exec with
// descriptor duplication on Unix (spawn_unix.go) and CreateProcess with an
// explicit inheritable handle list on Windows (spawn_windows.go).
//
// Result blocks until the child exits and memoizes the exit code; Terminate
// is a fire-and-forget kill.
package subprocess
