// Package executable locates executables and renders command lines.
//
// The Resolver validates the program path a child process is spawned from:
// explicit paths are checked in place, bare names are searched in PATH and
// then in configured fallback directories. The command helpers build the
// argument vector handed to the OS and the quoted display form used in logs
// and error messages.
package executable
