package pkspawn

// childHandle describes the one live child a Supervisor may hold at a time.
// Mutated only by the run loop goroutine, which both drains/reaps it and
// signals it. The process is waited on directly via syscall.Wait4 rather
// than through *exec.Cmd, so only the bare pid and raw pipe fds need to
// survive past launch.
type childHandle struct {
	pid      int
	stdinFD  int // write end of the pipe to the child's stdin
	stdoutFD int // read end of the pipe from the child's stdout, non-blocking

	lastArgv0 string
	lastEnvp  []string
}
