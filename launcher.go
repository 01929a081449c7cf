package pkspawn

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog"
)

// launch resolves the executable on PATH, establishes fresh pipes, forks
// the child with stdin/stdout connected, and applies the configured
// scheduling priority. It does not auto-reap; the run loop's poll tick
// performs the reap. On success it returns a childHandle with stdoutFD
// already set non-blocking.
func launch(desc InvocationDescriptor, priority PriorityProvider, log zerolog.Logger) (*childHandle, error) {
	if len(desc.Argv) == 0 {
		return nil, newErr(SpawnFailed, errEmptyArgv)
	}

	path, err := exec.LookPath(desc.Argv[0])
	if err != nil {
		return nil, newErr(SpawnFailed, err)
	}

	var stdinFDs, stdoutFDs [2]int
	if err := syscall.Pipe(stdinFDs[:]); err != nil {
		return nil, newErr(SpawnFailed, err)
	}
	if err := syscall.Pipe(stdoutFDs[:]); err != nil {
		_ = syscall.Close(stdinFDs[0])
		_ = syscall.Close(stdinFDs[1])
		return nil, newErr(SpawnFailed, err)
	}

	childStdin := os.NewFile(uintptr(stdinFDs[0]), "dispatcher-stdin-read")
	childStdout := os.NewFile(uintptr(stdoutFDs[1]), "dispatcher-stdout-write")

	cmd := exec.Command(path, desc.Argv[1:]...)
	cmd.Env = desc.Envp
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdin = childStdin
	cmd.Stdout = childStdout

	if err := cmd.Start(); err != nil {
		_ = childStdin.Close()
		_ = childStdout.Close()
		_ = syscall.Close(stdinFDs[1])
		_ = syscall.Close(stdoutFDs[0])
		return nil, newErr(SpawnFailed, err)
	}

	// The child now has its own dup'd copies of the child-side ends; close
	// our references (via the *os.File wrappers, so no finalizer later
	// double-closes the fd) so EOF/closure behaves correctly and we don't
	// leak descriptors in the parent.
	_ = childStdin.Close()
	_ = childStdout.Close()

	if err := syscall.SetNonblock(stdoutFDs[0], true); err != nil {
		log.Warn().Err(err).Msg("failed to set dispatcher stdout non-blocking")
	}

	pid := cmd.Process.Pid
	applyPriority(pid, priority, log)

	return &childHandle{
		pid:       pid,
		stdinFD:   stdinFDs[1],
		stdoutFD:  stdoutFDs[0],
		lastArgv0: desc.Argv[0],
		lastEnvp:  desc.Envp,
	}, nil
}

// applyPriority reads the configured nice value and applies it to pid.
// Failure is non-fatal: it produces a warning only, never an error.
func applyPriority(pid int, priority PriorityProvider, log zerolog.Logger) {
	if priority == nil {
		return
	}
	nice := clampNice(priority.NiceValue())
	if nice == 0 {
		return
	}
	if err := syscall.Setpriority(syscall.PRIO_PROCESS, pid, nice); err != nil {
		log.Warn().Err(err).Int("pid", pid).Int("nice", nice).Msg("failed to apply scheduling priority")
	}
}
