// Package pkspawn is a process supervisor for a long-lived package-manager
// daemon to dispatch work to out-of-process backend scripts. It owns at
// most one child process at a time, streams the child's standard output as
// discrete line events, and supports three execution modes: one-shot
// invocation, reuse of an already-running "dispatcher" child for a new
// request, and graceful shutdown via an in-band "exit" command. It also
// provides escalating termination (SIGQUIT, then SIGKILL) and reports a
// precise exit classification once the child goes away.
//
// Stdout and Exit are never closed (a Supervisor may launch many children
// over its lifetime), so read both with a select rather than ranging over
// Stdout to completion:
//
//	sv := pkspawn.NewSupervisor(pkspawn.WithLogger(logger))
//	defer sv.Close()
//	sv.Run([]string{"pk-spawn-test.sh"}, nil)
//	for {
//		select {
//		case line := <-sv.Stdout():
//			fmt.Println(line)
//		case class := <-sv.Exit():
//			fmt.Println("dispatcher exited:", class)
//			return
//		}
//	}
package pkspawn

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Supervisor holds at most one live child, a stdout line pipeline, and the
// shutdown/classification state machine. All fields below the constructor
// are owned exclusively by the run loop goroutine started in NewSupervisor;
// callers only ever touch Supervisor through the exported methods.
type Supervisor struct {
	priority PriorityProvider
	log      zerolog.Logger

	cmdCh    chan *cmdMsg
	stdoutCh chan string
	exitCh   chan ExitClass
	doneCh   chan struct{}

	// callMu serializes Run's own two-phase rotate-then-launch sequence
	// against a second concurrent Run call; without it two overlapping
	// rotations could both observe the same live child and each launch a
	// replacement, leaking one. SendExit/Kill/Close need no such guard: each
	// is a single round trip through cmdCh, already serialized by the loop.
	callMu sync.Mutex

	// Run-loop-owned state.
	child          *childHandle
	stdoutBuf      []byte
	pollTicker     *time.Ticker
	killTimer      *time.Timer
	finished       bool
	exitClass      ExitClass
	shutdownReason shutdownReason
	exitWaiters    []chan struct{}
	closing        bool
}

// Option configures a Supervisor at construction.
type Option func(*Supervisor)

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Supervisor) { s.log = log }
}

// WithPriority attaches the provider consulted for the child's scheduling
// priority at launch.
func WithPriority(p PriorityProvider) Option {
	return func(s *Supervisor) { s.priority = p }
}

// NewSupervisor constructs a Supervisor with no live child and starts its
// run loop goroutine.
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		log:       nopLogger(),
		cmdCh:     make(chan *cmdMsg),
		doneCh:    make(chan struct{}),
		exitClass: Unknown,
	}
	s.stdoutCh, s.exitCh = newEventChannels()
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

// Stdout returns the per-line stdout event channel.
func (s *Supervisor) Stdout() <-chan string { return s.stdoutCh }

// Exit returns the terminal exit-classification event channel. Exactly one
// value is ever sent per live child.
func (s *Supervisor) Exit() <-chan ExitClass { return s.exitCh }

// Run launches a child for desc, or — if a compatible child is already
// live — delivers desc as a reuse request to it. If a live child exists but
// is not compatible, the current child is cooperatively retired (one
// DispatcherChanged exit event) before the new one starts.
func (s *Supervisor) Run(argv, envp []string) bool {
	s.callMu.Lock()
	defer s.callMu.Unlock()

	desc := InvocationDescriptor{Argv: argv, Envp: envp}
	reply := s.send(cmdRun, desc)
	if !reply.ok {
		return false
	}
	if reply.waiter != nil {
		<-reply.waiter
		reply = s.send(cmdLaunchAfterRotation, desc)
		return reply.ok
	}
	return true
}

// SendExit requests cooperative shutdown of the live child and blocks until
// it has been reaped. Returns false without waiting if no child is live
// (ALREADY_FINISHED) or a cooperative exit is already in flight
// (EXIT_IN_PROGRESS). Deliberately not serialized by callMu: the guard
// against a nested cooperative exit is the run loop's own shutdownReason
// check, and a concurrent caller must observe EXIT_IN_PROGRESS immediately
// rather than wait behind the in-flight call.
func (s *Supervisor) SendExit() bool {
	reply := s.send(cmdSendExit, InvocationDescriptor{})
	if !reply.ok {
		return false
	}
	<-reply.waiter
	return true
}

// Kill sends the polite termination signal (SIGQUIT) to the live child and
// schedules a forced SIGKILL 500ms later if it hasn't exited by then. Does
// not block for the child to actually go away; that is reported
// asynchronously via Exit().
func (s *Supervisor) Kill() bool {
	reply := s.send(cmdKill, InvocationDescriptor{})
	return reply.ok
}

// Close issues a best-effort polite kill for any live child and stops the
// run loop once the child (if any) has been reaped. Close does not block;
// the follow-on forced kill still requires the run loop to keep ticking, so
// if the program exits immediately afterward the child may be orphaned.
func (s *Supervisor) Close() {
	s.send(cmdClose, InvocationDescriptor{})
}

// send delivers a command to the run loop and waits for its reply. It never
// races with the run loop itself since cmdCh is unbuffered and read only by
// loop().
func (s *Supervisor) send(kind cmdKind, desc InvocationDescriptor) cmdReply {
	reply := make(chan cmdReply, 1)
	select {
	case s.cmdCh <- &cmdMsg{kind: kind, desc: desc, reply: reply}:
	case <-s.doneCh:
		return cmdReply{ok: false, err: newErr(AlreadyFinished, nil)}
	}
	select {
	case r := <-reply:
		if !r.ok && r.err != nil {
			s.log.Warn().Err(r.err).Msg("supervisor operation failed")
		}
		return r
	case <-s.doneCh:
		return cmdReply{ok: false, err: newErr(AlreadyFinished, nil)}
	}
}
