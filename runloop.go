package pkspawn

import (
	"syscall"
	"time"
)

// pollInterval is the fixed tick period of the non-blocking drain/reap loop.
const pollInterval = 50 * time.Millisecond

// killGrace is the delay between the polite and forced termination signals.
const killGrace = 500 * time.Millisecond

type cmdKind int

const (
	cmdRun cmdKind = iota
	cmdSendExit
	cmdKill
	cmdLaunchAfterRotation
	cmdClose
)

type cmdMsg struct {
	kind  cmdKind
	desc  InvocationDescriptor
	reply chan cmdReply
}

type cmdReply struct {
	ok     bool
	err    error
	waiter chan struct{} // set when the caller must block until reap
}

// loop is the single goroutine that owns all mutable Supervisor state.
// Every mutation happens here, serialized by the select below, mirroring
// the teacher's runAsInit select-loop shape (ticker + timer + command
// channel merged in one place).
func (s *Supervisor) loop() {
	defer close(s.doneCh)

	for {
		var tickC, killC <-chan time.Time
		if s.pollTicker != nil {
			tickC = s.pollTicker.C
		}
		if s.killTimer != nil {
			killC = s.killTimer.C
		}

		select {
		case msg, ok := <-s.cmdCh:
			if !ok {
				return
			}
			s.handleCmd(msg)
			if s.closing && s.child == nil {
				return
			}

		case <-tickC:
			s.pollTick()
			if s.closing && s.child == nil {
				return
			}

		case <-killC:
			s.forcedKillTick()
		}
	}
}

func (s *Supervisor) handleCmd(msg *cmdMsg) {
	switch msg.kind {
	case cmdRun:
		s.handleRun(msg)
	case cmdSendExit:
		s.handleSendExit(msg)
	case cmdKill:
		s.handleKill(msg)
	case cmdLaunchAfterRotation:
		s.handleLaunch(msg)
	case cmdClose:
		s.handleClose(msg)
	}
}

func (s *Supervisor) handleRun(msg *cmdMsg) {
	if s.closing {
		msg.reply <- cmdReply{ok: false, err: newErr(AlreadyFinished, nil)}
		return
	}
	if s.child == nil {
		s.handleLaunch(msg)
		return
	}

	live := InvocationDescriptor{Argv: prependArgv0(s.child.lastArgv0), Envp: s.child.lastEnvp}
	if decideReuse(msg.desc, live) == decisionReuse {
		line := requestLine(msg.desc.Argv)
		if err := writeLine(s.child.stdinFD, line); err == nil {
			msg.reply <- cmdReply{ok: true}
			return
		}
		s.log.Warn().Msg("write to live dispatcher failed, rotating")
	}

	if s.shutdownReason != reasonNone {
		msg.reply <- cmdReply{ok: false, err: newErr(ExitInProgress, nil)}
		return
	}

	waiter := s.beginRotation()
	msg.reply <- cmdReply{ok: true, waiter: waiter}
}

func (s *Supervisor) handleLaunch(msg *cmdMsg) {
	child, err := launch(msg.desc, s.priority, s.log)
	if err != nil {
		msg.reply <- cmdReply{ok: false, err: err}
		return
	}
	s.child = child
	s.finished = false
	s.exitClass = Unknown
	s.shutdownReason = reasonNone
	s.stdoutBuf = s.stdoutBuf[:0]
	s.schedulePoll()
	msg.reply <- cmdReply{ok: true}
}

func (s *Supervisor) schedulePoll() {
	if s.pollTicker == nil {
		s.pollTicker = time.NewTicker(pollInterval)
	}
}

// pollTick drains stdout, performs a non-blocking wait, and on termination
// runs the full reap/classify/emit sequence exactly once.
func (s *Supervisor) pollTick() {
	if s.finished {
		s.log.Debug().Msg("poll tick after finish; ignoring")
		return
	}
	if s.child == nil {
		return
	}

	s.drainAndEmit()

	var ws syscall.WaitStatus
	pid, err := syscall.Wait4(s.child.pid, &ws, syscall.WNOHANG, nil)
	if err != nil || pid != s.child.pid {
		return
	}

	s.reap(ws)
}

func (s *Supervisor) drainAndEmit() {
	buf, lines, _ := drainStdout(s.child.stdoutFD, s.stdoutBuf)
	s.stdoutBuf = buf
	for _, line := range lines {
		sendStdout(s.stdoutCh, line)
	}
}

// reap performs the full termination sequence: final drain, teardown, exit
// classification, wake waiters, emit the terminal event exactly once.
func (s *Supervisor) reap(ws syscall.WaitStatus) {
	s.drainAndEmit()

	_ = syscall.Close(s.child.stdinFD)
	_ = syscall.Close(s.child.stdoutFD)

	if s.pollTicker != nil {
		s.pollTicker.Stop()
		s.pollTicker = nil
	}
	if s.killTimer != nil {
		s.killTimer.Stop()
		s.killTimer = nil
	}

	waiterPresent := len(s.exitWaiters) > 0
	nonZero := !ws.Exited() || ws.ExitStatus() != 0
	s.exitClass = classify(s.exitClass, s.shutdownReason, waiterPresent, nonZero)
	s.finished = true
	s.child = nil
	s.shutdownReason = reasonNone

	waiters := s.exitWaiters
	s.exitWaiters = nil
	for _, w := range waiters {
		close(w)
	}

	sendExitEvent(s.exitCh, s.exitClass)
}

func prependArgv0(argv0 string) []string {
	return []string{argv0}
}
