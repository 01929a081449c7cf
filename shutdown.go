package pkspawn

import (
	"syscall"
	"time"
)

// beginRotation sets shutdownReason, writes the literal "exit" line to the
// live child (best-effort — a write failure here just means the dispatcher
// may not get the polite request, but we still wait for it to go away one
// way or another), and registers a waiter the caller blocks on until reap.
// Callers must check shutdownReason == reasonNone first: this never fires
// while another cooperative shutdown is already in flight on this child.
func (s *Supervisor) beginRotation() chan struct{} {
	s.shutdownReason = reasonDispatcherRotation
	if s.child != nil {
		if err := writeLine(s.child.stdinFD, "exit"); err != nil {
			s.log.Warn().Err(err).Msg("failed to write exit line during dispatcher rotation")
		}
	}
	waiter := make(chan struct{})
	s.exitWaiters = append(s.exitWaiters, waiter)
	return waiter
}

// handleSendExit implements the cooperative exit entry point. Guarded by
// shutdownReason: a concurrent or nested cooperative exit, or one that
// collides with a rotation already in flight on this child, fails with
// EXIT_IN_PROGRESS rather than clobbering the reason a prior caller is
// waiting on.
func (s *Supervisor) handleSendExit(msg *cmdMsg) {
	if s.closing || s.child == nil {
		msg.reply <- cmdReply{ok: false, err: newErr(AlreadyFinished, nil)}
		return
	}
	if s.shutdownReason != reasonNone {
		msg.reply <- cmdReply{ok: false, err: newErr(ExitInProgress, nil)}
		return
	}

	s.shutdownReason = reasonCooperativeExit
	if err := writeLine(s.child.stdinFD, "exit"); err != nil {
		s.log.Warn().Err(err).Msg("failed to write exit line for cooperative shutdown")
	}
	waiter := make(chan struct{})
	s.exitWaiters = append(s.exitWaiters, waiter)
	msg.reply <- cmdReply{ok: true, waiter: waiter}
}

// handleKill sends SIGQUIT to the child's process group, tentatively
// classifies the exit as SIGQUIT (only if UNKNOWN), and schedules the
// forced-kill timer.
func (s *Supervisor) handleKill(msg *cmdMsg) {
	if s.child == nil {
		msg.reply <- cmdReply{ok: false, err: newErr(AlreadyFinished, nil)}
		return
	}

	if err := syscall.Kill(-s.child.pid, syscall.SIGQUIT); err != nil {
		msg.reply <- cmdReply{ok: false, err: newErr(SignalRefused, err)}
		return
	}

	if s.exitClass == Unknown {
		s.exitClass = ExitSIGQUIT
	}

	if s.killTimer != nil {
		s.killTimer.Stop()
	}
	s.killTimer = time.NewTimer(killGrace)

	msg.reply <- cmdReply{ok: true}
}

// forcedKillTick is the kill timer callback: if the child is still live,
// classification is unconditionally overridden to SIGKILL and the forced
// signal is sent. Single-shot; reap cancels this timer, so this only ever
// fires for a still-live child.
func (s *Supervisor) forcedKillTick() {
	s.killTimer = nil
	if s.child == nil {
		return
	}

	s.exitClass = ExitSIGKILL
	if err := syscall.Kill(-s.child.pid, syscall.SIGKILL); err != nil {
		s.log.Warn().Err(err).Int("pid", s.child.pid).Msg("forced kill signal refused")
	}
}

// handleClose marks the supervisor for shutdown: if a child is live, issue
// a best-effort polite kill and let the loop exit once the child is gone;
// a supervisor with no live child exits immediately.
func (s *Supervisor) handleClose(msg *cmdMsg) {
	s.closing = true
	if s.child != nil && s.exitClass == Unknown {
		if err := syscall.Kill(-s.child.pid, syscall.SIGQUIT); err == nil {
			s.exitClass = ExitSIGQUIT
			if s.killTimer != nil {
				s.killTimer.Stop()
			}
			s.killTimer = time.NewTimer(killGrace)
		}
	}
	msg.reply <- cmdReply{ok: true}
}
