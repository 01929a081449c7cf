package pkspawn

import (
	"bytes"
	"syscall"
)

// drainStdout reads every currently readable byte from fd into buf
// (non-blocking; stops the moment a read would block), returning the
// updated buffer and the complete lines found in it. Any trailing partial
// line is left in the returned buffer for the next call. A read of (0, nil)
// indicates the write end has closed.
//
// Deliberately raw syscall.Read rather than bufio.Scanner/os.File: fd is
// non-blocking at the OS level, and bufio.Scanner assumes a reader that
// blocks until data or EOF, which would defeat the poll-driven design.
func drainStdout(fd int, buf []byte) (newBuf []byte, lines []string, closed bool) {
	var chunk [4096]byte
	for {
		n, err := syscall.Read(fd, chunk[:])
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if err == syscall.EAGAIN {
				break
			}
			// Any other read error: treat the pipe as done for this tick.
			closed = true
			break
		}
		if n == 0 {
			// Write end closed.
			closed = true
			break
		}
	}

	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		// A bare blank line carries no information worth surfacing, so
		// empty-string lines are dropped rather than emitted.
		if i > 0 {
			lines = append(lines, string(buf[:i]))
		}
		buf = buf[i+1:]
	}
	return buf, lines, closed
}
