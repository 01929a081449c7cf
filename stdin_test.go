package pkspawn

import (
	"syscall"
	"testing"
)

func TestWriteLineAppendsNewline(t *testing.T) {
	r, w := pipePair(t)
	if err := writeLine(w, "install\tvim"); err != nil {
		t.Fatalf("writeLine: %v", err)
	}

	buf := make([]byte, 64)
	n, err := syscall.Read(r, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "install\tvim\n" {
		t.Fatalf("got %q, want %q", got, "install\tvim\n")
	}
}

func TestWriteLineOnClosedFDFails(t *testing.T) {
	r, w := pipePair(t)
	_ = syscall.Close(r)
	_ = syscall.Close(w)

	if err := writeLine(w, "exit"); err == nil {
		t.Fatal("expected an error writing to a closed fd")
	}
}
