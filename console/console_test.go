package console

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeWriter struct {
	mu  sync.Mutex
	got [][]byte
}

func (w *fakeWriter) WriteInterrupt(data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.got = append(w.got, append([]byte(nil), data...))
}

func TestConsole_AppendDetectsPrompt(t *testing.T) {
	c := NewDiscard(&fakeWriter{})

	done := make(chan bool, 1)
	go func() { done <- c.WaitForPrompt() }()

	time.Sleep(10 * time.Millisecond) // let WaitForPrompt block
	c.Append([]byte("U-Boot 2021.01\n"))
	c.Append([]byte("=>"))

	select {
	case ok := <-done:
		if !ok {
			t.Errorf("WaitForPrompt() = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForPrompt did not return after prompt appended")
	}
}

func TestConsole_AppendIgnoresTrailingWhitespace(t *testing.T) {
	c := NewDiscard(&fakeWriter{})
	done := make(chan bool, 1)
	go func() { done <- c.WaitForPrompt() }()

	time.Sleep(10 * time.Millisecond)
	c.Append([]byte("=>   \r\n"))

	select {
	case ok := <-done:
		if !ok {
			t.Errorf("WaitForPrompt() = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForPrompt did not wake on '=> ' with trailing whitespace")
	}
}

func TestConsole_ShutdownWakesWaiter(t *testing.T) {
	c := NewDiscard(&fakeWriter{})
	done := make(chan bool, 1)
	go func() { done <- c.WaitForPrompt() }()

	time.Sleep(10 * time.Millisecond)
	c.Shutdown()

	select {
	case ok := <-done:
		if ok {
			t.Errorf("WaitForPrompt() = true after shutdown, want false")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForPrompt did not wake on shutdown")
	}

	if c.WaitForPrompt() {
		t.Errorf("WaitForPrompt() after shutdown = true, want false")
	}
}

func TestConsole_WriteLineDelegatesToWriter(t *testing.T) {
	w := &fakeWriter{}
	c := NewDiscard(w)
	c.WriteLine("reset")

	if len(w.got) != 1 || string(w.got[0]) != "reset\n" {
		t.Errorf("WriteInterrupt called with %v, want [\"reset\\n\"]", w.got)
	}
}

func TestConsole_TranscriptAndLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "console.log")

	c, err := New(&fakeWriter{}, logPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.Append([]byte("hello\n"))
	c.Shutdown()

	if got := c.Transcript(); got != "hello\n" {
		t.Errorf("Transcript() = %q, want %q", got, "hello\n")
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading console log: %v", err)
	}
	if got := string(data); got != "hello\n" {
		t.Errorf("console log = %q, want %q", got, "hello\n")
	}
}

func TestConsole_ShutdownIdempotent(t *testing.T) {
	c := NewDiscard(&fakeWriter{})
	c.Shutdown()
	c.Shutdown() // must not panic or double-close
}
