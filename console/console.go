package console

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/synaptics-astra/astra-update/pkg"
)

// promptSuffix is the literal U-Boot prompt text that terminates a
// wait_for_prompt() call (§9 glossary: "U-Boot prompt").
const promptSuffix = "=>"

// Writer is the narrow interface the console needs from the owning
// session: a fire-and-forget interrupt-OUT write.
type Writer interface {
	WriteInterrupt(data []byte)
}

// Console buffers U-Boot console bytes for one device session, mirrors
// them to a log file, and lets callers block until the next prompt.
type Console struct {
	writer Writer
	log    io.WriteCloser

	mu       sync.Mutex
	cond     *sync.Cond
	buf      bytes.Buffer
	seen     int // prompt-seen generation counter
	shutdown bool
}

// New creates a Console that mirrors appended bytes to logPath (truncated
// if it exists) and sends outbound keystrokes through writer.
func New(writer Writer, logPath string) (*Console, error) {
	f, err := os.Create(logPath)
	if err != nil {
		return nil, err
	}
	c := &Console{writer: writer, log: f}
	c.cond = sync.NewCond(&c.mu)
	return c, nil
}

// NewDiscard creates a Console with no backing log file, for tests and
// callers that don't need a transcript on disk.
func NewDiscard(writer Writer) *Console {
	c := &Console{writer: writer, log: nopCloser{io.Discard}}
	c.cond = sync.NewCond(&c.mu)
	return c
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Append adds console bytes to the transcript, mirrors them to the log
// file, and — if the (trailing-whitespace-trimmed) transcript now ends
// in "=>" — wakes every wait_for_prompt() waiter.
func (c *Console) Append(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return
	}

	c.buf.Write(data)
	if _, err := c.log.Write(data); err != nil {
		pkg.LogWarn(pkg.ComponentConsole, "console log write failed", "err", err)
	}

	trimmed := strings.TrimRight(c.buf.String(), " \t\r\n")
	if strings.HasSuffix(trimmed, promptSuffix) {
		c.seen++
		c.cond.Broadcast()
	}
}

// WaitForPrompt blocks until the next prompt notification after the call
// is made, or until Shutdown is called, per §4.3. It returns false if
// woken by Shutdown rather than a prompt.
func (c *Console) WaitForPrompt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return false
	}
	baseline := c.seen
	for c.seen == baseline && !c.shutdown {
		c.cond.Wait()
	}
	return !c.shutdown
}

// Write sends data over the interrupt-OUT endpoint, per §4.3's "outbound
// console writes are plain write_interrupt calls".
func (c *Console) Write(data []byte) {
	c.writer.WriteInterrupt(data)
}

// WriteLine appends "\n" and sends it, the common case for injecting a
// U-Boot command.
func (c *Console) WriteLine(line string) {
	c.Write([]byte(line + "\n"))
}

// Transcript returns a copy of the accumulated console text.
func (c *Console) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Shutdown sets the shutdown flag, wakes every blocked WaitForPrompt
// caller (they observe false), and closes the log file. Shutdown is
// idempotent.
func (c *Console) Shutdown() {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	c.shutdown = true
	c.cond.Broadcast()
	c.mu.Unlock()

	if err := c.log.Close(); err != nil {
		pkg.LogWarn(pkg.ComponentConsole, "console log close failed", "err", err)
	}
}
