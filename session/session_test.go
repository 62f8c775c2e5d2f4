package session

import (
	"errors"
	"testing"

	"github.com/synaptics-astra/astra-update/pkg"
)

func TestRegistry_RegisterLookupUnregister(t *testing.T) {
	s := &Session{handle: NewDeviceHandle(nil, "3-1.2")}

	if _, ok := Lookup("3-1.2"); ok {
		t.Fatalf("Lookup found unregistered session")
	}

	register(s.handle.UsbPath, s)
	defer unregister(s.handle.UsbPath)

	got, ok := Lookup("3-1.2")
	if !ok || got != s {
		t.Fatalf("Lookup(%q) = %v, %v; want the registered session", "3-1.2", got, ok)
	}

	if n := Count(); n == 0 {
		t.Errorf("Count() = 0, want at least 1 after register")
	}

	unregister(s.handle.UsbPath)
	if _, ok := Lookup("3-1.2"); ok {
		t.Fatalf("Lookup found session after unregister")
	}
}

func TestIsNoDeviceError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("libusb: no device [code -4]"), true},
		{errors.New("device disconnected"), true},
		{errors.New("libusb: pipe error [code -9]"), false},
	}
	for _, c := range cases {
		if got := isNoDeviceError(c.err); got != c.want {
			t.Errorf("isNoDeviceError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestClassifyTransferError(t *testing.T) {
	if err := classifyTransferError(errors.New("no device [code -4]")); !errors.Is(err, pkg.ErrNoDevice) {
		t.Errorf("classifyTransferError(no device) = %v, want wrapping ErrNoDevice", err)
	}
	if err := classifyTransferError(errors.New("pipe error")); !errors.Is(err, pkg.ErrTransferError) {
		t.Errorf("classifyTransferError(other) = %v, want wrapping ErrTransferError", err)
	}
}

func TestSession_WriteWhenNotRunning(t *testing.T) {
	s := &Session{handle: NewDeviceHandle(nil, "1-1")}
	if _, err := s.Write([]byte("x")); !errors.Is(err, pkg.ErrNotRunning) {
		t.Errorf("Write() on unopened session = %v, want ErrNotRunning", err)
	}
}

func TestSession_WriteInterruptNoopWhenNotRunning(t *testing.T) {
	s := &Session{handle: NewDeviceHandle(nil, "1-1")}
	s.WriteInterrupt([]byte("x")) // must not panic despite nil intrOut/ctx
}

func TestSession_CallbackWorkerDeliversFIFO(t *testing.T) {
	var got []EventKind
	sink := EventSinkFunc(func(e Event) { got = append(got, e.Kind) })

	s := &Session{
		handle: NewDeviceHandle(nil, "1-1"),
		sink:   sink,
		events: make(chan callbackEvent, 4),
	}
	s.wg.Add(1)

	s.events <- callbackEvent{kind: EventInterrupt, data: []byte{1}}
	s.events <- callbackEvent{kind: EventInterrupt, data: []byte{2}}
	s.events <- callbackEvent{kind: EventNoDevice}
	close(s.events)

	s.callbackWorker()

	want := []EventKind{EventInterrupt, EventInterrupt, EventNoDevice}
	if len(got) != len(want) {
		t.Fatalf("delivered %d events, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
