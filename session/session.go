package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/synaptics-astra/astra-update/pkg"
)

// configRetries and configRetryInterval bound the "transient device state"
// retry loop: some boards report a zero-interface configuration descriptor
// for a short window right after enumeration.
const (
	configRetries       = 4
	configRetryInterval = 100 * time.Millisecond

	bulkWriteTimeout = 1 * time.Second
	closeDrainWindow = 500 * time.Millisecond

	callbackQueueDepth = 64
)

type callbackEvent struct {
	kind EventKind
	data []byte
}

// Session owns one opened, configured USB device and the three transfers
// described by §4.1: a continuously-resubmitted interrupt-IN pump, a
// synchronous bulk-OUT writer, and a fire-and-forget interrupt-OUT writer.
// All three transfers, plus the single callback-dispatch goroutine, are
// torn down together by Close via a shared context.CancelFunc, mirroring
// ardnew-softusb's TransferManager.Stop/WaitAll shutdown sequence.
type Session struct {
	handle *DeviceHandle
	iface  *gousb.Interface
	cfg    *gousb.Config

	intrIn  *gousb.InEndpoint
	intrOut *gousb.OutEndpoint
	bulkOut *gousb.OutEndpoint

	sink EventSink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	writeMu sync.Mutex // serializes bulk-OUT, one in flight at a time (§3 invariant 2)

	events chan callbackEvent

	mu      sync.Mutex
	running bool
	closed  bool

	log *slog.Logger // bound to ComponentSession + usb_path at Open
}

// Open claims the device referenced by handle, discovers its three
// endpoints, and starts the interrupt-IN pump and callback-dispatch
// goroutine. It does not clear halt conditions on the endpoints. sink
// receives every subsequent Event until Close. Open corresponds to §4.1's
// open() operation.
func Open(handle *DeviceHandle, sink EventSink) (*Session, error) {
	dev := handle.Device

	// Best-effort kernel driver detach; harmless if unsupported or already
	// detached.
	dev.SetAutoDetach(true)

	cfg, iface, err := claimInterfaceWithRetry(dev)
	if err != nil {
		return nil, err
	}

	ep := Endpoints{}
	var intrIn *gousb.InEndpoint
	var intrOut *gousb.OutEndpoint
	var bulkOut *gousb.OutEndpoint

	for _, epDesc := range iface.Setting.Endpoints {
		switch {
		case epDesc.Direction == gousb.EndpointDirectionIn && epDesc.TransferType == gousb.TransferTypeInterrupt:
			in, err := iface.InEndpoint(epDesc.Number)
			if err != nil {
				iface.Close()
				cfg.Close()
				return nil, fmt.Errorf("session: interrupt-in endpoint: %w", err)
			}
			intrIn = in
			ep.InterruptInAddr = uint8(epDesc.Number)
			ep.InterruptInMPS = epDesc.MaxPacketSize
		case epDesc.Direction == gousb.EndpointDirectionOut && epDesc.TransferType == gousb.TransferTypeInterrupt:
			out, err := iface.OutEndpoint(epDesc.Number)
			if err != nil {
				iface.Close()
				cfg.Close()
				return nil, fmt.Errorf("session: interrupt-out endpoint: %w", err)
			}
			intrOut = out
			ep.InterruptOutAddr = uint8(epDesc.Number)
			ep.InterruptOutMPS = epDesc.MaxPacketSize
		case epDesc.Direction == gousb.EndpointDirectionOut && epDesc.TransferType == gousb.TransferTypeBulk:
			out, err := iface.OutEndpoint(epDesc.Number)
			if err != nil {
				iface.Close()
				cfg.Close()
				return nil, fmt.Errorf("session: bulk-out endpoint: %w", err)
			}
			bulkOut = out
			ep.BulkOutAddr = uint8(epDesc.Number)
			ep.BulkOutMPS = epDesc.MaxPacketSize
		}
	}

	if intrIn == nil || intrOut == nil || bulkOut == nil {
		iface.Close()
		cfg.Close()
		return nil, pkg.ErrEndpointMissing
	}
	if ep.InterruptInMPS == 0 || ep.InterruptOutMPS == 0 {
		iface.Close()
		cfg.Close()
		return nil, pkg.ErrEndpointMissing
	}

	handle.setEndpoints(ep)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		handle:  handle,
		iface:   iface,
		cfg:     cfg,
		intrIn:  intrIn,
		intrOut: intrOut,
		bulkOut: bulkOut,
		sink:    sink,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan callbackEvent, callbackQueueDepth),
		running: true,
		log:     pkg.DeviceLogger(pkg.ComponentSession, handle.UsbPath),
	}

	s.log.Info("session opened",
		"intr_in", ep.InterruptInAddr, "intr_out", ep.InterruptOutAddr, "bulk_out", ep.BulkOutAddr)

	s.wg.Add(2)
	go s.interruptPump()
	go s.callbackWorker()

	register(handle.UsbPath, s)

	return s, nil
}

func claimInterfaceWithRetry(dev *gousb.Device) (*gousb.Config, *gousb.Interface, error) {
	var lastErr error
	for attempt := 0; attempt < configRetries; attempt++ {
		cfg, err := dev.Config(1)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", pkg.ErrTransientDeviceState, err)
			time.Sleep(configRetryInterval)
			continue
		}
		if len(cfg.Desc.Interfaces) == 0 {
			cfg.Close()
			lastErr = pkg.ErrTransientDeviceState
			time.Sleep(configRetryInterval)
			continue
		}
		iface, err := cfg.Interface(0, 0)
		if err != nil {
			cfg.Close()
			lastErr = fmt.Errorf("%w: %v", pkg.ErrTransientDeviceState, err)
			time.Sleep(configRetryInterval)
			continue
		}
		return cfg, iface, nil
	}
	return nil, nil, lastErr
}

// EnableInterrupts is a no-op placeholder for symmetry with §4.1's
// enable_interrupts() step; the interrupt-IN pump is already running by
// the time Open returns, since nothing else may observe the session
// before interrupts are flowing.
func (s *Session) EnableInterrupts() {}

// Write performs a synchronous bulk-OUT transfer, blocking until the
// write completes, times out (1s, per §4.1), or the session closes. Only
// one Write may be in flight at a time; concurrent callers serialize.
func (s *Session) Write(data []byte) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.isRunning() {
		return 0, pkg.ErrNotRunning
	}

	ctx, cancel := context.WithTimeout(s.ctx, bulkWriteTimeout)
	defer cancel()

	n, err := s.bulkOut.WriteContext(ctx, data)
	if err != nil {
		s.log.Warn("bulk-out write failed", "err", err)
		return n, classifyTransferError(err)
	}
	return n, nil
}

// WriteInterrupt sends a fire-and-forget interrupt-OUT packet. It does not
// wait for completion beyond submission; errors are logged, not returned,
// matching §4.1's "interrupt-OUT (fire-and-forget)" transfer slot.
func (s *Session) WriteInterrupt(data []byte) {
	if !s.isRunning() || s.intrOut == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, bulkWriteTimeout)
		defer cancel()
		if _, err := s.intrOut.WriteContext(ctx, data); err != nil {
			s.log.Debug("interrupt-out write failed", "err", err)
		}
	}()
}

// UsbPath returns the device's dotted bus-port path.
func (s *Session) UsbPath() string { return s.handle.UsbPath }

func (s *Session) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// interruptPump continuously resubmits interrupt-IN reads and enqueues
// each completion as a callbackEvent, exactly one outstanding read at a
// time (§3 invariant 3).
func (s *Session) interruptPump() {
	defer s.wg.Done()

	buf := make([]byte, s.handle.Endpoints().InterruptInMPS)
	for {
		select {
		case <-s.ctx.Done():
			s.enqueue(callbackEvent{kind: EventTransferCancelled})
			return
		default:
		}

		n, err := s.intrIn.ReadContext(s.ctx, buf)
		if err != nil {
			if s.ctx.Err() != nil {
				s.enqueue(callbackEvent{kind: EventTransferCancelled})
				return
			}
			if err == io.EOF || isNoDeviceError(err) {
				s.enqueue(callbackEvent{kind: EventNoDevice})
				return
			}
			s.log.Warn("interrupt-in read failed", "err", err)
			s.enqueue(callbackEvent{kind: EventTransferError})
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		s.enqueue(callbackEvent{kind: EventInterrupt, data: data})
	}
}

func (s *Session) enqueue(e callbackEvent) {
	select {
	case s.events <- e:
	case <-time.After(closeDrainWindow):
		s.log.Warn("callback queue full, dropping event", "kind", e.kind)
	}
}

// callbackWorker is the single consumer draining s.events into the
// EventSink, guaranteeing FIFO, single-goroutine delivery (§3 invariant
// 4).
func (s *Session) callbackWorker() {
	defer s.wg.Done()
	for e := range s.events {
		if s.sink != nil {
			s.sink.HandleSessionEvent(Event{Kind: e.kind, Data: e.data})
		}
		if e.kind == EventNoDevice || e.kind == EventTransferCancelled {
			return
		}
	}
}

// Close cancels all in-flight transfers, waits up to closeDrainWindow for
// the pump and callback goroutines to observe cancellation, then releases
// the interface and configuration handles. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.running = false
	s.mu.Unlock()

	unregister(s.handle.UsbPath)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeDrainWindow):
		s.log.Warn("close timed out waiting for transfer goroutines")
	}

	close(s.events)

	if s.iface != nil {
		s.iface.Close()
	}
	if s.cfg != nil {
		s.cfg.Close()
	}

	s.log.Info("session closed")
	return nil
}

func classifyTransferError(err error) error {
	if isNoDeviceError(err) {
		return pkg.ErrNoDevice
	}
	return fmt.Errorf("%w: %v", pkg.ErrTransferError, err)
}

func isNoDeviceError(err error) bool {
	if err == nil {
		return false
	}
	// gousb surfaces disconnects as libusb errors whose text mentions "no
	// device"; there is no typed sentinel to compare against.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no device") || strings.Contains(msg, "disconnected")
}
