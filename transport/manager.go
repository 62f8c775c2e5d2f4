package transport

import (
	"sync"

	"github.com/synaptics-astra/astra-update/image"
	"github.com/synaptics-astra/astra-update/orchestrator"
	"github.com/synaptics-astra/astra-update/pkg"
	"github.com/synaptics-astra/astra-update/session"
	"github.com/synaptics-astra/astra-update/status"
)

// ManagerMode selects whether a Manager's devices stop after boot or
// continue on into an update, mirroring the original AstraDeviceManager's
// boot/update modes.
type ManagerMode int

// Manager modes.
const (
	ManagerModeBoot ManagerMode = iota
	ManagerModeUpdate
)

// Manager drives one or more concurrent device sessions from a single
// Transport, fanning Boot (and, in ManagerModeUpdate, Update) out to a
// fresh orchestrator.Orchestrator per discovered usb_path. It collapses
// every device's per-device Status stream into the caller's status.Sink
// while publishing its own process-level status.ManagerEvent stream
// (Start/Info/Failure/Shutdown) — grounded on
// astra_device_manager.cpp's AstraDeviceManagerImpl, which plays the same
// role around one USBTransport.
type Manager struct {
	t    *Transport
	sink status.Sink
	mgr  status.ManagerSink

	mode        ManagerMode
	bootImage   *image.BootImage
	flashImage  *image.FlashImage
	bootCommand string
	continuous  bool

	mu              sync.Mutex
	devices         map[string]*orchestrator.Orchestrator
	failureReported bool

	wg sync.WaitGroup
}

// NewManager wraps t with the bookkeeping needed to run one
// orchestrator.Orchestrator per discovered device. sink receives every
// device's Status events; mgr (optional) receives the coarser
// process-level ManagerEvent stream. continuous keeps watching for more
// devices after one reaches a terminal state, matching the C++
// implementation's runContinuously flag.
func NewManager(t *Transport, sink status.Sink, mgr status.ManagerSink, continuous bool) *Manager {
	return &Manager{
		t:          t,
		sink:       sink,
		mgr:        mgr,
		continuous: continuous,
		devices:    make(map[string]*orchestrator.Orchestrator),
	}
}

// Boot starts watching for devices and boots each one with bootImage,
// stopping after BootComplete/BootFail. It corresponds to
// AstraDeviceManagerImpl::Boot.
func (m *Manager) Boot(bootImage *image.BootImage, bootCommand string) {
	m.mode = ManagerModeBoot
	m.bootImage = bootImage
	m.bootCommand = bootCommand
	m.run()
}

// Update starts watching for devices, boots each one with bootImage,
// then immediately flashes flashImage once boot completes. It
// corresponds to AstraDeviceManagerImpl::Update.
func (m *Manager) Update(bootImage *image.BootImage, flashImage *image.FlashImage) {
	m.mode = ManagerModeUpdate
	m.bootImage = bootImage
	m.flashImage = flashImage
	m.bootCommand = flashImage.FlashCommand
	m.run()
}

func (m *Manager) run() {
	m.publishManager(status.ManagerInfo, m.bootImage.Describe())
	m.publishManager(status.ManagerStart, "waiting for device")
	m.t.Start(DeviceSinkFunc(m.deviceArrived))
}

func (m *Manager) deviceArrived(handle *session.DeviceHandle) {
	watched := status.SinkFunc(func(e status.Event) {
		if e.Status.IsFail() {
			m.recordFailure()
		}
		m.sink.Publish(e)
	})

	o := orchestrator.New(handle.UsbPath, watched, m.mode == ManagerModeBoot)

	m.mu.Lock()
	m.devices[handle.UsbPath] = o
	m.mu.Unlock()

	m.wg.Add(1)
	go m.runDevice(o, handle)
}

// runDevice plays out one device's Boot -> [Update] -> WaitForCompletion
// lifecycle and, once it reaches a terminal state, publishes Shutdown
// unless the Manager is running continuously — mirroring
// AstraDeviceThread's end-of-session ManagerEvent.
func (m *Manager) runDevice(o *orchestrator.Orchestrator, handle *session.DeviceHandle) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		delete(m.devices, handle.UsbPath)
		m.mu.Unlock()
	}()

	if err := o.Boot(handle, m.bootImage, m.bootCommand); err != nil {
		pkg.LogError(pkg.ComponentTransport, "manager: boot failed", "device", handle.UsbPath, "err", err)
		m.recordFailure()
		return
	}

	if m.mode == ManagerModeUpdate {
		o.Update(m.flashImage)
	}

	o.WaitForCompletion()

	if !m.continuous {
		m.publishManager(status.ManagerShutdown, "device session complete, shutting down")
	}
}

func (m *Manager) recordFailure() {
	m.publishManager(status.ManagerFailure, "device reported a failure")
}

func (m *Manager) publishManager(kind status.ManagerKind, message string) {
	if kind == status.ManagerFailure {
		m.mu.Lock()
		m.failureReported = true
		m.mu.Unlock()
	}
	if m.mgr != nil {
		m.mgr.PublishManager(status.ManagerEvent{Kind: kind, Message: message})
	}
}

// ActiveDevices returns the usb_path of every device session currently
// in flight, mutex-protected against concurrent arrivals/departures.
func (m *Manager) ActiveDevices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.devices))
	for path := range m.devices {
		paths = append(paths, path)
	}
	return paths
}

// FailureReported reports whether any device session this Manager has
// run reported a boot or update failure. A caller uses this to decide
// whether to retain a temp directory of logs/images past Shutdown,
// matching AstraDeviceManagerImpl::Shutdown's return value.
func (m *Manager) FailureReported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failureReported
}

// Shutdown stops the underlying Transport, waits for every in-flight
// device session to reach a terminal state, and returns whether any of
// them reported a failure — matching
// AstraDeviceManagerImpl::Shutdown's bool result.
func (m *Manager) Shutdown() bool {
	m.t.Stop()
	m.wg.Wait()
	return m.FailureReported()
}
