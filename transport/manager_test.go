package transport

import (
	"testing"

	"github.com/synaptics-astra/astra-update/orchestrator"
	"github.com/synaptics-astra/astra-update/status"
)

func TestManager_FailureReported_InitiallyFalse(t *testing.T) {
	m := NewManager(nil, status.SinkFunc(func(status.Event) {}), nil, false)
	if m.FailureReported() {
		t.Fatal("expected FailureReported to be false before any device runs")
	}
}

func TestManager_RecordFailure_SetsFailureReported(t *testing.T) {
	m := NewManager(nil, status.SinkFunc(func(status.Event) {}), nil, false)
	m.recordFailure()
	if !m.FailureReported() {
		t.Fatal("expected FailureReported to be true after recordFailure")
	}
}

func TestManager_PublishManager_ForwardsToManagerSink(t *testing.T) {
	var got status.ManagerEvent
	mgr := status.ManagerSinkFunc(func(e status.ManagerEvent) { got = e })
	m := NewManager(nil, status.SinkFunc(func(status.Event) {}), mgr, false)

	m.publishManager(status.ManagerInfo, "boot image description")

	if got.Kind != status.ManagerInfo || got.Message != "boot image description" {
		t.Errorf("ManagerSink did not receive expected event: %+v", got)
	}
}

func TestManager_PublishManager_NilSinkIsSafe(t *testing.T) {
	m := NewManager(nil, status.SinkFunc(func(status.Event) {}), nil, false)
	m.publishManager(status.ManagerStart, "waiting for device")
}

func TestManager_ActiveDevices_TracksCatalog(t *testing.T) {
	m := NewManager(nil, status.SinkFunc(func(status.Event) {}), nil, false)
	if devices := m.ActiveDevices(); len(devices) != 0 {
		t.Fatalf("expected no active devices, got %v", devices)
	}

	m.mu.Lock()
	m.devices["1-2.4"] = &orchestrator.Orchestrator{}
	m.mu.Unlock()

	devices := m.ActiveDevices()
	if len(devices) != 1 || devices[0] != "1-2.4" {
		t.Fatalf("expected [1-2.4], got %v", devices)
	}
}
