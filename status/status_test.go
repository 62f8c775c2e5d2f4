package status

import "testing"

func TestStatus_IsFail(t *testing.T) {
	failStatuses := []Status{BootFail, UpdateFail, ImageSendFail}
	for _, s := range failStatuses {
		if !s.IsFail() {
			t.Errorf("%v.IsFail() = false, want true", s)
		}
	}
	okStatuses := []Status{Added, Opened, BootStart, BootProgress, BootComplete, UpdateComplete}
	for _, s := range okStatuses {
		if s.IsFail() {
			t.Errorf("%v.IsFail() = true, want false", s)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := []Status{BootComplete, BootFail, UpdateComplete, UpdateFail}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = false, want true", s)
		}
	}
	nonTerminal := []Status{Added, Opened, BootStart, BootProgress, UpdateStart, UpdateProgress, ImageSendComplete}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = true, want false", s)
		}
	}
}

func TestSinkFunc(t *testing.T) {
	var got Event
	var sink Sink = SinkFunc(func(e Event) { got = e })
	sink.Publish(Event{DeviceName: "dev0", Status: BootStart, Progress: 0})
	if got.DeviceName != "dev0" || got.Status != BootStart {
		t.Errorf("SinkFunc did not forward event: %+v", got)
	}
}

func TestManagerSinkFunc(t *testing.T) {
	var got ManagerEvent
	var sink ManagerSink = ManagerSinkFunc(func(e ManagerEvent) { got = e })
	sink.PublishManager(ManagerEvent{Kind: ManagerFailure, Message: "boom"})
	if got.Kind != ManagerFailure || got.Message != "boom" {
		t.Errorf("ManagerSinkFunc did not forward event: %+v", got)
	}
}

func TestStatusString(t *testing.T) {
	if BootComplete.String() != "BootComplete" {
		t.Errorf("String() = %q, want %q", BootComplete.String(), "BootComplete")
	}
}
