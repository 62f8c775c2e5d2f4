package session

import "testing"

func TestDeviceHandle_SetEndpointsOnce(t *testing.T) {
	h := NewDeviceHandle(nil, "1-2.4")

	h.setEndpoints(Endpoints{InterruptInAddr: 0x81, BulkOutAddr: 0x02, InterruptInMPS: 64})
	h.setEndpoints(Endpoints{InterruptInAddr: 0x99}) // must be ignored

	got := h.Endpoints()
	if got.InterruptInAddr != 0x81 || got.BulkOutAddr != 0x02 || got.InterruptInMPS != 64 {
		t.Errorf("Endpoints() = %+v, want first-write-wins result", got)
	}
}

func TestDeviceHandle_String(t *testing.T) {
	h := NewDeviceHandle(nil, "1-2.4")
	if got, want := h.String(), "usb:1-2.4"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
