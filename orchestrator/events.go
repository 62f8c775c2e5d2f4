package orchestrator

import (
	"time"

	"github.com/synaptics-astra/astra-update/protocol"
	"github.com/synaptics-astra/astra-update/session"
	"github.com/synaptics-astra/astra-update/status"
	"github.com/synaptics-astra/astra-update/usbproto"
)

// HandleSessionEvent implements session.EventSink. It is invoked on the
// session's callback-worker goroutine and must not block: interrupt
// bytes are handed to the request loop's channel, everything else is
// handled inline since it is never more than a status promotion.
func (o *Orchestrator) HandleSessionEvent(e session.Event) {
	switch e.Kind {
	case session.EventInterrupt:
		select {
		case o.interrupts <- e.Data:
		case <-o.deviceGone:
		}
	case session.EventNoDevice, session.EventTransferCancelled, session.EventTransferError:
		o.handleDeviceGone(e.Kind)
	}
}

// handleDeviceGone implements §4.4's "USB event handling in Orchestrator"
// and §7's NoDevice row: the gen3_miniloader reset exception, then
// promotion of any in-flight *Progress status to *Fail.
func (o *Orchestrator) handleDeviceGone(kind session.EventKind) {
	o.mu.Lock()
	lastName := o.lastName
	state := o.state
	o.mu.Unlock()

	if lastName == resetTriggerImage {
		o.log.Info("device reset after miniloader, ignoring disconnect")
	} else {
		switch state {
		case status.BootProgress:
			o.publish(status.BootFail, 0, "", "device disconnected during boot")
		case status.UpdateProgress:
			o.publish(status.UpdateFail, 0, "", "device disconnected during update")
		default:
			if !state.IsTerminal() && kind != session.EventTransferCancelled {
				o.log.Warn("device gone in non-terminal state", "state", state)
			}
		}
	}

	o.goneOnce.Do(func() { close(o.deviceGone) })
}

func (o *Orchestrator) onImageProgress(imageName string, sent, total int64) {
	percent := 0
	if total > 0 {
		percent = int(sent * 100 / total)
	}
	if sent == 0 {
		o.publish(status.ImageSendStart, 0, imageName, "")
		return
	}
	if sent >= total {
		o.publish(status.ImageSendComplete, 100, imageName, "")
		return
	}
	o.publish(status.ImageSendProgress, percent, imageName, "")
}

// requestLoop is the per-device image-request worker (T4): it dispatches
// each interrupt payload to either the protocol worker or the console,
// and enforces the 10s per-request timeout (§4.2, §5).
func (o *Orchestrator) requestLoop() {
	defer o.wg.Done()

	for {
		timer := time.NewTimer(requestTimeout)
		select {
		case data, ok := <-o.interrupts:
			timer.Stop()
			if !ok {
				return
			}
			o.dispatch(data)
		case <-timer.C:
			o.handleRequestTimeout()
		case <-o.deviceGone:
			timer.Stop()
			return
		}
	}
}

func (o *Orchestrator) handleRequestTimeout() {
	switch o.currentState() {
	case status.BootProgress:
		o.publish(status.BootFail, 0, "", "Timeout during boot, press RESET while holding USB_BOOT to try again")
		o.goneOnce.Do(func() { close(o.deviceGone) })
	case status.UpdateProgress:
		// Open Question (§9): the original silently continues here,
		// relying on the device or USB disconnect to end the session.
		// Surface a telemetry line instead of swallowing it outright,
		// without changing the completion semantics.
		o.log.Warn("update stalled waiting for image request")
	}
}

func (o *Orchestrator) dispatch(data []byte) {
	outcome, ok, err := o.worker.Handle(data)
	if !ok {
		o.console.Append(data)
		return
	}

	req := lastRequestName(data)
	o.mu.Lock()
	o.lastName = req
	state := o.state
	o.mu.Unlock()

	switch state {
	case status.BootStart:
		o.publish(status.BootProgress, 0, req, "")
		state = status.BootProgress
	case status.UpdateStart:
		o.publish(status.UpdateProgress, 0, req, "")
		state = status.UpdateProgress
	}

	if err != nil {
		o.publish(status.ImageSendFail, 0, req, err.Error())
		failStatus := status.UpdateFail
		if state == status.BootStart || state == status.BootProgress {
			failStatus = status.BootFail
		}
		o.publish(failStatus, 0, req, err.Error())
		o.goneOnce.Do(func() { close(o.deviceGone) })
		return
	}

	switch outcome {
	case protocol.OutcomeBootComplete:
		o.publish(status.BootComplete, 100, req, "")
	case protocol.OutcomeUpdateComplete:
		o.publish(status.UpdateComplete, 100, req, "")
	}
}

func lastRequestName(data []byte) string {
	req, ok := usbproto.ParseRequest(data)
	if !ok {
		return ""
	}
	return req.Name
}
