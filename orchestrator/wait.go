package orchestrator

import (
	"github.com/synaptics-astra/astra-update/image"
	"github.com/synaptics-astra/astra-update/status"
)

// WaitForCompletion blocks until the session reaches a terminal state,
// per §4.4's two modes: device-event driven (uEnv/UART) or a second
// U-Boot prompt over the USB console.
func (o *Orchestrator) WaitForCompletion() {
	if o.uenvSupport || o.ubootConsole == image.UBootConsoleUart {
		o.waitOnDeviceEvent()
		return
	}
	o.waitOnSecondPrompt()
}

func (o *Orchestrator) waitOnDeviceEvent() {
	<-o.deviceGone
	state := o.currentState()
	if state.IsTerminal() && !state.IsFail() {
		o.publish(state, 100, "", "")
	}
	o.shutdown()
}

func (o *Orchestrator) waitOnSecondPrompt() {
	if !o.console.WaitForPrompt() {
		o.shutdown()
		return
	}
	if o.resetWhenComplete {
		o.console.WriteLine("reset")
	}
	o.publish(status.UpdateComplete, 100, "", "")
	o.shutdown()
}

// shutdown tears down the session and console, idempotently.
func (o *Orchestrator) shutdown() {
	if o.console != nil {
		o.console.Shutdown()
	}
	if o.sess != nil {
		o.sess.Close()
	}
	o.goneOnce.Do(func() { close(o.deviceGone) })
	o.wg.Wait()
}
