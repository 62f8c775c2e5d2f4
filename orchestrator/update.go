package orchestrator

import (
	"github.com/synaptics-astra/astra-update/image"
	"github.com/synaptics-astra/astra-update/status"
)

// Update appends flashImage's catalog entries and, on consoles that need
// it, injects the flash command. It must be called after Boot reaches
// BootComplete (§4.4 "Update(flash_image) (called after a successful
// Boot)").
func (o *Orchestrator) Update(flashImage *image.FlashImage) {
	o.mu.Lock()
	o.finalUpdateImage = flashImage.FinalImage
	o.resetWhenComplete = flashImage.ResetWhenComplete
	o.mu.Unlock()

	o.catalog.AddAll(flashImage.Images)
	o.worker.SetFinalUpdateImage(flashImage.FinalImage)

	o.publish(status.UpdateStart, 0, "", "")

	if !o.uenvSupport && o.ubootConsole == image.UBootConsoleUSB {
		o.console.WaitForPrompt()
		o.console.WriteLine(flashImage.FlashCommand)
	}
}
