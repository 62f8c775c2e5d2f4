package orchestrator

import (
	"fmt"
	"path/filepath"

	"github.com/synaptics-astra/astra-update/console"
	"github.com/synaptics-astra/astra-update/image"
	"github.com/synaptics-astra/astra-update/protocol"
	"github.com/synaptics-astra/astra-update/session"
	"github.com/synaptics-astra/astra-update/status"
)

// Boot assembles the catalog for bootImage, opens the session around
// handle, and starts the boot phase. bootCommand is injected into
// uEnv.txt when the board expects the flash/boot command baked into its
// environment rather than delivered over the console (§4.4 step 7); it
// is deliberately not a BootImage field (see DESIGN.md).
func (o *Orchestrator) Boot(handle *session.DeviceHandle, bootImage *image.BootImage, bootCommand string) error {
	o.uenvSupport = bootImage.UEnvSupport
	o.ubootConsole = bootImage.UBootConsole
	o.linuxBoot = bootImage.LinuxBoot
	finalBootImage := bootImage.FinalImage

	o.publish(status.Opened, 0, "", "")

	sess, err := session.Open(handle, o)
	if err != nil {
		o.publish(status.BootFail, 0, "", err.Error())
		return err
	}
	o.sess = sess
	o.deviceDir = deviceDirFor(handle.UsbPath)

	logPath := filepath.Join(o.deviceDir, "console.log")
	if err := ensureDir(o.deviceDir); err != nil {
		return o.failBoot(err)
	}
	cons, err := console.New(sess, logPath)
	if err != nil {
		return o.failBoot(err)
	}
	o.console = cons

	pathImage, err := writeFile(o.deviceDir, "06_IMAGE", []byte(handle.UsbPath))
	if err != nil {
		return o.failBoot(err)
	}
	o.catalog.Add(pathImage)

	sizeReplyImage, err := writeFile(o.deviceDir, protocol.SizeReplyName, make([]byte, 4))
	if err != nil {
		return o.failBoot(err)
	}
	o.catalog.Add(sizeReplyImage)

	o.catalog.AddAll(bootImage.Images)

	if o.uenvSupport && !o.catalog.Has("uEnv.txt") {
		content := fmt.Sprintf("bootcmd=%s", bootCommand)
		uenv, err := writeFile(o.deviceDir, "uEnv.txt", []byte(content))
		if err != nil {
			return o.failBoot(err)
		}
		o.catalog.Add(uenv)
		if bootCommand == "" {
			finalBootImage = "uEnv.txt"
		}
	}

	if !o.bootOnly && o.linuxBoot {
		finalBootImage = "uEnv.txt"
	}

	o.worker = &protocol.Worker{
		Catalog:        o.catalog,
		Writer:         sess,
		Progress:       o.onImageProgress,
		FinalBootImage: finalBootImage,
		BootOnly:       o.bootOnly,
	}

	o.publish(status.BootStart, 0, "", "")
	o.wg.Add(1)
	go o.requestLoop()
	sess.EnableInterrupts()

	return nil
}

func (o *Orchestrator) failBoot(err error) error {
	o.log.Error("boot catalog assembly failed", "err", err)
	o.publish(status.BootFail, 0, "", err.Error())
	if o.sess != nil {
		o.sess.Close()
	}
	return err
}
