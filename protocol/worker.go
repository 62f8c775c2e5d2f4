package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/synaptics-astra/astra-update/image"
	"github.com/synaptics-astra/astra-update/pkg"
	"github.com/synaptics-astra/astra-update/usbproto"
)

// chunkSize is the maximum bulk-OUT write size per §4.2 ("chunks of up to
// 1 MiB"). It is 4 bytes below image.MaxBlockSize, so a chunk-sized
// buffer is never truncated by Image.Block's cap.
const chunkSize = image.MaxBlockSize - 4

// BulkWriter is the narrow interface the protocol worker needs from a
// session: a synchronous, blocking bulk-OUT write.
type BulkWriter interface {
	Write(data []byte) (int, error)
}

// ProgressFunc is invoked after the header and after each chunk, per
// §4.2 ("Progress is reported after the header and after each chunk.").
// sent/total are cumulative payload bytes, excluding the 8-byte header.
type ProgressFunc func(imageName string, sent, total int64)

// SizeReplyName is the catalog name of the size-reply side-channel file
// (§4.2, §6).
const SizeReplyName = "07_IMAGE"

// Worker serves image requests against one catalog for the lifetime of
// one session.
type Worker struct {
	Catalog  *image.Catalog
	Writer   BulkWriter
	Progress ProgressFunc

	// FinalBootImage is a substring checked against each served image's
	// name, per §4.4's catalog-assembly rules. It is set once at
	// construction, before the request loop goroutine starts, and never
	// written again, so it needs no lock.
	FinalBootImage string
	BootOnly       bool

	// mu guards the fields below, which requestLoop's goroutine reads on
	// every Handle call while the orchestrator's Update (a different
	// goroutine) may concurrently set finalUpdateImage.
	mu               sync.Mutex
	finalUpdateImage string
	waitForSizeReply bool
	pendingOutcome   Outcome
}

// SetFinalUpdateImage records the substring that marks the update
// phase's terminal image, per §4.4's catalog-assembly rules. Called by
// orchestrator.Update, which may run concurrently with the request loop
// goroutine already serving boot-phase image requests.
func (w *Worker) SetFinalUpdateImage(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.finalUpdateImage = name
}

// Handle parses and serves one interrupt packet. ok is false if data does
// not carry the image-request sentinel, meaning the caller should treat
// it as console text instead (§4.2).
func (w *Worker) Handle(data []byte) (outcome Outcome, ok bool, err error) {
	req, ok := usbproto.ParseRequest(data)
	if !ok {
		return OutcomeNone, false, nil
	}

	pkg.LogDebug(pkg.ComponentProtocol, "image request", "name", req.Name, "prefix", req.Prefix, "image_type", req.ImageType)

	im := w.Catalog.Lookup(req.Name)
	if im == nil {
		return OutcomeMissingImage, true, fmt.Errorf("%w: %s", pkg.ErrImageMissing, req.Name)
	}

	size, err := im.Size()
	if err != nil {
		return OutcomeMissingImage, true, err
	}

	if err := w.send(im, size); err != nil {
		return OutcomeNone, true, err
	}

	if req.WantsSizeReply() {
		if err := w.writeSizeReply(size); err != nil {
			pkg.LogWarn(pkg.ComponentProtocol, "size-reply write failed", "err", err)
		}
	}

	return w.terminalOutcome(im.Name()), true, nil
}

func (w *Worker) send(im *image.Image, size int64) error {
	// Release the file after each send so a repeated request re-opens it
	// from the start.
	defer im.Close()

	header := usbproto.EmitHeader(uint32(size))
	if _, err := w.Writer.Write(header[:]); err != nil {
		return fmt.Errorf("protocol: header write: %w", err)
	}
	if w.Progress != nil {
		w.Progress(im.Name(), 0, size)
	}

	buf := make([]byte, chunkSize)
	var sent int64
	for sent < size {
		n, err := im.Block(buf)
		if n > 0 {
			if _, werr := w.Writer.Write(buf[:n]); werr != nil {
				return fmt.Errorf("protocol: chunk write: %w", werr)
			}
			sent += int64(n)
			if w.Progress != nil {
				w.Progress(im.Name(), sent, size)
			}
		}
		if err != nil {
			return fmt.Errorf("protocol: reading %s: %w", im.Name(), err)
		}
		if n == 0 {
			break
		}
	}
	return nil
}

func (w *Worker) writeSizeReply(size int64) error {
	im := w.Catalog.Lookup(SizeReplyName)
	if im == nil {
		return fmt.Errorf("%w: %s", pkg.ErrImageMissing, SizeReplyName)
	}
	var payload [4]byte
	binary.LittleEndian.PutUint32(payload[:], uint32(size))
	return im.Overwrite(payload[:])
}

// terminalOutcome implements §4.2's three-step terminal-image check, in
// order. Steps 1 and 2 either resolve immediately or arm waitForSizeReply
// with the outcome step 3 eventually delivers once the device comes back
// for the 07_IMAGE size-reply file (§4.2's "size-reply side-channel").
func (w *Worker) terminalOutcome(sentName string) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.FinalBootImage != "" && strings.Contains(sentName, w.FinalBootImage) {
		if w.BootOnly {
			w.waitForSizeReply = true
			w.pendingOutcome = OutcomeBootComplete
			return OutcomeNone
		}
		return OutcomeBootComplete
	}
	if w.finalUpdateImage != "" && strings.Contains(sentName, w.finalUpdateImage) {
		kind := w.Catalog.Lookup(sentName).Kind()
		if kind == image.KindUpdateEmmc || kind == image.KindUpdateSpi {
			w.waitForSizeReply = true
			w.pendingOutcome = OutcomeUpdateComplete
			return OutcomeNone
		}
		return OutcomeUpdateComplete
	}
	if w.waitForSizeReply && sentName == SizeReplyName {
		w.waitForSizeReply = false
		outcome := w.pendingOutcome
		w.pendingOutcome = OutcomeNone
		return outcome
	}
	return OutcomeNone
}
