package protocol

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/synaptics-astra/astra-update/image"
	"github.com/synaptics-astra/astra-update/usbproto"
)

type fakeBulkWriter struct {
	written [][]byte
}

func (w *fakeBulkWriter) Write(data []byte) (int, error) {
	w.written = append(w.written, append([]byte(nil), data...))
	return len(data), nil
}

func (w *fakeBulkWriter) flat() []byte {
	var out []byte
	for _, b := range w.written {
		out = append(out, b...)
	}
	return out
}

func requestPacket(imageType byte, name string) []byte {
	buf := append([]byte(usbproto.Magic), imageType)
	buf = append(buf, []byte(name)...)
	for len(buf) < 32 {
		buf = append(buf, 0)
	}
	return buf
}

func newTestCatalog(t *testing.T) (*image.Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	cat := image.NewCatalog()

	uboot := filepath.Join(dir, "u-boot.bin")
	if err := os.WriteFile(uboot, []byte("uboot-payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	cat.Add(image.New(uboot, image.KindBoot))

	sizeReplyPath := filepath.Join(dir, SizeReplyName)
	if err := os.WriteFile(sizeReplyPath, make([]byte, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	cat.Add(image.NewNamed(SizeReplyName, sizeReplyPath, image.KindBoot))

	return cat, dir
}

func TestWorker_HandleNotARequest(t *testing.T) {
	cat, _ := newTestCatalog(t)
	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}}

	outcome, ok, err := w.Handle([]byte("U-Boot console text"))
	if ok {
		t.Fatalf("Handle() ok = true for non-request packet")
	}
	if err != nil {
		t.Fatalf("Handle() err = %v, want nil", err)
	}
	if outcome != OutcomeNone {
		t.Errorf("Handle() outcome = %v, want OutcomeNone", outcome)
	}
}

func TestWorker_HandleMissingImage(t *testing.T) {
	cat, _ := newTestCatalog(t)
	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}}

	outcome, ok, err := w.Handle(requestPacket(0x01, "nonexistent.bin"))
	if !ok {
		t.Fatalf("Handle() ok = false, want true")
	}
	if outcome != OutcomeMissingImage {
		t.Errorf("Handle() outcome = %v, want OutcomeMissingImage", outcome)
	}
	if err == nil {
		t.Errorf("Handle() err = nil, want ErrImageMissing")
	}
}

func TestWorker_HandleSendsHeaderAndPayload(t *testing.T) {
	cat, _ := newTestCatalog(t)
	fw := &fakeBulkWriter{}
	var progressCalls []int64
	w := &Worker{Catalog: cat, Writer: fw, Progress: func(name string, sent, total int64) {
		progressCalls = append(progressCalls, sent)
	}}

	_, ok, err := w.Handle(requestPacket(0x01, "u-boot.bin"))
	if !ok || err != nil {
		t.Fatalf("Handle() = ok=%v err=%v", ok, err)
	}

	got := fw.flat()
	if len(got) < usbproto.HeaderSize {
		t.Fatalf("wrote %d bytes, want at least header size", len(got))
	}
	size, _, headerOK := usbproto.ParseHeader(got[:usbproto.HeaderSize])
	if !headerOK || size != uint32(len("uboot-payload")) {
		t.Fatalf("header size = %d ok=%v, want %d", size, headerOK, len("uboot-payload"))
	}
	if !bytes.Equal(got[usbproto.HeaderSize:], []byte("uboot-payload")) {
		t.Fatalf("payload = %q, want %q", got[usbproto.HeaderSize:], "uboot-payload")
	}
	if len(progressCalls) < 2 {
		t.Fatalf("progress called %d times, want at least 2 (header + one chunk)", len(progressCalls))
	}
	if progressCalls[0] != 0 {
		t.Errorf("first progress call sent = %d, want 0", progressCalls[0])
	}
}

func TestWorker_SizeReplyThresholdWritesFile(t *testing.T) {
	cat, dir := newTestCatalog(t)
	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}}

	if _, ok, err := w.Handle(requestPacket(0x80, "u-boot.bin")); !ok || err != nil {
		t.Fatalf("Handle() = ok=%v err=%v", ok, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SizeReplyName))
	if err != nil {
		t.Fatalf("reading size-reply file: %v", err)
	}
	got := binary.LittleEndian.Uint32(data)
	if got != uint32(len("uboot-payload")) {
		t.Errorf("size-reply file = %d, want %d", got, len("uboot-payload"))
	}
}

func TestWorker_TerminalImageBootComplete(t *testing.T) {
	cat, _ := newTestCatalog(t)
	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}, FinalBootImage: "u-boot.bin"}

	outcome, ok, err := w.Handle(requestPacket(0x01, "u-boot.bin"))
	if !ok || err != nil {
		t.Fatalf("Handle() = ok=%v err=%v", ok, err)
	}
	if outcome != OutcomeBootComplete {
		t.Errorf("outcome = %v, want OutcomeBootComplete", outcome)
	}
}

func TestWorker_BootOnlyWaitsForSizeReplyThenCompletes(t *testing.T) {
	cat, _ := newTestCatalog(t)
	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}, FinalBootImage: "u-boot.bin", BootOnly: true}

	outcome, ok, err := w.Handle(requestPacket(0x80, "u-boot.bin"))
	if !ok || err != nil {
		t.Fatalf("Handle() = ok=%v err=%v", ok, err)
	}
	if outcome != OutcomeNone {
		t.Fatalf("outcome after final boot image in bootOnly mode = %v, want OutcomeNone", outcome)
	}

	outcome, ok, err = w.Handle(requestPacket(0x01, SizeReplyName))
	if !ok || err != nil {
		t.Fatalf("Handle(07_IMAGE) = ok=%v err=%v", ok, err)
	}
	if outcome != OutcomeBootComplete {
		t.Errorf("outcome after 07_IMAGE request = %v, want OutcomeBootComplete", outcome)
	}
}

func TestWorker_UpdateCompleteForEmmcKind(t *testing.T) {
	dir := t.TempDir()
	cat := image.NewCatalog()
	partPath := filepath.Join(dir, "emmc.img")
	if err := os.WriteFile(partPath, []byte("partition-data"), 0o644); err != nil {
		t.Fatal(err)
	}
	cat.Add(image.New(partPath, image.KindUpdateEmmc))
	sizeReplyPath := filepath.Join(dir, SizeReplyName)
	if err := os.WriteFile(sizeReplyPath, make([]byte, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	cat.Add(image.NewNamed(SizeReplyName, sizeReplyPath, image.KindBoot))

	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}}
	w.SetFinalUpdateImage("emmc.img")

	outcome, ok, err := w.Handle(requestPacket(0x80, "emmc.img"))
	if !ok || err != nil {
		t.Fatalf("Handle() = ok=%v err=%v", ok, err)
	}
	if outcome != OutcomeNone {
		t.Fatalf("outcome after final eMMC image = %v, want OutcomeNone (waiting on size reply)", outcome)
	}

	outcome, ok, err = w.Handle(requestPacket(0x01, SizeReplyName))
	if !ok || err != nil {
		t.Fatalf("Handle(07_IMAGE) = ok=%v err=%v", ok, err)
	}
	if outcome != OutcomeUpdateComplete {
		t.Errorf("outcome after 07_IMAGE request = %v, want OutcomeUpdateComplete", outcome)
	}
}

func TestWorker_UpdateCompleteImmediateForNonEmmcSpiKind(t *testing.T) {
	cat, _ := newTestCatalog(t)
	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}}
	w.SetFinalUpdateImage("u-boot.bin")

	outcome, ok, err := w.Handle(requestPacket(0x01, "u-boot.bin"))
	if !ok || err != nil {
		t.Fatalf("Handle() = ok=%v err=%v", ok, err)
	}
	if outcome != OutcomeUpdateComplete {
		t.Errorf("outcome = %v, want OutcomeUpdateComplete", outcome)
	}
}

// TestWorker_SetFinalUpdateImageConcurrentWithHandle exercises the race
// orchestrator.Update and the request loop goroutine produce in
// practice: one goroutine calling SetFinalUpdateImage while another
// repeatedly calls Handle. Run with -race to confirm mu actually
// serializes the two.
func TestWorker_SetFinalUpdateImageConcurrentWithHandle(t *testing.T) {
	cat, _ := newTestCatalog(t)
	w := &Worker{Catalog: cat, Writer: &fakeBulkWriter{}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			w.SetFinalUpdateImage("u-boot.bin")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			w.Handle(requestPacket(0x01, "does-not-exist"))
		}
	}()
	wg.Wait()
}
