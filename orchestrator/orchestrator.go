package orchestrator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/synaptics-astra/astra-update/console"
	"github.com/synaptics-astra/astra-update/image"
	"github.com/synaptics-astra/astra-update/pkg"
	"github.com/synaptics-astra/astra-update/protocol"
	"github.com/synaptics-astra/astra-update/session"
	"github.com/synaptics-astra/astra-update/status"
)

// requestTimeout is the §4.2 "waits at most 10s per image request" bound.
const requestTimeout = 10 * time.Second

// resetTriggerImage is the loader whose delivery is expected to cause an
// immediate, benign USB disconnect (§4.4 "USB event handling").
const resetTriggerImage = "gen3_miniloader.bin.usb"

// Orchestrator drives one device's Boot -> Update -> WaitForCompletion
// lifecycle (component C4). Create one with New for each newly
// discovered device; it is not reusable across devices.
type Orchestrator struct {
	sink     status.Sink
	deviceID string // usb_path, used as both DeviceName and registry/dir key

	mu       sync.Mutex
	state    status.Status
	lastName string // last-requested image name, for the reset-trigger exception

	sess      *session.Session
	console   *console.Console
	worker    *protocol.Worker
	catalog   *image.Catalog
	deviceDir string

	uenvSupport  bool
	ubootConsole image.UBootConsole
	bootOnly     bool
	linuxBoot    bool

	resetWhenComplete bool
	finalUpdateImage  string

	interrupts chan []byte
	deviceGone chan struct{}
	goneOnce   sync.Once
	wg         sync.WaitGroup

	log *slog.Logger // bound to ComponentOrchestrator + deviceID at New
}

// New creates an Orchestrator publishing Status events for deviceID (the
// device's usb_path) to sink. bootOnly selects the boot-without-update
// mode described in §4.4 step 8 and scenario 3.
func New(deviceID string, sink status.Sink, bootOnly bool) *Orchestrator {
	return &Orchestrator{
		deviceID:   deviceID,
		sink:       sink,
		state:      status.Added,
		catalog:    image.NewCatalog(),
		bootOnly:   bootOnly,
		interrupts: make(chan []byte, 32),
		deviceGone: make(chan struct{}),
		log:        pkg.DeviceLogger(pkg.ComponentOrchestrator, deviceID),
	}
}

func (o *Orchestrator) publish(st status.Status, progress int, imageName, message string) {
	o.mu.Lock()
	o.state = st
	o.mu.Unlock()
	if o.sink != nil {
		o.sink.Publish(status.Event{
			DeviceName: o.deviceID,
			Status:     st,
			Progress:   progress,
			ImageName:  imageName,
			Message:    message,
		})
	}
}

func (o *Orchestrator) currentState() status.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// deviceDirFor derives a filesystem-safe per-device working directory
// from usb_path (§4.4 step 3). usb_path's alphabet (digits, '-', '.') is
// already filesystem-safe, so this only needs a stable parent directory
// and a uniquifying prefix.
func deviceDirFor(usbPath string) string {
	return filepath.Join(os.TempDir(), "astra-update-"+usbPath)
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func writeFile(dir, name string, data []byte) (*image.Image, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("orchestrator: writing %s: %w", name, err)
	}
	return image.NewNamed(name, path, image.KindBoot), nil
}
