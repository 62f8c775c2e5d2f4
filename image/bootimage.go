package image

// SecureBootVersion identifies the device's secure boot ROM generation,
// which determines which first-stage loader format it will accept.
type SecureBootVersion int

// Secure boot versions.
const (
	SecureBootV2 SecureBootVersion = iota
	SecureBootV3
)

// String returns the manifest-facing name for a secure boot version.
func (v SecureBootVersion) String() string {
	switch v {
	case SecureBootV2:
		return "gen2"
	case SecureBootV3:
		return "genx"
	default:
		return "unknown"
	}
}

// MemoryLayout identifies the total DRAM populated on the board, which
// selects among otherwise-identical loader variants built for different
// memory sizes.
type MemoryLayout int

// Supported memory layouts.
const (
	MemoryLayout1GB MemoryLayout = iota
	MemoryLayout2GB
	MemoryLayout3GB
	MemoryLayout4GB
)

// String returns the manifest-facing name for a memory layout.
func (m MemoryLayout) String() string {
	switch m {
	case MemoryLayout1GB:
		return "1GB"
	case MemoryLayout2GB:
		return "2GB"
	case MemoryLayout3GB:
		return "3GB"
	case MemoryLayout4GB:
		return "4GB"
	default:
		return "unknown"
	}
}

// MemoryDDRType identifies the DRAM technology populated on the board.
// Not used by session logic directly; carried through from the manifest
// for status/log enrichment, as the original AstraBootImage does.
type MemoryDDRType int

// Supported DDR types.
const (
	MemoryDDRNotSpecified MemoryDDRType = iota
	MemoryDDR3
	MemoryDDR4
	MemoryLPDDR4
	MemoryLPDDR4X
	MemoryDDR4X16
)

// String returns the manifest-facing name for a DDR type.
func (d MemoryDDRType) String() string {
	switch d {
	case MemoryDDR3:
		return "DDR3"
	case MemoryDDR4:
		return "DDR4"
	case MemoryLPDDR4:
		return "LPDDR4"
	case MemoryLPDDR4X:
		return "LPDDR4X"
	case MemoryDDR4X16:
		return "DDR4X16"
	default:
		return "not_specified"
	}
}

// UBootConsole identifies which physical channel the device's U-Boot
// build exposes its interactive console on.
type UBootConsole int

// U-Boot console channels.
const (
	UBootConsoleUart UBootConsole = iota
	UBootConsoleUSB
)

// String returns the manifest-facing name for a console channel.
func (c UBootConsole) String() string {
	switch c {
	case UBootConsoleUart:
		return "uart"
	case UBootConsoleUSB:
		return "usb"
	default:
		return "unknown"
	}
}

// UBootVariant identifies which U-Boot build the device runs, which
// affects the set of commands it understands.
type UBootVariant int

// U-Boot variants.
const (
	UBootVariantUnknown UBootVariant = iota
	UBootVariantStock
	UBootVariantVendor
)

// String returns the manifest-facing name for a U-Boot variant.
func (v UBootVariant) String() string {
	switch v {
	case UBootVariantStock:
		return "uboot"
	case UBootVariantVendor:
		return "synaptics"
	default:
		return "unknown"
	}
}

// BootImage is the immutable description of everything a board needs to
// boot: first-stage loaders, U-Boot, an optional uEnv.txt bootscript, and
// an optional Linux kernel/initramfs pair, plus the device identity used
// to match a just-arrived USB device to this manifest entry.
//
// BootImage is built by an external collaborator (manifest/YAML loading)
// and handed to the orchestrator fully formed; nothing in this module
// mutates it.
type BootImage struct {
	ID        string
	Chip      string
	Board     string
	VendorID  uint16
	ProductID uint16

	SecureBoot   SecureBootVersion
	MemoryLayout MemoryLayout
	MemoryDDR    MemoryDDRType

	UBootConsole UBootConsole
	UBootVariant UBootVariant
	UEnvSupport  bool

	Images     []*Image
	FinalImage string
	LinuxBoot  bool
}

// Describe returns a multi-line human-readable summary of the boot
// image, matching the description string AstraDeviceManagerImpl::Init
// reports as a ManagerInfo event before watching for a device.
func (b *BootImage) Describe() string {
	uenv := "disabled"
	if b.UEnvSupport {
		uenv = "enabled"
	}
	return "Boot Image: " + b.Chip + " " + b.Board + " (" + b.ID + ")\n" +
		"    Secure Boot: " + b.SecureBoot.String() + "\n" +
		"    Memory Layout: " + b.MemoryLayout.String() + "\n" +
		"    U-Boot Console: " + b.UBootConsole.String() + "\n" +
		"    uEnv.txt Support: " + uenv + "\n" +
		"    U-Boot Variant: " + b.UBootVariant.String()
}
