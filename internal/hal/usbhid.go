package hal

// USBHID is the host-facing transport the receiver republishes tracker
// packets over (spec §1, out of scope: "USB enumeration and HID endpoint
// plumbing"; spec §6 fixes the report size at 16 bytes, up to 4 stacked
// per 1ms transfer).
type USBHID interface {
	// Write submits one or more 16-byte reports for delivery to the host.
	Write(reports [][16]byte) error

	// OnRX registers a callback invoked with host→device command bytes
	// (spec §6: single-byte codes with optional payload).
	OnRX(func(bytes []byte))
}

// HostCommand enumerates the host→device command codes from spec §6.
type HostCommand byte

const (
	HostCmdEnterBootloader HostCommand = 0x10
	HostCmdEnterPairing    HostCommand = 0x11
	HostCmdExitPairing     HostCommand = 0x12
	HostCmdVersionInfo     HostCommand = 0x20
)
