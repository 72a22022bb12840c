package hal

// NVS is the non-volatile storage contract: a flat, byte-addressed region
// with erase-page granularity (spec §1, out of scope: "Non-volatile
// storage"; spec §4.8 layers the bank/record format on top of this). The
// firmware core only ever calls Read/Write/Erase; everything about banks,
// sequence numbers and CRC is implemented in internal/storage.
type NVS interface {
	// Read copies length bytes starting at offset into a new slice.
	Read(offset, length int) ([]byte, error)

	// Write writes data starting at offset. Implementations that model
	// real flash should require the destination range to have been
	// erased first; the in-memory test fake does not enforce this.
	Write(offset int, data []byte) error

	// Erase resets length bytes starting at offset to the erased value
	// (0xFF on real NOR/NAND flash).
	Erase(offset, length int) error

	// Size returns the total addressable size of the region.
	Size() int
}
