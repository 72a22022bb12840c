package hal

// RadioMode is the PHY's operating mode (spec §6: "set mode {TX,RX,SLEEP}").
type RadioMode int

const (
	RadioModeTX RadioMode = iota
	RadioModeRX
	RadioModeSleep
)

func (m RadioMode) String() string {
	switch m {
	case RadioModeTX:
		return "TX"
	case RadioModeRX:
		return "RX"
	case RadioModeSleep:
		return "SLEEP"
	default:
		return "UNKNOWN"
	}
}

// RadioPipe selects one of the PHY's two address pipes (spec §6:
// "Two-pipe model: pipe 0 is the discovery pipe ... pipe 1 is the data
// pipe").
type RadioPipe int

const (
	PipeDiscovery RadioPipe = 0
	PipeData      RadioPipe = 1
)

// RadioRX is a received frame with its channel-quality side data.
type RadioRX struct {
	Payload []byte
	RSSI    int // dBm
	Channel int
}

// RadioPHY is the radio driver contract (spec §1, out of scope: "Radio PHY
// driver"; spec §6 gives the exact operation set).
type RadioPHY interface {
	// SetAddress configures the base address and prefix bytes for a pipe.
	SetAddress(pipe RadioPipe, base, prefix []byte) error

	// SetChannel tunes the radio to the given channel number.
	SetChannel(channel int) error

	// SetMode switches the radio between TX, RX and SLEEP.
	SetMode(mode RadioMode) error

	// Transmit submits a buffer for transmission. It returns once the
	// buffer has been handed to the radio, not once it is on air.
	Transmit(payload []byte) error

	// Receive polls for a received payload. ok is false when nothing has
	// arrived; implementations must not block past a microsecond-scale
	// timeout (spec §5).
	Receive() (rx RadioRX, ok bool)

	// ReadRSSI samples the current channel's RSSI without requiring a
	// full receive, for clear-channel assessment (spec §4.3).
	ReadRSSI() (dbm int, err error)
}
