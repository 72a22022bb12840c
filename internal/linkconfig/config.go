// Package linkconfig provides JSON-backed tuning configuration for the
// link, shared by the tracker and receiver firmware personalities and by
// the host bridge. It mirrors the teacher's internal/config.TuningConfig
// pattern: every field is a pointer so that a partial JSON document only
// overrides the fields it mentions, and every field has a Get* accessor
// that falls back to the spec's stated default.
package linkconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aerolink/motionlink/internal/security"
)

// DefaultConfigPath is the canonical location of the tuning defaults file.
const DefaultConfigPath = "config/link.defaults.json"

// LinkConfig is the root tuning configuration. Field names track the spec
// section that names the default.
type LinkConfig struct {
	// Rest detection (§4.2 step 6)
	RestEntryGyroDegPerSec  *float64 `json:"rest_entry_gyro_deg_per_sec,omitempty"`
	RestEntryAccelMPS2      *float64 `json:"rest_entry_accel_mps2,omitempty"`
	RestExitRelaxFactor     *float64 `json:"rest_exit_relax_factor,omitempty"`
	RestDwellSeconds        *float64 `json:"rest_dwell_seconds,omitempty"`
	RestCalibrationSeconds  *float64 `json:"rest_calibration_seconds,omitempty"`

	// Fusion (§4.2 step 5)
	AccelLowPassTauSeconds *float64 `json:"accel_low_pass_tau_seconds,omitempty"`
	MagLowPassTauSeconds   *float64 `json:"mag_low_pass_tau_seconds,omitempty"`
	MagDisturbedRadians    *float64 `json:"mag_disturbed_radians,omitempty"`
	MagDisturbedSeconds    *float64 `json:"mag_disturbed_seconds,omitempty"`

	// Channel manager (§4.3)
	ChannelWindowSeconds     *float64 `json:"channel_window_seconds,omitempty"`
	ChannelBlacklistLossPct  *float64 `json:"channel_blacklist_loss_pct,omitempty"`
	ChannelRehabLossPct      *float64 `json:"channel_rehab_loss_pct,omitempty"`
	ChannelMinActive         *int     `json:"channel_min_active,omitempty"`
	ClearChannelRSSIDbm      *float64 `json:"clear_channel_rssi_dbm,omitempty"`

	// Recovery state machine (§4.4)
	RecoveryResyncMisses    *int `json:"recovery_resync_misses,omitempty"`
	RecoverySwitchMisses    *int `json:"recovery_switch_misses,omitempty"`
	RecoveryFullScanMisses  *int `json:"recovery_full_scan_misses,omitempty"`
	RecoveryDeepSearchMisses *int `json:"recovery_deep_search_misses,omitempty"`
	SlotOverrunStrikes      *int `json:"slot_overrun_strikes,omitempty"`

	// Tracker link (§4.5)
	AckRetryBudget        *int    `json:"ack_retry_budget,omitempty"`
	RePairAfterMissedAcks *int    `json:"re_pair_after_missed_acks,omitempty"`
	AutoSleepTimeout      *string `json:"auto_sleep_timeout,omitempty"` // duration string like "5m"

	// Receiver link (§4.6)
	HIDFIFODepth            *int    `json:"hid_fifo_depth,omitempty"`
	RegistrationAdvertPeriod *string `json:"registration_advert_period,omitempty"` // e.g. "100ms"

	// Pairing service (§4.7)
	DetectCountThreshold *int    `json:"detect_count_threshold,omitempty"`
	PairingModeTimeout   *string `json:"pairing_mode_timeout,omitempty"` // e.g. "60s"
	MaxTrackers          *int    `json:"max_trackers,omitempty"`

	// Deployment channel plan (§4.3): which channel numbers the radio
	// hops across. Not spec-mandated (the spec only fixes the pairing
	// channel and the 8-entry hop sequence width); left tunable so a
	// deployment can match its local RF environment.
	ActiveChannels *[]int `json:"active_channels,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyLinkConfig returns a LinkConfig with all fields nil. Use
// LoadLinkConfig to load actual values from a defaults file.
func EmptyLinkConfig() *LinkConfig {
	return &LinkConfig{}
}

// LoadLinkConfig loads a LinkConfig from a JSON file. The file is validated
// to have a .json extension, live under a safe directory, and be under the
// max file size. Fields omitted from the JSON retain their spec defaults.
func LoadLinkConfig(path string) (*LinkConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	if err := security.ValidateExportPath(cleanPath); err != nil {
		return nil, fmt.Errorf("config path rejected: %w", err)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyLinkConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that any set configuration values are within sane
// bounds. Unset (nil) fields are always valid — they fall back to spec
// defaults.
func (c *LinkConfig) Validate() error {
	if c.ChannelBlacklistLossPct != nil && (*c.ChannelBlacklistLossPct < 0 || *c.ChannelBlacklistLossPct > 100) {
		return fmt.Errorf("channel_blacklist_loss_pct must be between 0 and 100, got %f", *c.ChannelBlacklistLossPct)
	}
	if c.ChannelRehabLossPct != nil && (*c.ChannelRehabLossPct < 0 || *c.ChannelRehabLossPct > 100) {
		return fmt.Errorf("channel_rehab_loss_pct must be between 0 and 100, got %f", *c.ChannelRehabLossPct)
	}
	if c.ChannelMinActive != nil && *c.ChannelMinActive < 1 {
		return fmt.Errorf("channel_min_active must be >= 1, got %d", *c.ChannelMinActive)
	}
	if c.AutoSleepTimeout != nil && *c.AutoSleepTimeout != "" {
		if _, err := time.ParseDuration(*c.AutoSleepTimeout); err != nil {
			return fmt.Errorf("invalid auto_sleep_timeout %q: %w", *c.AutoSleepTimeout, err)
		}
	}
	if c.RegistrationAdvertPeriod != nil && *c.RegistrationAdvertPeriod != "" {
		if _, err := time.ParseDuration(*c.RegistrationAdvertPeriod); err != nil {
			return fmt.Errorf("invalid registration_advert_period %q: %w", *c.RegistrationAdvertPeriod, err)
		}
	}
	if c.PairingModeTimeout != nil && *c.PairingModeTimeout != "" {
		if _, err := time.ParseDuration(*c.PairingModeTimeout); err != nil {
			return fmt.Errorf("invalid pairing_mode_timeout %q: %w", *c.PairingModeTimeout, err)
		}
	}
	if c.HIDFIFODepth != nil && *c.HIDFIFODepth < 1 {
		return fmt.Errorf("hid_fifo_depth must be >= 1, got %d", *c.HIDFIFODepth)
	}
	if c.DetectCountThreshold != nil && *c.DetectCountThreshold < 1 {
		return fmt.Errorf("detect_count_threshold must be >= 1, got %d", *c.DetectCountThreshold)
	}
	if c.MaxTrackers != nil && *c.MaxTrackers < 1 {
		return fmt.Errorf("max_trackers must be >= 1, got %d", *c.MaxTrackers)
	}
	return nil
}

// Get* accessors. Every default below is named in spec.md.

func (c *LinkConfig) GetRestEntryGyroDegPerSec() float64 {
	if c.RestEntryGyroDegPerSec == nil {
		return 1.5
	}
	return *c.RestEntryGyroDegPerSec
}

func (c *LinkConfig) GetRestEntryAccelMPS2() float64 {
	if c.RestEntryAccelMPS2 == nil {
		return 0.3
	}
	return *c.RestEntryAccelMPS2
}

func (c *LinkConfig) GetRestExitRelaxFactor() float64 {
	if c.RestExitRelaxFactor == nil {
		return 1.5
	}
	return *c.RestExitRelaxFactor
}

func (c *LinkConfig) GetRestDwellSeconds() float64 {
	if c.RestDwellSeconds == nil {
		return 0.5
	}
	return *c.RestDwellSeconds
}

func (c *LinkConfig) GetRestCalibrationSeconds() float64 {
	if c.RestCalibrationSeconds == nil {
		return 1.0
	}
	return *c.RestCalibrationSeconds
}

func (c *LinkConfig) GetAccelLowPassTauSeconds() float64 {
	if c.AccelLowPassTauSeconds == nil {
		return 3.0
	}
	return *c.AccelLowPassTauSeconds
}

func (c *LinkConfig) GetMagLowPassTauSeconds() float64 {
	if c.MagLowPassTauSeconds == nil {
		return 9.0
	}
	return *c.MagLowPassTauSeconds
}

func (c *LinkConfig) GetMagDisturbedRadians() float64 {
	if c.MagDisturbedRadians == nil {
		return 0.3
	}
	return *c.MagDisturbedRadians
}

func (c *LinkConfig) GetMagDisturbedSeconds() float64 {
	if c.MagDisturbedSeconds == nil {
		return 2.0
	}
	return *c.MagDisturbedSeconds
}

func (c *LinkConfig) GetChannelWindowSeconds() float64 {
	if c.ChannelWindowSeconds == nil {
		return 10.0
	}
	return *c.ChannelWindowSeconds
}

func (c *LinkConfig) GetChannelBlacklistLossPct() float64 {
	if c.ChannelBlacklistLossPct == nil {
		return 30.0
	}
	return *c.ChannelBlacklistLossPct
}

func (c *LinkConfig) GetChannelRehabLossPct() float64 {
	if c.ChannelRehabLossPct == nil {
		return 10.0
	}
	return *c.ChannelRehabLossPct
}

func (c *LinkConfig) GetChannelMinActive() int {
	if c.ChannelMinActive == nil {
		return 3
	}
	return *c.ChannelMinActive
}

func (c *LinkConfig) GetClearChannelRSSIDbm() float64 {
	if c.ClearChannelRSSIDbm == nil {
		return -65.0
	}
	return *c.ClearChannelRSSIDbm
}

func (c *LinkConfig) GetRecoveryResyncMisses() int {
	if c.RecoveryResyncMisses == nil {
		return 3
	}
	return *c.RecoveryResyncMisses
}

func (c *LinkConfig) GetRecoverySwitchMisses() int {
	if c.RecoverySwitchMisses == nil {
		return 10
	}
	return *c.RecoverySwitchMisses
}

func (c *LinkConfig) GetRecoveryFullScanMisses() int {
	if c.RecoveryFullScanMisses == nil {
		return 30
	}
	return *c.RecoveryFullScanMisses
}

func (c *LinkConfig) GetRecoveryDeepSearchMisses() int {
	if c.RecoveryDeepSearchMisses == nil {
		return 100
	}
	return *c.RecoveryDeepSearchMisses
}

func (c *LinkConfig) GetSlotOverrunStrikes() int {
	if c.SlotOverrunStrikes == nil {
		return 3
	}
	return *c.SlotOverrunStrikes
}

func (c *LinkConfig) GetAckRetryBudget() int {
	if c.AckRetryBudget == nil {
		return 2
	}
	return *c.AckRetryBudget
}

func (c *LinkConfig) GetRePairAfterMissedAcks() int {
	if c.RePairAfterMissedAcks == nil {
		return 200
	}
	return *c.RePairAfterMissedAcks
}

func (c *LinkConfig) GetAutoSleepTimeout() time.Duration {
	if c.AutoSleepTimeout == nil || *c.AutoSleepTimeout == "" {
		return 5 * time.Minute
	}
	d, err := time.ParseDuration(*c.AutoSleepTimeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

func (c *LinkConfig) GetHIDFIFODepth() int {
	if c.HIDFIFODepth == nil {
		return 32
	}
	return *c.HIDFIFODepth
}

func (c *LinkConfig) GetRegistrationAdvertPeriod() time.Duration {
	if c.RegistrationAdvertPeriod == nil || *c.RegistrationAdvertPeriod == "" {
		return 100 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.RegistrationAdvertPeriod)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

func (c *LinkConfig) GetDetectCountThreshold() int {
	if c.DetectCountThreshold == nil {
		return 25
	}
	return *c.DetectCountThreshold
}

func (c *LinkConfig) GetPairingModeTimeout() time.Duration {
	if c.PairingModeTimeout == nil || *c.PairingModeTimeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(*c.PairingModeTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

func (c *LinkConfig) GetMaxTrackers() int {
	if c.MaxTrackers == nil {
		return 10
	}
	return *c.MaxTrackers
}

// GetActiveChannels returns the deployment's channel plan, a default
// set of 8 channels (matching the beacon hop sequence's 8-entry width,
// §4.3) including the fixed pairing channel 2.
func (c *LinkConfig) GetActiveChannels() []int {
	if c.ActiveChannels == nil {
		return []int{0, 1, 2, 3, 4, 5, 6, 7}
	}
	return append([]int(nil), (*c.ActiveChannels)...)
}

// Superframe timing (spec §3 "Superframe structure") is a fixed wire
// contract, not a tuning knob, so it is expressed as constants rather
// than LinkConfig fields.
const (
	SuperframeDuration = 5 * time.Millisecond
	BeaconDuration     = 250 * time.Microsecond
	GuardInterval      = 100 * time.Microsecond
	SlotDuration       = 400 * time.Microsecond
	IdleTail           = 500 * time.Microsecond
)

// SlotOffset returns the scheduled start of trackerID's TX window within
// a superframe, measured from the frame's start (spec §4.5: "schedule TX
// at beacon_time + slot_offset[tracker_id]").
func SlotOffset(trackerID byte) time.Duration {
	return BeaconDuration + GuardInterval + time.Duration(trackerID)*SlotDuration
}
