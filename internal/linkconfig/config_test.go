package linkconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmptyLinkConfig_DefaultsMatchSpec(t *testing.T) {
	cfg := EmptyLinkConfig()

	if got, want := cfg.GetRestEntryGyroDegPerSec(), 1.5; got != want {
		t.Errorf("GetRestEntryGyroDegPerSec() = %v, want %v", got, want)
	}
	if got, want := cfg.GetChannelBlacklistLossPct(), 30.0; got != want {
		t.Errorf("GetChannelBlacklistLossPct() = %v, want %v", got, want)
	}
	if got, want := cfg.GetChannelRehabLossPct(), 10.0; got != want {
		t.Errorf("GetChannelRehabLossPct() = %v, want %v", got, want)
	}
	if got, want := cfg.GetChannelMinActive(), 3; got != want {
		t.Errorf("GetChannelMinActive() = %v, want %v", got, want)
	}
	if got, want := cfg.GetRecoveryResyncMisses(), 3; got != want {
		t.Errorf("GetRecoveryResyncMisses() = %v, want %v", got, want)
	}
	if got, want := cfg.GetRecoverySwitchMisses(), 10; got != want {
		t.Errorf("GetRecoverySwitchMisses() = %v, want %v", got, want)
	}
	if got, want := cfg.GetRecoveryFullScanMisses(), 30; got != want {
		t.Errorf("GetRecoveryFullScanMisses() = %v, want %v", got, want)
	}
	if got, want := cfg.GetRecoveryDeepSearchMisses(), 100; got != want {
		t.Errorf("GetRecoveryDeepSearchMisses() = %v, want %v", got, want)
	}
	if got, want := cfg.GetAckRetryBudget(), 2; got != want {
		t.Errorf("GetAckRetryBudget() = %v, want %v", got, want)
	}
	if got, want := cfg.GetRePairAfterMissedAcks(), 200; got != want {
		t.Errorf("GetRePairAfterMissedAcks() = %v, want %v", got, want)
	}
	if got, want := cfg.GetAutoSleepTimeout(), 5*time.Minute; got != want {
		t.Errorf("GetAutoSleepTimeout() = %v, want %v", got, want)
	}
	if got, want := cfg.GetHIDFIFODepth(), 32; got != want {
		t.Errorf("GetHIDFIFODepth() = %v, want %v", got, want)
	}
	if got, want := cfg.GetDetectCountThreshold(), 25; got != want {
		t.Errorf("GetDetectCountThreshold() = %v, want %v", got, want)
	}
	if got, want := cfg.GetPairingModeTimeout(), 60*time.Second; got != want {
		t.Errorf("GetPairingModeTimeout() = %v, want %v", got, want)
	}
	if got, want := cfg.GetMaxTrackers(), 10; got != want {
		t.Errorf("GetMaxTrackers() = %v, want %v", got, want)
	}
}

func TestLoadLinkConfig_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link.json")
	if err := os.WriteFile(path, []byte(`{"channel_blacklist_loss_pct": 25, "max_trackers": 4}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLinkConfig(path)
	if err != nil {
		t.Fatalf("LoadLinkConfig: %v", err)
	}
	if got, want := cfg.GetChannelBlacklistLossPct(), 25.0; got != want {
		t.Errorf("overridden ChannelBlacklistLossPct = %v, want %v", got, want)
	}
	if got, want := cfg.GetMaxTrackers(), 4; got != want {
		t.Errorf("overridden MaxTrackers = %v, want %v", got, want)
	}
	// Fields not present in the JSON keep their spec default.
	if got, want := cfg.GetDetectCountThreshold(), 25; got != want {
		t.Errorf("un-overridden DetectCountThreshold = %v, want %v", got, want)
	}
}

func TestLoadLinkConfig_RejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link.txt")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLinkConfig(path); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}

func TestLoadLinkConfig_RejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link.json")
	big := make([]byte, 2*1024*1024)
	for i := range big {
		big[i] = ' '
	}
	if err := os.WriteFile(path, big, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLinkConfig(path); err == nil {
		t.Fatal("expected error for oversized config file")
	}
}

func TestValidate_RejectsOutOfRangeLossPct(t *testing.T) {
	cfg := EmptyLinkConfig()
	bad := 150.0
	cfg.ChannelBlacklistLossPct = &bad
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for loss pct > 100")
	}
}

func TestValidate_RejectsBadDuration(t *testing.T) {
	cfg := EmptyLinkConfig()
	bad := "not-a-duration"
	cfg.AutoSleepTimeout = &bad
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for malformed duration")
	}
}

func TestPtrHelpers(t *testing.T) {
	if got := *ptrFloat64(1.5); got != 1.5 {
		t.Errorf("ptrFloat64 = %v, want 1.5", got)
	}
	if got := *ptrInt(7); got != 7 {
		t.Errorf("ptrInt = %v, want 7", got)
	}
	if got := *ptrString("x"); got != "x" {
		t.Errorf("ptrString = %v, want x", got)
	}
}
