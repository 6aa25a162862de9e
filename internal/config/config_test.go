package config

import "testing"

func TestScannerConfigMapsMaxDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = "/scan"
	cfg.Scan.MaxDepth = 3

	scanCfg := cfg.ScannerConfig()
	if scanCfg.Root != "/scan" {
		t.Errorf("Root = %q, want /scan", scanCfg.Root)
	}
	if scanCfg.MaxDepth == nil || *scanCfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %v, want pointer to 3", scanCfg.MaxDepth)
	}
}

func TestScannerConfigNoMaxDepthLeavesNilPointer(t *testing.T) {
	cfg := DefaultConfig()
	scanCfg := cfg.ScannerConfig()
	if scanCfg.MaxDepth != nil {
		t.Errorf("MaxDepth = %v, want nil (unlimited)", scanCfg.MaxDepth)
	}
}

func TestDuplicatesConfigOverlaysDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duplicates.MinSize = 4096
	cfg.Duplicates.QuickCompare = false

	dupeCfg := cfg.DuplicatesConfig()
	if dupeCfg.MinSize != 4096 {
		t.Errorf("MinSize = %d, want 4096", dupeCfg.MinSize)
	}
	if dupeCfg.QuickCompare {
		t.Error("QuickCompare = true, want false")
	}
	if dupeCfg.PartialHeadBytes == 0 {
		t.Error("PartialHeadBytes should keep the finder's own default, got 0")
	}
}

func TestAgeConfigZeroValuesKeepDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Age = AgeSettings{}

	ageCfg := cfg.AgeConfig()
	if ageCfg.MinStaleSize == 0 {
		t.Error("AgeConfig() should fall back to the analyzer default when StaleThresholdDays etc. are zero")
	}
}

func TestOpsRequestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SafeMode = true
	cfg.Ops.UseTrash = false

	req := cfg.OpsRequestDefaults()
	if !req.SafeMode {
		t.Error("SafeMode = false, want true")
	}
	if req.UseTrash {
		t.Error("UseTrash = true, want false")
	}
}
