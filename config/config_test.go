package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nearshare/network"
)

func TestLoadOrCreateCreatesAndReloadsConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(DataDirEnv, tempDir)

	firstCfg, firstPath, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("first LoadOrCreate failed: %v", err)
	}
	if firstCfg.DeviceID == "" {
		t.Fatalf("expected non-empty device ID")
	}
	if !validEndpointID(firstCfg.EndpointID) {
		t.Fatalf("expected a 4 character endpoint id, got %q", firstCfg.EndpointID)
	}
	if firstCfg.PortMode != PortModeAutomatic {
		t.Fatalf("expected default port mode %q, got %q", PortModeAutomatic, firstCfg.PortMode)
	}
	if firstCfg.ListeningPort != 0 {
		t.Fatalf("expected automatic mode listening port 0, got %d", firstCfg.ListeningPort)
	}
	if firstCfg.KeepAliveInterval() != network.DefaultKeepAliveInterval {
		t.Fatalf("default keep-alive %s differs from the connection default %s", firstCfg.KeepAliveInterval(), network.DefaultKeepAliveInterval)
	}
	if firstCfg.KeepAliveInterval() != 10*time.Second {
		t.Fatalf("expected 10s keep-alive, got %s", firstCfg.KeepAliveInterval())
	}
	if firstCfg.DeviceType != "laptop" || !firstCfg.Visible || firstCfg.AutoAccept {
		t.Fatalf("unexpected defaults %+v", firstCfg)
	}

	expectedConfigPath := filepath.Join(tempDir, "config.json")
	if firstPath != expectedConfigPath {
		t.Fatalf("expected config path %q, got %q", expectedConfigPath, firstPath)
	}
	if info, err := os.Stat(firstCfg.DownloadDir); err != nil || !info.IsDir() {
		t.Fatalf("expected download dir %q to exist: %v", firstCfg.DownloadDir, err)
	}

	secondCfg, secondPath, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}

	if secondPath != firstPath {
		t.Fatalf("expected config path to be stable, got %q then %q", firstPath, secondPath)
	}
	if secondCfg.DeviceID != firstCfg.DeviceID {
		t.Fatalf("expected stable device ID, got %q then %q", firstCfg.DeviceID, secondCfg.DeviceID)
	}
	if secondCfg.EndpointID != firstCfg.EndpointID {
		t.Fatalf("expected stable endpoint ID, got %q then %q", firstCfg.EndpointID, secondCfg.EndpointID)
	}
	if secondCfg.PortMode != firstCfg.PortMode {
		t.Fatalf("expected stable port mode, got %q then %q", firstCfg.PortMode, secondCfg.PortMode)
	}
}

func TestLoadOrCreateNormalizesLegacyConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(DataDirEnv, tempDir)

	cfgPath := filepath.Join(tempDir, "config.json")
	if err := EnsureDataDirectories(tempDir); err != nil {
		t.Fatalf("EnsureDataDirectories failed: %v", err)
	}

	legacy := &DeviceConfig{
		DeviceID:      "legacy-device",
		DeviceName:    "Legacy",
		DeviceType:    "Phone",
		EndpointID:    "ab",
		ListeningPort: 9999,
	}
	if err := Save(cfgPath, legacy); err != nil {
		t.Fatalf("Save legacy config failed: %v", err)
	}

	cfg, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.PortMode != PortModeFixed {
		t.Fatalf("expected legacy config to normalize to fixed mode, got %q", cfg.PortMode)
	}
	if cfg.ListeningPort != 9999 {
		t.Fatalf("expected legacy fixed listening port to be retained, got %d", cfg.ListeningPort)
	}
	if cfg.DeviceType != "phone" {
		t.Fatalf("expected device type to normalize to phone, got %q", cfg.DeviceType)
	}
	if cfg.EndpointID == "ab" || !validEndpointID(cfg.EndpointID) {
		t.Fatalf("expected invalid endpoint id to be regenerated, got %q", cfg.EndpointID)
	}
	if cfg.DownloadDir != filepath.Join(tempDir, "downloads") {
		t.Fatalf("unexpected download dir %q", cfg.DownloadDir)
	}

	reloaded, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.EndpointID != cfg.EndpointID || reloaded.KeepAliveIntervalMS != DefaultKeepAliveIntervalMS {
		t.Fatalf("normalized config was not persisted: %+v", reloaded)
	}
}

func TestFixedModeWithoutPortUsesDefault(t *testing.T) {
	cfg := &DeviceConfig{PortMode: PortModeFixed}
	if !normalizeDefaults(cfg, t.TempDir()) {
		t.Fatalf("expected normalization to report an update")
	}
	if cfg.ListeningPort != DefaultListeningPort {
		t.Fatalf("expected port %d, got %d", DefaultListeningPort, cfg.ListeningPort)
	}
}

func TestLoadRejectsMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
