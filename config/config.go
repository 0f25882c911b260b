package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"nearshare/discovery"
)

const (
	// AppDirectoryName is the per-user application data directory name.
	AppDirectoryName = "nearshare"
	// DataDirEnv overrides the resolved data directory.
	DataDirEnv = "NEARSHARE_DATA_DIR"
	// DefaultListeningPort is the TCP port used in fixed mode when none is set.
	DefaultListeningPort = 9300
	// DefaultKeepAliveIntervalMS is the keep-alive period used when none is configured.
	DefaultKeepAliveIntervalMS = 10000
	// PortModeAutomatic picks an available port at launch.
	PortModeAutomatic = "automatic"
	// PortModeFixed uses the configured listening port value.
	PortModeFixed = "fixed"
	// configFileName is the persisted configuration file.
	configFileName = "config.json"
	// downloadsDirName is the default download directory inside the data dir.
	downloadsDirName = "downloads"
)

// DeviceConfig contains persistent local-device settings.
type DeviceConfig struct {
	DeviceID            string `json:"device_id"`
	DeviceName          string `json:"device_name"`
	DeviceType          string `json:"device_type"`
	EndpointID          string `json:"endpoint_id"`
	PortMode            string `json:"port_mode"`
	ListeningPort       int    `json:"listening_port"`
	DownloadDir         string `json:"download_dir"`
	Visible             bool   `json:"visible"`
	AutoAccept          bool   `json:"auto_accept"`
	KeepAliveIntervalMS int    `json:"keep_alive_interval_ms"`
}

// KeepAliveInterval returns the configured keep-alive period.
func (c *DeviceConfig) KeepAliveInterval() time.Duration {
	return time.Duration(c.KeepAliveIntervalMS) * time.Millisecond
}

// ParsedDeviceType returns the device class advertised to peers.
func (c *DeviceConfig) ParsedDeviceType() discovery.DeviceType {
	return discovery.ParseDeviceType(c.DeviceType)
}

// ResolveDataDir returns the OS-aware app data directory.
//
// If NEARSHARE_DATA_DIR is set, its value is used as an explicit override.
func ResolveDataDir() (string, error) {
	if override := os.Getenv(DataDirEnv); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(base, AppDirectoryName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppDirectoryName), nil
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, AppDirectoryName), nil
	}
}

// ConfigPath returns the full path to config.json for a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// EnsureDataDirectories creates the app data directory layout if needed.
func EnsureDataDirectories(dataDir string) error {
	dirs := []string{
		dataDir,
		filepath.Join(dataDir, downloadsDirName),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	return nil
}

// Load reads and unmarshals config.json from disk.
func Load(path string) (*DeviceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg DeviceConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// Save marshals and writes config.json to disk.
func Save(path string, cfg *DeviceConfig) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// LoadOrCreate ensures directories and config exist, then returns both.
func LoadOrCreate() (*DeviceConfig, string, error) {
	dataDir, err := ResolveDataDir()
	if err != nil {
		return nil, "", err
	}
	if err := EnsureDataDirectories(dataDir); err != nil {
		return nil, "", err
	}

	cfgPath := ConfigPath(dataDir)
	cfg, err := Load(cfgPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}

		cfg = defaultConfig(dataDir)
		if err := Save(cfgPath, cfg); err != nil {
			return nil, "", err
		}

		return cfg, cfgPath, nil
	}

	if normalizeDefaults(cfg, dataDir) {
		if err := Save(cfgPath, cfg); err != nil {
			return nil, "", err
		}
	}

	return cfg, cfgPath, nil
}

func hostDeviceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "Nearshare Device"
}

func defaultConfig(dataDir string) *DeviceConfig {
	return &DeviceConfig{
		DeviceID:            uuid.NewString(),
		DeviceName:          hostDeviceName(),
		DeviceType:          discovery.DeviceTypeLaptop.String(),
		EndpointID:          discovery.NewEndpointID(),
		PortMode:            PortModeAutomatic,
		ListeningPort:       0,
		DownloadDir:         filepath.Join(dataDir, downloadsDirName),
		Visible:             true,
		AutoAccept:          false,
		KeepAliveIntervalMS: DefaultKeepAliveIntervalMS,
	}
}

func normalizeDefaults(cfg *DeviceConfig, dataDir string) bool {
	updated := false

	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
		updated = true
	}

	if cfg.DeviceName == "" {
		cfg.DeviceName = hostDeviceName()
		updated = true
	}

	deviceType := discovery.ParseDeviceType(cfg.DeviceType).String()
	if cfg.DeviceType != deviceType {
		cfg.DeviceType = deviceType
		updated = true
	}

	if !validEndpointID(cfg.EndpointID) {
		cfg.EndpointID = discovery.NewEndpointID()
		updated = true
	}

	mode := normalizePortMode(cfg.PortMode)
	if mode == "" {
		if cfg.ListeningPort > 0 {
			mode = PortModeFixed
		} else {
			mode = PortModeAutomatic
		}
	}
	if cfg.PortMode != mode {
		cfg.PortMode = mode
		updated = true
	}

	if cfg.PortMode == PortModeFixed && cfg.ListeningPort == 0 {
		cfg.ListeningPort = DefaultListeningPort
		updated = true
	}
	if cfg.PortMode == PortModeAutomatic && cfg.ListeningPort < 0 {
		cfg.ListeningPort = 0
		updated = true
	}

	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(dataDir, downloadsDirName)
		updated = true
	}

	if cfg.KeepAliveIntervalMS <= 0 {
		cfg.KeepAliveIntervalMS = DefaultKeepAliveIntervalMS
		updated = true
	}

	return updated
}

func validEndpointID(id string) bool {
	if len(id) != discovery.EndpointIDSize {
		return false
	}
	for _, c := range []byte(id) {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func normalizePortMode(mode string) string {
	switch mode {
	case PortModeAutomatic:
		return PortModeAutomatic
	case PortModeFixed:
		return PortModeFixed
	default:
		return ""
	}
}
