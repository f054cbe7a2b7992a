package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/dragon-caves-game/game/engine"
	"github.com/wricardo/dragon-caves-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

const (
	configExt       = ".json"
	preferredConfig = "classic"
)

// Manager serves the ring configurations stored as JSON files in one
// directory. Parsed configs are cached under their id, the file name without
// extension.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a configuration manager and picks its default config
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}
	return m, nil
}

// configID turns a config name, with or without extension, into its id.
// Names that would leave the directory are refused.
func configID(name string) (string, bool) {
	id := strings.TrimSuffix(name, configExt)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", false
	}
	return id, true
}

func (m *Manager) pathFor(id string) string {
	return filepath.Join(m.configDir, id+configExt)
}

// readConfig parses and validates one config file
func (m *Manager) readConfig(id string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(m.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// LoadConfig returns the config with the given name, reading it on first use
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id, ok := configID(name)
	if !ok {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	config, cached := m.configs[id]
	m.mu.RUnlock()
	if cached {
		return config, nil
	}

	config, err := m.readConfig(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Keep the first parse so every caller shares one config value
	if existing, ok := m.configs[id]; ok {
		return existing, nil
	}
	m.configs[id] = config
	return config, nil
}

// ListConfigs summarizes every valid config in the directory, with its ring
// geometry. Files that fail to load are left out.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != configExt {
			continue
		}
		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			continue
		}
		infos = append(infos, service.NewConfigInfo(entry.Name(), config))
	}
	return infos, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault makes the named config the default
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}
	m.setDefault(config)
	return nil
}

// RefreshCache drops every cached config and picks the default again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig prefers classic, then the first valid config on disk,
// then the built-in four-player ring
func (m *Manager) loadDefaultConfig() error {
	if config, err := m.LoadConfig(preferredConfig); err == nil {
		m.setDefault(config)
		return nil
	}

	if infos, err := m.ListConfigs(); err == nil && len(infos) > 0 {
		if config, err := m.LoadConfig(infos[0].ConfigID); err == nil {
			m.setDefault(config)
			return nil
		}
	}

	m.setDefault(builtinConfig())
	return nil
}

func (m *Manager) setDefault(config *engine.GameConfig) {
	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates a config and writes it under name, replacing any
// existing file in one rename
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	id, ok := configID(name)
	if !ok {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := m.pathFor(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}

// builtinConfig is the default when the directory holds no usable config
func builtinConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "default"
	config.Description = "Default minimal configuration"
	return config
}
