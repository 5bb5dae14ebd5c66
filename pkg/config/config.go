// pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex // To protect currentConfig during runtime updates
}

// NewManager creates a new configuration Manager.
func NewManager() *Manager {
	return &Manager{
		koanfInstance: koanf.New("."),
	}
}

// DefaultConfig returns a Config populated with hardcoded default values.
// These serve as the baseline if no other sources override them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Engine: EngineConfig{
			MaxConcurrentModules: 0,
		},
		Recipes: RecipesConfig{
			Directories: []string{"recipes"},
		},
	}
}

// defaultConfigAsMap flattens DefaultConfig into koanf keys.
func defaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":                     def.Log.Level,
		"log.format":                    def.Log.Format,
		"engine.max_concurrent_modules": def.Engine.MaxConcurrentModules,
		"recipes.directories":           def.Recipes.Directories,
	}
}

// Load loads configuration in precedence order: hardcoded defaults, then
// the optional YAML config file, then command-line flags.
func (m *Manager) Load(flags *pflag.FlagSet, configFilePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.koanfInstance.Load(confmap.Provider(defaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading hardcoded defaults into koanf: %w", err)
	}

	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); err == nil {
			if err := m.koanfInstance.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
				return fmt.Errorf("error loading config file %s: %w", configFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file %s: %w", configFilePath, err)
		}
	}

	if flags != nil {
		if err := m.koanfInstance.Load(posflag.Provider(flags, ".", m.koanfInstance), nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}

		debugFlag := flags.Lookup("debug")
		if debugFlag != nil && debugFlag.Value.String() == "true" {
			_ = m.koanfInstance.Set("log.level", "debug")
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	m.currentConfig = newCfg

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfgCopy := m.currentConfig
	return cfgCopy
}
