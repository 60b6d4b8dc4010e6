package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/modguard/modguard/pkg/observability/logging"
)

var (
	config     *Config
	configOnce sync.Once
	configErr  error
	configMu   sync.RWMutex
)

// Load loads the configuration from the specified YAML file once and caches
// it globally. Subsequent calls return the cached config regardless of path.
func Load(configPath string) (*Config, error) {
	configOnce.Do(func() {
		cfg, err := Parse(configPath)
		if err != nil {
			configErr = err
			return
		}
		configMu.Lock()
		config = cfg
		configMu.Unlock()
	})
	if configErr != nil {
		return nil, configErr
	}
	configMu.RLock()
	defer configMu.RUnlock()
	return config, nil
}

// Parse parses and validates a YAML config file without touching the global
// cache.
func Parse(configPath string) (*Config, error) {
	// Resolve symlinks to handle Kubernetes ConfigMap mounts.
	resolved, _ := filepath.EvalSymlinks(configPath)
	if resolved == "" {
		resolved = configPath
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		Escalation: EscalationConfig{Enabled: true},
		PII:        PIIConfig{PhoneValidation: true},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	if err := validate(cfg); err != nil {
		return nil, err
	}

	logging.Infof("Config loaded: policy={high:%.2f medium:%.2f low:%.2f}, escalation=%v, phone_validation=%v",
		cfg.Policy.High, cfg.Policy.Medium, cfg.Policy.Low, cfg.Escalation.Enabled, cfg.PII.PhoneValidation)
	return cfg, nil
}

// Get returns the globally cached configuration, or nil before Load.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return config
}
