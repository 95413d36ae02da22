package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TrialConfig is the operator-tunable trial policy. It only supplies
// defaults used at signup; limits enforced at request time always come
// from the plan row referenced by the subscription.
type TrialConfig struct {
	DefaultTrialDays int `mapstructure:"defaultTrialDays"`
	// GraceDays delays the block sweep after trial end. 0 blocks on the
	// first sweep past the trial-end date.
	GraceDays int `mapstructure:"graceDays"`
}

func DefaultTrialConfig() TrialConfig {
	return TrialConfig{
		DefaultTrialDays: 7,
		GraceDays:        0,
	}
}

// TrialConfigHolder hot-reloads the trial policy from trial.yml.
type TrialConfigHolder struct {
	current atomic.Value // holds TrialConfig
}

func NewTrialConfigHolder() (*TrialConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("trial")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/ordemtec/config")
	v.AddConfigPath("/etc/ordemtec")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORDEMTEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTrialConfig()
	v.SetDefault("trial.defaultTrialDays", defaults.DefaultTrialDays)
	v.SetDefault("trial.graceDays", defaults.GraceDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg TrialConfig
	if err := v.UnmarshalKey("trial", &cfg); err != nil {
		return nil, err
	}
	if err := validateTrialConfig(cfg); err != nil {
		return nil, err
	}

	holder := &TrialConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TrialConfig
		if err := v.UnmarshalKey("trial", &updated); err != nil {
			log.Printf("[trial-config] reload failed: %v", err)
			return
		}
		if err := validateTrialConfig(updated); err != nil {
			log.Printf("[trial-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[trial-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticTrialConfigHolder wraps a fixed policy, without file
// watching. Used by tests and one-shot binaries.
func NewStaticTrialConfigHolder(cfg TrialConfig) *TrialConfigHolder {
	holder := &TrialConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *TrialConfigHolder) Get() TrialConfig {
	return h.current.Load().(TrialConfig)
}

func validateTrialConfig(cfg TrialConfig) error {
	if cfg.DefaultTrialDays < 0 {
		return errors.New("trial.defaultTrialDays cannot be negative")
	}
	if cfg.GraceDays < 0 {
		return errors.New("trial.graceDays cannot be negative")
	}
	return nil
}
