package config

import (
    "os"
    "time"

    "gopkg.in/yaml.v3"
)

// TrackingConfig tunes the continuous subscription.
type TrackingConfig struct {
    MinIntervalMs int     `yaml:"minIntervalMs"`
    MinDistanceM  float64 `yaml:"minDistanceMeters"`
}

// ProviderConfig selects the fix source for the agent.
type ProviderConfig struct {
    // Kind is "sim" or "ws".
    Kind          string `yaml:"kind"`
    FeedURL       string `yaml:"feedUrl"`
    SimIntervalMs int    `yaml:"simIntervalMs"`
}

// Config is the agent configuration, loaded from YAML with env overrides.
type Config struct {
    APIBaseURL      string         `yaml:"apiBaseUrl"`
    ListenAddr      string         `yaml:"listenAddr"`
    DeviceSecret    string         `yaml:"deviceSecret"`
    DrainIntervalMs int            `yaml:"drainIntervalMs"`
    MaxRetries      int            `yaml:"maxRetries"`
    Tracking        TrackingConfig `yaml:"tracking"`
    Provider        ProviderConfig `yaml:"provider"`
}

// Load reads path when non-empty, then applies environment overrides and
// defaults. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
    var cfg Config
    if path != "" {
        data, err := os.ReadFile(path)
        if err == nil {
            if err := yaml.Unmarshal(data, &cfg); err != nil {
                return Config{}, err
            }
        } else if !os.IsNotExist(err) {
            return Config{}, err
        }
    }

    cfg.APIBaseURL = envOr("API_BASE_URL", cfg.APIBaseURL)
    cfg.ListenAddr = envOr("LISTEN_ADDR", cfg.ListenAddr)
    cfg.DeviceSecret = envOr("DEVICE_SECRET", cfg.DeviceSecret)
    if v := os.Getenv("FEED_URL"); v != "" {
        cfg.Provider.Kind = "ws"
        cfg.Provider.FeedURL = v
    }

    if cfg.APIBaseURL == "" {
        cfg.APIBaseURL = "http://localhost:8000/api/v1"
    }
    if cfg.ListenAddr == "" {
        cfg.ListenAddr = "127.0.0.1:7070"
    }
    if cfg.DrainIntervalMs <= 0 {
        cfg.DrainIntervalMs = 30000
    }
    if cfg.Provider.Kind == "" {
        cfg.Provider.Kind = "sim"
    }
    return cfg, nil
}

// DrainInterval returns the queue drain cadence.
func (c Config) DrainInterval() time.Duration {
    return time.Duration(c.DrainIntervalMs) * time.Millisecond
}

func envOr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}
