package config

// loader.go - configuration loading through viper.
//
// Precedence order (highest wins):
//   1. CLI flags that were set explicitly
//   2. CRAFTLINK_* environment variables
//   3. Config file (--config, any format viper reads)
//   4. Defaults (defaults.go)

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. CRAFTLINK_HOST.
const EnvPrefix = "CRAFTLINK"

// defaults maps every config key to its default value.  Only keys
// listed here are read from the environment or bound to flags.
var defaults = map[string]interface{}{
	"host":             "",
	"port":             DefaultPort,
	"offline":          false,
	"no_dns":           false,
	"timeout":          time.Duration(0),
	"username":         "",
	"token":            "",
	"protocol_version": DefaultProtocolVersion,
	"queue_size":       DefaultQueueSize,
	"chunk_size":       DefaultChunkSize,
	"tunnel":           "",
	"ssh_key":          "",
	"ssh_password":     false,
	"ssh_agent":        false,
	"strict_hostkey":   false,
	"known_hosts":      "",
	"gateway":          "",
	"probe":            false,
	"probe_wait":       DefaultProbeWait,
	"verbose":          0,
	"log_file":         "",
	"metrics_addr":     "",
}

// LoadOptions selects the sources Load reads besides defaults and the
// environment.
type LoadOptions struct {
	File  string         // optional config file
	Flags *pflag.FlagSet // parsed flags; "no-dns" binds to no_dns
}

// Load builds a Config from defaults, the optional config file, the
// environment and the changed flags in opts.Flags.  It does not
// validate; call Validate on the result.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			key := flagKey(f.Name)
			if _, ok := defaults[key]; !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.expandTunnel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagKey turns a flag name into its config key.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
