package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/tordrt/relschema/internal/dot"
)

const envPrefix = "RELSCHEMA_"

// DefaultOutputDir receives the diagrams when no directory is configured.
const DefaultOutputDir = "relschema"

var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile returns the explicit path, or relschema.yaml / relschema.yml
// in the working directory when present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"relschema.yaml", "relschema.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// listKeys hold comma-separated values when set from the environment.
var listKeys = map[string]bool{"tables": true, "exclude_tables": true}

// envKey maps RELSCHEMA_TWO_DEGREES to two_degrees and RELSCHEMA_DOT_FONT to
// dot.font.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "dot_"); ok {
		return "dot." + rest
	}
	return key
}

// envValue maps an env var to its key, splitting list values on commas.
func envValue(name, value string) (string, interface{}) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// ResetConfig resets the loader state. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// LoadConfig loads configuration with precedence flags > env vars > config
// file > defaults. Only flags that were set on the command line count.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	defaults := dot.DefaultConfig()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output_dir":      DefaultOutputDir,
		"report_format":   ReportMarkdown,
		"infer_implied":   true,
		"include_implied": false,
		"two_degrees":     false,
		"workers":         0,
		"verbose":         false,
		"dot.font":        defaults.Font,
		"dot.font_size":   defaults.FontSize,
		"dot.rankdir":     defaults.RankDir,
		"dot.bg_color":    defaults.BgColor,
		"dot.max_size":    defaults.MaxSize,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "db_url":
				key = "database_url"
			case "implied":
				key = "include_implied"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the config file read by the last LoadConfig, if
// any.
func GetConfigFileUsed() string {
	return configFileUsed
}
