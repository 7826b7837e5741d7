package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment variables read as configuration.
// A double underscore separates nested keys: SQLSHAPE_GROUP__MIN_COUNT.
const EnvPrefix = "SQLSHAPE_"

// configNames are looked up in the working directory, in order.
var configNames = []string{"sqlshape.yaml", "sqlshape.yml", ".sqlshape.yaml", ".sqlshape.yml"}

// flagKeys maps flag names to config keys where the two differ.
var flagKeys = map[string]string{
	"state":     "state_path",
	"min-count": "group.min_count",
	"sort":      "group.sort",
	"members":   "group.members",
	"save":      "group.save",
	"watch":     "group.watch",
	"debounce":  "watch.debounce",
	"dsn":       "postgres.dsn",
	"limit":     "postgres.limit",
}

// ignoredFlags never become config keys.
var ignoredFlags = map[string]bool{"config": true, "help": true, "version": true, "top": true, "runs": true}

var configFileUsed string

// findConfigFile returns the config file to load, or "" for none.
// Priority: explicit path > sqlshape.yaml > sqlshape.yml > dotfiles.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig forgets the config file recorded by the last load. Used for
// testing.
func ResetConfig() {
	configFileUsed = ""
}

// LoadConfig loads configuration from defaults, a YAML file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults. Only flags that were explicitly set are applied.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment: SQLSHAPE_MAX_DEPTH -> max_depth, SQLSHAPE_WATCH__DEBOUNCE -> watch.debounce
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || ignoredFlags[f.Name] {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode, turning "250ms" into a time.Duration
	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}
