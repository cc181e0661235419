package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vzahanych/weather-notify/internal/apperr"
)

const envPrefix = "WNOTIFY"

// Flag names bound onto configuration keys by Load.
var flagBindings = map[string]string{
	"unit":      "display.unit",
	"precision": "display.precision",
}

// Load builds the configuration from defaults, an optional YAML file, the environment
// (a .env file in the working directory included) and any changed flags, in increasing
// precedence. A missing API key or an invalid value is a config error.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	cfg := NewDefaultConfig()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, "", reflect.ValueOf(cfg))

	v.AutomaticEnv()
	if err := v.BindEnv("provider.api_key", APIKeyEnv); err != nil {
		return nil, apperr.Config("config.Load", err)
	}

	if flags != nil {
		for flag, key := range flagBindings {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, apperr.Config("config.Load", fmt.Errorf("binding flag %q: %w", flag, err))
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, apperr.Config("config.Load", fmt.Errorf("error reading config file: %w", err))
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperr.Config("config.Load", fmt.Errorf("error unmarshaling config: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and that the API key is present.
// The display unit is lower-cased first, matching the case-insensitive unit parser.
func (c *Config) Validate() error {
	c.Display.Unit = strings.ToLower(strings.TrimSpace(c.Display.Unit))

	if strings.TrimSpace(c.Provider.APIKey) == "" {
		dir, _ := os.Getwd()
		return apperr.Config("config.Validate",
			fmt.Errorf("`%s` environment variable not set (also looked in `%s/.env`)", APIKeyEnv, dir))
	}
	if err := validate.Struct(c); err != nil {
		return apperr.Config("config.Validate", err)
	}
	return nil
}

// setDefaults registers every leaf field of cfg as a viper default under its dotted
// mapstructure key, so AutomaticEnv can override keys that no file mentions.
func setDefaults(v *viper.Viper, prefix string, cfg reflect.Value) {
	cfg = reflect.Indirect(cfg)
	if cfg.Kind() != reflect.Struct {
		return
	}

	for _, field := range reflect.VisibleFields(cfg.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = strings.ToLower(field.Name)
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		value := cfg.FieldByIndex(field.Index)
		if reflect.Indirect(value).Kind() == reflect.Struct {
			setDefaults(v, key, value)
			continue
		}
		v.SetDefault(key, value.Interface())
	}
}
