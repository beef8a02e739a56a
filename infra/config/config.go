package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	// Name is the config file name searched for when no file is given.
	Name = "fft-filter"
	// EnvPrefix makes 'filter.samples' available as FFT_FILTER_SAMPLES.
	EnvPrefix = "FFT"
	// Section is the key holding the filter category.
	Section = "filter"
)

// New creates a viper instance reading from the given file,
// or from the default locations if the file is empty.
// A missing file in the default locations is not an error, the env and defaults still apply.
func New(file string, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
		v.AddConfigPath("/etc/" + Name)
		v.AddConfigPath("./infra/config")
		v.AddConfigPath(".")
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); file != "" || !notFound {
			return nil, fmt.Errorf("could not read config '%s': %w", file, err)
		}
		log.Debug().Msg("no config file found")
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("loaded config")
	}
	return v, nil
}

// Items returns the string values of the given keys under the section.
// Keys that are not set anywhere are left out.
func Items(v *viper.Viper, section string, keys ...string) map[string]string {
	items := make(map[string]string)
	for _, key := range keys {
		k := fmt.Sprintf("%s.%s", section, key)
		if v.IsSet(k) {
			items[key] = v.GetString(k)
		}
	}
	return items
}

// Watch calls the callback with the section items every time the config file changes.
func Watch(v *viper.Viper, section string, callback func(items map[string]string), keys ...string) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().
			Str("file", e.Name).
			Str("op", e.Op.String()).
			Msg("config changed")
		callback(Items(v, section, keys...))
	})
	v.WatchConfig()
}
