package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. TALLY_STORAGE_DSN.
const EnvPrefix = "TALLY"

// Override keys. Flags are bound to these names and environment variables
// are derived from them.
const (
	KeyDataDir        = "data_dir"
	KeyConfig         = "config"
	KeyStorageBackend = "storage.backend"
	KeyStoragePath    = "storage.path"
	KeyStorageDSN     = "storage.dsn"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
)

// NewViper returns a viper instance reading TALLY_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every value explicitly set on v (changed flags or
// environment variables) over the file configuration.
func (c *Config) ApplyOverrides(v *viper.Viper) {
	set := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	set(KeyStorageBackend, &c.Storage.Backend)
	set(KeyStoragePath, &c.Storage.Path)
	set(KeyStorageDSN, &c.Storage.DSN)
	set(KeyLogLevel, &c.Log.Level)
	set(KeyLogFormat, &c.Log.Format)
}
