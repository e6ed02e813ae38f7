// Package config binds command-line flags onto a Viper instance so that flag
// values take precedence over the config file and environment.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FlagKeys maps flag names to the configuration keys they override.
var FlagKeys = map[string]string{
	"cache-dir":  "cache.root",
	"driver":     "fetcher.driver",
	"rate":       "fetcher.requests_per_second",
	"cast-limit": "extract.cast_limit",
	"dev":        "logging.development",
	"log-level":  "logging.level",
}

// RegisterFlags declares the override flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("cache-dir", "", "page cache directory (cache.root)")
	fs.String("driver", "", "fetcher driver: colly, resty, headless or auto (fetcher.driver)")
	fs.Float64("rate", 0, "requests per second per host, 0 for unlimited (fetcher.requests_per_second)")
	fs.Int("cast-limit", 0, "maximum cast members per title (extract.cast_limit)")
	fs.Bool("dev", false, "human-friendly development logging (logging.development)")
	fs.String("log-level", "", "log level: debug, info, warn, error (logging.level)")
}

// BindFlags binds every registered override flag present in fs onto v.
// Unset flags do not shadow file or environment values.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
