package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsOverridesOnlyWhenSet(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--cache-dir", "/tmp/pages", "--rate", "0.5"}))

	v := viper.New()
	v.SetDefault("cache.root", "cache")
	v.SetDefault("fetcher.driver", "colly")
	require.NoError(t, BindFlags(v, fs))

	require.Equal(t, "/tmp/pages", v.GetString("cache.root"))
	require.InDelta(t, 0.5, v.GetFloat64("fetcher.requests_per_second"), 1e-9)
	require.Equal(t, "colly", v.GetString("fetcher.driver"))
}

func TestBindFlagsSkipsUnregistered(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("partial", pflag.ContinueOnError)
	fs.String("cache-dir", "", "")
	require.NoError(t, fs.Parse([]string{"--cache-dir=/srv/cache"}))

	v := viper.New()
	require.NoError(t, BindFlags(v, fs))
	require.Equal(t, "/srv/cache", v.GetString("cache.root"))
}
