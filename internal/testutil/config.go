package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/podio/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{OverwriteFiles: config.OverwriteFiles}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.SetOverwriteFiles(state.OverwriteFiles)
}

// ResetConfig resets viper to the registered podio defaults and restores
// both viper and the package variables when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()

	viper.Reset()
	config.SetDefaults()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SiteConfig points the listing and feed settings at a fake site and
// disables retry delays so tests stay fast.
func SiteConfig(t *testing.T, site *SiteServer) {
	t.Helper()

	SetViperValue(t, "listing.url", site.URL+"/")
	SetViperValue(t, "listing.feedurltemplate", site.FeedURLTemplate())
	SetViperValue(t, "fetch.attempts", 3)
	SetViperValue(t, "fetch.retrydelay", "0s")
	SetViperValue(t, "fetch.timeout", "5s")
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset; the next ResetConfig clears it
	})
}
