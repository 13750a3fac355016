package features

import (
	"os"
	"sort"
	"strings"

	"github.com/fieldops/fieldsync/internal/config"
)

// Feature describes a named feature flag.
type Feature struct {
	Name        string
	Default     bool
	Description string
}

var (
	// OfflineCache gates the endpoint cache fallback on reads.
	OfflineCache = Feature{
		Name:        "offline_cache",
		Default:     true,
		Description: "Serve cached responses when the network is unreachable",
	}

	// AutoDrain gates running a drain automatically when connectivity returns.
	AutoDrain = Feature{
		Name:        "auto_drain",
		Default:     false,
		Description: "Drain the mutation queue automatically on reconnect",
	}

	// VerboseDiag gates payload capture in the diagnostic log.
	VerboseDiag = Feature{
		Name:        "verbose_diag",
		Default:     false,
		Description: "Include request/response detail in debug log entries",
	}
)

var allFeatures = []Feature{
	AutoDrain,
	OfflineCache,
	VerboseDiag,
}

var defaultValues = buildDefaultMap()

func buildDefaultMap() map[string]bool {
	values := make(map[string]bool, len(allFeatures))
	for _, feature := range allFeatures {
		values[feature.Name] = feature.Default
	}
	return values
}

// ListAll returns all known features.
func ListAll() []Feature {
	items := make([]Feature, len(allFeatures))
	copy(items, allFeatures)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items
}

// IsKnownFeature returns true when the feature exists in the registry.
func IsKnownFeature(name string) bool {
	_, ok := defaultValues[normalizeName(name)]
	return ok
}

// IsEnabled resolves a feature using env overrides, then device config,
// then defaults.
func IsEnabled(name string) bool {
	enabled, _ := Resolve(name)
	return enabled
}

// Resolve returns the resolved feature state and the source
// ("env", "config", "default").
func Resolve(name string) (bool, string) {
	canonical := normalizeName(name)

	if enabled, ok := resolveEnvOverride(canonical); ok {
		return enabled, "env"
	}

	if cfg, err := config.Load(); err == nil && cfg.Features != nil {
		if enabled, ok := cfg.Features[canonical]; ok {
			return enabled, "config"
		}
	}

	return getDefault(canonical), "default"
}

// Snapshot returns every known feature with its effective value, for
// inclusion in bug reports.
func Snapshot() map[string]bool {
	snap := make(map[string]bool, len(allFeatures))
	for _, feature := range allFeatures {
		snap[feature.Name] = IsEnabled(feature.Name)
	}
	return snap
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func getDefault(name string) bool {
	if enabled, ok := defaultValues[name]; ok {
		return enabled
	}
	return false
}

func resolveEnvOverride(name string) (bool, bool) {
	featureVar := "FIELDSYNC_FEATURE_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return parseBoolEnv(featureVar)
}

func parseBoolEnv(key string) (bool, bool) {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	default:
		return false, false
	}
}
