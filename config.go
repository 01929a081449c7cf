package pkspawn

import (
	"os"
	"strconv"
)

// PriorityProvider is the narrow contract through which the Launcher
// consumes a scheduling priority from the (out-of-scope) external
// configuration provider. Effective value is clamp(NiceValue(), -20, 19);
// 0 means no adjustment.
type PriorityProvider interface {
	NiceValue() int
}

// staticPriority is the trivial PriorityProvider used when an embedder has
// already resolved the value itself.
type staticPriority int

func (p staticPriority) NiceValue() int { return int(p) }

// StaticPriority wraps a pre-resolved nice value as a PriorityProvider.
func StaticPriority(v int) PriorityProvider { return staticPriority(v) }

// EnvPriorityProvider reads BackendSpawnNiceValue from an environment
// variable as a convenience for tests and the example/ program. Real
// configuration loading belongs to the embedding daemon, not this package.
type EnvPriorityProvider struct {
	Key string
}

// NiceValue parses the environment variable named by Key as a base-10
// integer. Invalid or absent values fall back to 0 (no adjustment).
func (p EnvPriorityProvider) NiceValue() int {
	key := p.Key
	if key == "" {
		key = "PKSPAWN_BACKEND_NICE"
	}
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func clampNice(v int) int {
	if v < -20 {
		return -20
	}
	if v > 19 {
		return 19
	}
	return v
}
