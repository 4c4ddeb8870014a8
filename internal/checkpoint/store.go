// Package checkpoint persists forward wavefield pairs to an external store
// during one gradient computation, bounding memory at O(grid) instead of
// O(nt*grid). Keys follow the (timestep, slot) scheme with a distinguished
// last pair.
package checkpoint

import "fmt"

// Store is an opaque byte-stream provider keyed by checkpoint name. The
// driver hands the same store to every gradient computation; each
// computation writes every key it later reads, so no checkpoint carries
// over from one iteration to the next.
type Store interface {
	// Save persists the field under key, overwriting any previous value.
	Save(key string, field []float64) error
	// Load reads the field stored under key into dst.
	Load(key string, dst []float64) error
}

// Key names the checkpoint of slot (1 or 2) at the given timestep.
func Key(it, slot int) string {
	return fmt.Sprintf("check_time_%d_%d", it, slot)
}

// LastKey names the checkpoint of slot for the final timestep pair.
func LastKey(slot int) string {
	return fmt.Sprintf("check_time_last_%d", slot)
}
