// Package hash derives stable identifiers and checksums for runs.
//
// A run id is the SHA-256 of a canonical encoding of the full parameter
// tuple and seed, so the same run always gets the same id and results can be
// collected in a map keyed by it regardless of completion order.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/danieljhkim/lanesim/internal/sim"
)

// idLength is the number of hex characters kept in a run id.
const idLength = 16

// RunID returns the identifier of the run of cfg seeded with seed.
func RunID(cfg sim.Config, seed uint64) string {
	return Short(Bytes([]byte(Canonical(cfg, seed))), idLength)
}

// Canonical encodes cfg and seed as a single line of key=value pairs.
// Floats use the shortest representation that round-trips.
func Canonical(cfg sim.Config, seed uint64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	parts := []string{
		"L=" + strconv.Itoa(cfg.Length),
		"N=" + strconv.Itoa(cfg.Particles),
		"hop_a=" + f(cfg.Rates.HopA),
		"convert_ab=" + f(cfg.Rates.ConvertAB),
		"hop_b=" + f(cfg.Rates.HopB),
		"convert_ba=" + f(cfg.Rates.ConvertBA),
		"alpha=" + f(cfg.Alpha),
		"beta=" + f(cfg.Beta),
		"steps=" + strconv.Itoa(cfg.Steps),
		"warmup=" + strconv.Itoa(cfg.Warmup),
		"seed=" + strconv.FormatUint(seed, 10),
	}
	return strings.Join(parts, ";")
}

// Bytes returns the hex-encoded SHA-256 of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Short returns the first n characters of a hex digest.
func Short(digest string, n int) string {
	if n <= 0 || n >= len(digest) {
		return digest
	}
	return digest[:n]
}
