// Package bytesize parses and formats human-readable byte quantities for
// CLI flags ("64K", "1G") and reports.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes.
type ByteSize uint64

const (
	B   ByteSize = 1
	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

var unitMultipliers = map[string]ByteSize{
	"":    B,
	"b":   B,
	"k":   KiB,
	"kb":  KiB,
	"ki":  KiB,
	"kib": KiB,
	"m":   MiB,
	"mb":  MiB,
	"mi":  MiB,
	"mib": MiB,
	"g":   GiB,
	"gb":  GiB,
	"gi":  GiB,
	"gib": GiB,
	"t":   TiB,
	"tb":  TiB,
	"ti":  TiB,
	"tib": TiB,
}

// Parse reads a byte size like "65536", "64K" or "1GiB". Benchmark block
// sizes use binary units throughout, so decimal suffixes alias the binary
// multipliers.
func Parse(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := len(s)
	for split > 0 && !isDigit(s[split-1]) {
		split--
	}
	numStr, unit := s[:split], strings.ToLower(strings.TrimSpace(s[split:]))

	num, err := strconv.ParseUint(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	multiplier, ok := unitMultipliers[unit]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}
	return ByteSize(num) * multiplier, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// UnmarshalText lets ByteSize fields decode from config files and flags.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String formats the size with its largest binary unit.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}

// Uint64 returns the size as a plain uint64.
func (b ByteSize) Uint64() uint64 { return uint64(b) }
