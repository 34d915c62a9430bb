package progress

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a byte count cannot be expressed with the
// known units.
var ErrOutOfRange = errors.New("progress: byte count out of range")

// Units lists the binary size units in increasing order of magnitude.
var Units = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// Humanize converts a byte count into a rounded magnitude and a binary unit.
//
// The count is divided by 1024 while the quotient is at least 1024. The final
// quotient is rounded half away from zero, so 1536 bytes is (2, "KiB") and
// 1535 bytes is (1, "KiB"). A quotient just below 1024 may round up to 1024 of
// the smaller unit (1048575 bytes is (1024, "KiB")).
func Humanize(b int64) (int64, string, error) {
	if b < 0 {
		return 0, "", fmt.Errorf("%w: %d", ErrOutOfRange, b)
	}

	exp := 0
	current := float64(b)
	for current >= 1024 {
		exp++
		if exp >= len(Units) {
			return 0, "", fmt.Errorf("%w: %d", ErrOutOfRange, b)
		}
		current = float64(b) / math.Pow(1024, float64(exp))
	}

	return int64(math.Round(current)), Units[exp], nil
}

// FormatSize renders b the way progress lines show it: a right-aligned
// magnitude followed by a left-aligned unit.
func FormatSize(b int64) string {
	n, unit, err := Humanize(b)
	if err != nil {
		return fmt.Sprintf("%d B", b)
	}
	return fmt.Sprintf("%4d %-3s", n, unit)
}
