package normalize

import (
	"strconv"
	"strings"
)

// Count coerces a raw positioning count into a non-negative integer.
// Unparseable values collapse to zero instead of failing: a row without a
// valid date is meaningless, but one without a valid count still carries
// information as zero exposure. Negative values clamp to zero to keep the
// count invariant.
func Count(raw string) int64 {
	value := strings.TrimSpace(raw)
	value = strings.Trim(value, `"`)
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return 0
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Some historical files carry counts as floats ("1234.0").
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil {
			return 0
		}
		n = int64(f)
	}

	if n < 0 {
		return 0
	}
	return n
}
