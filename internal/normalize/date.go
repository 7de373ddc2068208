package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cotflow/internal/models"
)

// ErrUnparseableDate marks a raw date value that matched none of the
// accepted forms for its encoding. Callers drop the affected row; a
// canonical record never carries a placeholder date.
var ErrUnparseableDate = errors.New("unparseable reference date")

// isoForms are tried in order for the ISO-like encoding. The weekly feed
// normally uses the first form; the others absorb the variations seen in
// older files.
var isoForms = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Date converts a report-specific raw date into a timezone-naive
// calendar date. The encoding comes from the active layout descriptor
// and is never guessed from the value itself.
func Date(raw string, enc models.DateEncoding) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}

	switch enc {
	case models.EncodingCompact:
		t, err := time.Parse("060102", value)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q is not YYMMDD", ErrUnparseableDate, raw)
		}
		return t, nil
	case models.EncodingISO:
		for _, form := range isoForms {
			if t, err := time.Parse(form, value); err == nil {
				return truncateToDay(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q is not ISO-like", ErrUnparseableDate, raw)
	default:
		return time.Time{}, fmt.Errorf("%w: unknown encoding %q", ErrUnparseableDate, enc)
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
