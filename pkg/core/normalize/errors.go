package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingData is matched by every *MissingDataError.
var ErrMissingData = errors.New("missing data")

// MissingDataError names the required row sets that had no rows for the
// resolved ticker. No partial snapshot is returned alongside it.
type MissingDataError struct {
	Ticker     string
	Categories []Category
}

func (e *MissingDataError) Error() string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = string(c)
	}
	return fmt.Sprintf("missing data for %s: %s", e.Ticker, strings.Join(names, ", "))
}

func (e *MissingDataError) Is(target error) bool {
	return target == ErrMissingData
}

// Missing reports whether a category is among the missing ones.
func (e *MissingDataError) Missing(c Category) bool {
	for _, m := range e.Categories {
		if m == c {
			return true
		}
	}
	return false
}
