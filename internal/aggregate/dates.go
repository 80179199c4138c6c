package aggregate

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"product-dashboard/internal/models"
)

var dayFirstLayouts = []string{"02/01/2006", "2/1/2006"}

// ParseDate reads a day/month/year date in loc. ISO-like values are accepted
// as a fallback. The sentinel and empty strings are not dates.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, models.NotApplicable) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if strings.Contains(s, "/") {
		// slash dates that failed above are not day-first; do not let the
		// fallback reinterpret them month-first
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
