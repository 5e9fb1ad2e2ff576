package intent

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDuration applies when the text names no length.
const DefaultDuration = 30 * time.Minute

// durationRe matches "<number> <unit>", optionally preceded by "for".
var durationRe = regexp.MustCompile(`(?i)(?:\bfor\s+)?\b(\d+(?:\.\d+)?)\s*(minutes?|mins?|hours?|hrs?)\b`)

// ResolveDuration returns the first number+unit pair in text, or
// DefaultDuration when there is none. The first match wins even when a later
// one is more specific: "30 min call for 2 hours" is 30 minutes.
func ResolveDuration(text string) time.Duration {
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return DefaultDuration
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return DefaultDuration
	}

	minutes := amount
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		minutes = amount * 60
	}
	return time.Duration(math.Round(minutes)) * time.Minute
}
