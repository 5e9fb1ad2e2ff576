package intent

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// agendaRule captures free text that starts at a rule-specific anchor.
type agendaRule struct {
	name string
	re   *regexp.Regexp
	// bounded rules already end at a closing delimiter.
	bounded bool
}

// agendaRules are evaluated in order; the first non-empty capture wins.
var agendaRules = []agendaRule{
	{name: "agenda", re: regexp.MustCompile(`(?i)\bagenda\s*[:\-]\s*(.+)`)},
	{name: "about", re: regexp.MustCompile(`(?i)\babout\s+(.+)`)},
	{name: "titled", re: regexp.MustCompile(`(?i)\btitled\s+(?:'([^']+)'|"([^"]+)")`), bounded: true},
}

// agendaStopRe marks where an open-ended agenda capture ends.
var agendaStopRe = regexp.MustCompile(`(?i)(?:^|\s+)(?:with|for|on|at)\b`)

// ExtractAttendees returns every e-mail address in text in order of first
// appearance. Addresses differing only in case count as one.
func ExtractAttendees(text string) []string {
	var attendees []string
	seen := make(map[string]bool)
	for _, addr := range emailRe.FindAllString(text, -1) {
		key := strings.ToLower(addr)
		if seen[key] {
			continue
		}
		seen[key] = true
		attendees = append(attendees, addr)
	}
	return attendees
}

// ExtractAgenda returns the agenda text, or nil when no rule produced a
// non-empty capture.
func ExtractAgenda(text string) *string {
	for _, rule := range agendaRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		captured := firstNonEmpty(m[1:])
		if !rule.bounded {
			if loc := agendaStopRe.FindStringIndex(captured); loc != nil {
				captured = captured[:loc[0]]
			}
		}

		captured = strings.Trim(captured, " \t\r\n.,;:!?'\"")
		if captured == "" {
			continue
		}
		return &captured
	}
	return nil
}

// ExtractParticipants returns attendees and agenda together.
func ExtractParticipants(text string) ([]string, *string) {
	return ExtractAttendees(text), ExtractAgenda(text)
}

// extractTitle returns the quoted text after "titled", if any.
func extractTitle(text string) string {
	for _, rule := range agendaRules {
		if rule.name != "titled" {
			continue
		}
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(firstNonEmpty(m[1:]))
		}
	}
	return ""
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
