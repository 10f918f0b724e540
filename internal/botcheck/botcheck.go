// Package botcheck flags likely automated form submissions using a hidden
// honeypot field and the form-render timestamp. It keeps no state between
// calls; per-IP velocity limiting is handled by middleware in front of the
// signup endpoint.
package botcheck

import (
	"fmt"
	"strings"
	"time"
)

// Submissions completed faster than this are treated as automated.
const minFormFillSeconds = 10

// Timestamp layouts the front-end has been observed to send. Naive layouts
// (no zone) are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Checker evaluates a single submission for bot signals.
type Checker struct {
	now func() time.Time
}

// New creates a Checker using the wall clock.
func New() *Checker { return &Checker{now: time.Now} }

// NewWithClock creates a Checker with a custom clock.
func NewWithClock(now func() time.Time) *Checker { return &Checker{now: now} }

// Check returns whether the submission looks automated and why.
//
// Rule 1: the honeypot field is invisible to humans, so any non-blank value
// means a script filled it. Rule 2: a form completed in under
// minFormFillSeconds is too fast for a person. When both trigger, the
// timing reason wins. A form_loaded_at value that fails to parse is
// ignored rather than treated as a signal.
func (c *Checker) Check(honeypot, formLoadedAt string) (bool, string) {
	isBot := false
	reason := ""

	if strings.TrimSpace(honeypot) != "" {
		isBot = true
		reason = "Honeypot field filled"
	}

	if formLoadedAt != "" {
		if loadedAt, ok := parseTimestamp(formLoadedAt); ok {
			elapsed := c.now().UTC().Sub(loadedAt).Seconds()
			if elapsed < minFormFillSeconds {
				isBot = true
				reason = fmt.Sprintf("Form submitted too fast (%.2fs)", elapsed)
			}
		}
	}

	return isBot, reason
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
