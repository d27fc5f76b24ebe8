// Package imaging resolves a displayable image for every recipe card. URLs
// are verified before use, never shared between two recipes while an
// alternative exists, retried a bounded number of times and finally
// replaced by a category fallback.
package imaging

// Status is the resolution state of one recipe image
type Status int

const (
	StatusUnresolved Status = iota
	StatusVerifying
	StatusValid
	StatusInvalid
	StatusRetrying
	StatusFallbackAssigned
)

var statusNames = [...]string{
	StatusUnresolved:       "unresolved",
	StatusVerifying:        "verifying",
	StatusValid:            "valid",
	StatusInvalid:          "invalid",
	StatusRetrying:         "retrying",
	StatusFallbackAssigned: "fallback_assigned",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Final reports whether no further transition can happen
func (s Status) Final() bool {
	return s == StatusValid || s == StatusFallbackAssigned
}
