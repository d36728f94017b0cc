package types

import (
	"encoding/json"
	"math"
	"strings"
)

// CheckStatus is the outcome of a validation check
type CheckStatus string

const (
	CheckStatusPass    CheckStatus = "pass"
	CheckStatusWarn    CheckStatus = "warn"
	CheckStatusFail    CheckStatus = "fail"
	CheckStatusUnknown CheckStatus = "unknown"
)

// ParseCheckStatus maps a wire value onto the known statuses. Matching is exact:
// anything other than "pass", "warn" or "fail" is CheckStatusUnknown.
func ParseCheckStatus(s string) CheckStatus {
	switch CheckStatus(s) {
	case CheckStatusPass, CheckStatusWarn, CheckStatusFail:
		return CheckStatus(s)
	default:
		return CheckStatusUnknown
	}
}

// ValidCheckStatuses returns the recognized statuses including the unknown fallback
func ValidCheckStatuses() []CheckStatus {
	return []CheckStatus{
		CheckStatusPass,
		CheckStatusWarn,
		CheckStatusFail,
		CheckStatusUnknown,
	}
}

// LookupCheckStatus matches user input against ValidCheckStatuses, ignoring case
// and surrounding space
func LookupCheckStatus(s string) (CheckStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range ValidCheckStatuses() {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// CheckStatusNames lists the valid statuses for help and error text
func CheckStatusNames() string {
	names := make([]string, 0, 4)
	for _, st := range ValidCheckStatuses() {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

// UnmarshalJSON normalizes the status on decode
func (s *CheckStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Non-string statuses (null, numbers) are unknown, not a decode failure
		*s = CheckStatusUnknown
		return nil
	}
	*s = ParseCheckStatus(raw)
	return nil
}

// CheckRecord is a single validation result for one file
type CheckRecord struct {
	ID       string      `json:"id"`
	File     string      `json:"file"`
	Title    string      `json:"title"`
	Status   CheckStatus `json:"status"`
	Observed any         `json:"observed,omitempty"`
	Expected any         `json:"expected,omitempty"`
	Details  any         `json:"details,omitempty"`
}

// CheckCounts is the aggregate view of a check list.
// Passing+Warn+Fail+Unknown always equals Total.
type CheckCounts struct {
	Total   int `json:"total"`
	Passing int `json:"passing"`
	Warn    int `json:"warn"`
	Fail    int `json:"fail"`
	Unknown int `json:"unknown"`
	// Rate is the pass percentage in [0, 100], rounded half-up
	Rate int `json:"check_rate"`
}

// CountChecks computes status counts and the pass rate from scratch
func CountChecks(checks []CheckRecord) CheckCounts {
	c := CheckCounts{Total: len(checks)}
	for _, ch := range checks {
		switch ch.Status {
		case CheckStatusPass:
			c.Passing++
		case CheckStatusWarn:
			c.Warn++
		case CheckStatusFail:
			c.Fail++
		default:
			c.Unknown++
		}
	}
	c.Rate = PassRate(c.Passing, c.Total)
	return c
}

// PassRate returns round(passing/total*100), or 0 when total is 0.
// math.Round rounds half away from zero, which is half-up for these non-negative inputs.
func PassRate(passing, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(passing) / float64(total) * 100))
}

// FilterChecks returns the checks whose status is in statuses. No statuses returns all checks.
func FilterChecks(checks []CheckRecord, statuses ...CheckStatus) []CheckRecord {
	if len(statuses) == 0 {
		return checks
	}
	want := make(map[CheckStatus]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	var out []CheckRecord
	for _, ch := range checks {
		if _, ok := want[ch.Status]; ok {
			out = append(out, ch)
		}
	}
	return out
}
