// Package alarm evaluates practice-reminder rules against wall-clock
// time. Rules fire to the minute, either on a weekly weekday pattern
// or on one specific date.
package alarm

import (
	"fmt"
	"time"
)

// Kind selects a rule's recurrence shape.
type Kind string

const (
	KindWeekday Kind = "weekday"
	KindDate    Kind = "date"
)

// Weekday numbering in stored rules: 0=Monday .. 6=Sunday. Existing
// records use this numbering; conversion from time.Weekday happens
// only inside matching.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Rule is one reminder. A weekday rule fires at Time on each listed
// weekday; a date rule fires at Time on Date only.
type Rule struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Time     string `json:"time"` // HH:MM
	Kind     Kind   `json:"type"`
	Weekdays []int  `json:"weekdays,omitempty"` // 0=Monday..6
	Date     string `json:"date,omitempty"`     // YYYY-MM-DD
	Enabled  bool   `json:"enabled"`
}

// Validate checks the rule's fields are well-formed.
func (r Rule) Validate() error {
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return fmt.Errorf("invalid time %q: want HH:MM", r.Time)
	}
	switch r.Kind {
	case KindWeekday:
		if len(r.Weekdays) == 0 {
			return fmt.Errorf("weekday rule needs at least one weekday")
		}
		for _, wd := range r.Weekdays {
			if wd < Monday || wd > Sunday {
				return fmt.Errorf("weekday %d out of range [0,6]", wd)
			}
		}
	case KindDate:
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", r.Date)
		}
	default:
		return fmt.Errorf("unknown rule type %q", r.Kind)
	}
	return nil
}

// Matches reports whether the rule should fire at now, to the minute.
func (r Rule) Matches(now time.Time) bool {
	if !r.Enabled {
		return false
	}
	if now.Format("15:04") != r.Time {
		return false
	}
	switch r.Kind {
	case KindWeekday:
		wd := mondayBased(now.Weekday())
		for _, d := range r.Weekdays {
			if d == wd {
				return true
			}
		}
		return false
	case KindDate:
		return now.Format("2006-01-02") == r.Date
	}
	return false
}

// Evaluate returns the rules matching now. Firing is at-least-once per
// matching minute; Scheduler layers once-per-minute dedup on top.
func Evaluate(rules []Rule, now time.Time) []Rule {
	var matched []Rule
	for _, r := range rules {
		if r.Matches(now) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Record is the persisted alarm slot: the whole rule collection.
type Record struct {
	Alarms []Rule `json:"alarms"`
}

func mondayBased(wd time.Weekday) int {
	// time.Weekday counts 0=Sunday; stored rules count 0=Monday.
	return (int(wd) + 6) % 7
}
