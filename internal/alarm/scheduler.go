package alarm

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/croki-app/croki/internal/notify"
)

// Scheduler ticks faster than a minute and fires each matching rule at
// most once per matching minute. Rules can be swapped at runtime.
type Scheduler struct {
	notifier notify.Notifier
	logger   *log.Logger
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	rules []Rule
	fired map[string]string // rule key -> last fired minute
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval overrides the default 15s tick.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.interval = d }
}

// WithClock injects a time source.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler builds a scheduler firing through n.
func NewScheduler(n notify.Notifier, logger *log.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		notifier: n,
		logger:   logger,
		interval: 15 * time.Second,
		now:      time.Now,
		fired:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRules replaces the active rule set.
func (s *Scheduler) SetRules(rules []Rule) {
	s.mu.Lock()
	s.rules = append([]Rule(nil), rules...)
	s.mu.Unlock()
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.Check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check()
		}
	}
}

// Check evaluates once against the current time. Exposed for headless
// one-shot invocation.
func (s *Scheduler) Check() {
	now := s.now()
	minute := now.Format("2006-01-02 15:04")

	s.mu.Lock()
	rules := s.rules
	var due []Rule
	for _, r := range Evaluate(rules, now) {
		key := ruleKey(r)
		if s.fired[key] == minute {
			continue
		}
		s.fired[key] = minute
		due = append(due, r)
	}
	s.mu.Unlock()

	for _, r := range due {
		if s.logger != nil {
			s.logger.Info("alarm fired", "title", r.Title, "minute", minute)
		}
		s.notifier.Notify(r.Title, r.Message)
	}
}

// ruleKey identifies one rule for dedup. Every field that makes two
// rules distinct participates, so near-duplicates cannot suppress each
// other's firing.
func ruleKey(r Rule) string {
	days := make([]string, len(r.Weekdays))
	for i, d := range r.Weekdays {
		days[i] = strconv.Itoa(d)
	}
	return strings.Join([]string{
		string(r.Kind), r.Title, r.Message, r.Time, r.Date, strings.Join(days, ","),
	}, "|")
}
