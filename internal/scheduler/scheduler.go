package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/monitor"
	"SignalSentinel/internal/notifier"
)

// Runner is the part of *monitor.Monitor the scheduler drives.
type Runner interface {
	Run(ctx context.Context, mode monitor.Mode, now time.Time) []monitor.Outcome
	Report(ctx context.Context, now time.Time) string
	StateList(ctx context.Context) (map[string]string, error)
}

// Scheduler manages the cron jobs and bot commands. At most one run is active at a time.
type Scheduler struct {
	Cron    *cron.Cron
	Monitor Runner
	Ctx     context.Context

	mu  sync.Mutex
	now func() time.Time
	log zerolog.Logger
}

// NewScheduler creates a Scheduler whose cron expressions (with seconds) are read in UTC+1.
func NewScheduler(ctx context.Context, mon Runner, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cronLog := cron.PrintfLogger(&log)
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(monitor.Zone),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Monitor: mon,
		Ctx:     ctx,
		now:     time.Now,
		log:     log,
	}
}

// RegisterAll registers the change-detection and digest jobs.
func (s *Scheduler) RegisterAll(normalCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(normalCron, func() { s.runJob(monitor.ModeNormal) }); err != nil {
		return fmt.Errorf("register normal task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, func() { s.runJob(monitor.ModeDigest) }); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes one run immediately. It reports false when another run is active.
func (s *Scheduler) RunNow(mode monitor.Mode) ([]monitor.Outcome, bool) {
	if !s.mu.TryLock() {
		return nil, false
	}
	defer s.mu.Unlock()
	return s.Monitor.Run(s.Ctx, mode, s.now()), true
}

func (s *Scheduler) runJob(mode monitor.Mode) {
	if _, ok := s.RunNow(mode); !ok {
		s.log.Warn().Str("mode", string(mode)).Msg("previous run still active, skipping")
	}
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "/status":
		return s.Monitor.Report(ctx, s.now())
	case "/state":
		records, err := s.Monitor.StateList(ctx)
		if err != nil {
			return fmt.Sprintf("❌ state unavailable: %v", err)
		}
		return notifier.FormatStateList(records)
	case "/run":
		outcomes, ok := s.RunNow(monitor.ModeNormal)
		if !ok {
			return "⏳ a run is already in progress"
		}
		return FormatOutcomes(outcomes)
	default:
		return notifier.FormatHelp()
	}
}

// FormatOutcomes summarizes a run for a bot reply.
func FormatOutcomes(outcomes []monitor.Outcome) string {
	if len(outcomes) == 0 {
		return "No instruments evaluated"
	}
	var b strings.Builder
	b.WriteString("✅ <b>Run complete</b>\n")
	for _, o := range outcomes {
		b.WriteString(fmt.Sprintf("%s: %s", o.Symbol, o.Status))
		if o.Identity != "" {
			b.WriteString(" (" + o.Identity + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
