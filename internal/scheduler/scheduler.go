package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PadelTracker/internal/dashboard"
	"PadelTracker/internal/notifier"
)

// Sender delivers report messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Service *dashboard.Service
	Sender  Sender
	Ctx     context.Context
	logger  *zap.Logger
}

// NewScheduler creates a new Scheduler. sender may be nil when no report
// channel is configured.
func NewScheduler(ctx context.Context, svc *dashboard.Service, sender Sender, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Service: svc,
		Sender:  sender,
		Ctx:     ctx,
		logger:  logger,
	}
}

// RegisterAll registers the refresh task and, when reportCron is set, the
// report task.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if reportCron == "" {
		return nil
	}
	if s.Sender == nil {
		return fmt.Errorf("register report task: no sender configured")
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunReportNow executes the report task immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) refreshTask() {
	s.logger.Info("running scheduled refresh")
	if _, err := s.Service.Refresh(s.Ctx); err != nil {
		s.logger.Error("scheduled refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) reportTask() {
	s.logger.Info("running scheduled report")
	snap, err := s.Service.Refresh(s.Ctx)
	if err != nil {
		s.logger.Error("report refresh failed", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Market refresh failed: %v", err))
		return
	}
	result, err := s.Service.Analyze(s.Ctx)
	if err != nil {
		s.logger.Error("report analysis failed", zap.Error(err))
		return
	}
	s.trySend(notifier.FormatMarketReport(snap, time.Now()) + "\n" + notifier.FormatAnalysis(result))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/prices":
		snap, err := s.Service.Snapshot()
		if err != nil {
			return "No market data loaded yet. Try /refresh."
		}
		return notifier.FormatMarketReport(snap, time.Now())
	case "/refresh":
		snap, err := s.Service.Refresh(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Market refresh failed: %v", err)
		}
		return notifier.FormatMarketReport(snap, time.Now())
	case "/analyze":
		result, err := s.Service.Analyze(ctx)
		if err != nil {
			return "No market data loaded yet. Try /refresh."
		}
		return notifier.FormatAnalysis(result)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}
