// Package reconcile cancels booking shells that a failed checkout left on the
// backend.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/metinatakli/cinema-storefront/internal/mailer"
)

const (
	DefaultBatchSize   = 50
	DefaultMaxAttempts = 10
	reportTemplate     = "reconciliation_report.tmpl"
)

type Config struct {
	Interval     time.Duration
	BatchSize    int
	MaxAttempts  int
	ServiceToken string
	ReportTo     string
}

type ReportEntry struct {
	BookingID  int
	CustomerID int
	Stage      domain.CheckoutStage
	Attempts   int
	Error      string
	Abandoned  bool
}

type Report struct {
	FinishedAt time.Time
	Cancelled  int
	Failed     int
	Abandoned  int
	Entries    []ReportEntry
}

type Reconciler struct {
	cfg     Config
	pending domain.PendingBookingRepository
	gateway domain.BookingGateway
	mailer  mailer.Mailer
	logger  *slog.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
}

func New(cfg Config, pending domain.PendingBookingRepository, gateway domain.BookingGateway, m mailer.Mailer, logger *slog.Logger) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &Reconciler{
		cfg:     cfg,
		pending: pending,
		gateway: gateway,
		mailer:  m,
		logger:  logger.With("component", "reconciler"),
	}
}

// Start schedules RunOnce every cfg.Interval. A run that is still going when
// the next one is due delays it instead of overlapping.
func (r *Reconciler) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler != nil {
		return errors.New("reconciler already started")
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(r.cfg.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Interval)
			defer cancel()

			_, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.Error("reconciliation run failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.Start()
	r.scheduler = s

	r.logger.Info("reconciler started", "interval", r.cfg.Interval.String())

	return nil
}

func (r *Reconciler) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler == nil {
		return nil
	}

	err := r.scheduler.Shutdown()
	r.scheduler = nil

	return err
}

// RunOnce cancels one batch of unresolved booking shells. A shell the backend
// no longer knows counts as cancelled. A shell that failed cfg.MaxAttempts
// times is abandoned and appears in exactly one report.
func (r *Reconciler) RunOnce(ctx context.Context) (*Report, error) {
	bookings, err := r.pending.GetUnresolved(ctx, r.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	for _, b := range bookings {
		entry := ReportEntry{
			BookingID:  b.BookingID,
			CustomerID: b.CustomerID,
			Stage:      b.Stage,
			Attempts:   b.Attempts + 1,
		}

		cancelErr := r.gateway.CancelBooking(ctx, r.cfg.ServiceToken, b.BookingID)
		switch {
		case cancelErr != nil && entry.Attempts >= r.cfg.MaxAttempts:
			entry.Error = cancelErr.Error()
			entry.Abandoned = true
			report.Abandoned++

			err := r.pending.MarkAbandoned(ctx, b.ID, cancelErr.Error())
			if err != nil {
				r.logger.Error("failed to abandon booking shell", "booking_id", b.BookingID, "error", err)
			}

			r.logger.Error("giving up on booking shell", "booking_id", b.BookingID, "attempts", entry.Attempts, "error", cancelErr)
		case cancelErr != nil:
			entry.Error = cancelErr.Error()
			report.Failed++

			err := r.pending.RecordAttempt(ctx, b.ID, cancelErr.Error())
			if err != nil {
				r.logger.Error("failed to record reconciliation attempt", "booking_id", b.BookingID, "error", err)
			}

			r.logger.Warn("failed to cancel booking shell", "booking_id", b.BookingID, "error", cancelErr)
		default:
			report.Cancelled++

			err := r.pending.MarkResolved(ctx, b.ID)
			if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
				r.logger.Error("failed to mark booking shell resolved", "booking_id", b.BookingID, "error", err)
			}

			r.logger.Info("cancelled booking shell", "booking_id", b.BookingID)
		}

		report.Entries = append(report.Entries, entry)
	}

	report.FinishedAt = time.Now().UTC()

	if len(report.Entries) > 0 {
		r.sendReport(report)
	}

	return report, nil
}

func (r *Reconciler) sendReport(report *Report) {
	if r.mailer == nil || r.cfg.ReportTo == "" {
		return
	}

	err := r.mailer.Send(r.cfg.ReportTo, reportTemplate, report)
	if err != nil {
		r.logger.Error("failed to send reconciliation report", "error", err)
	}
}
