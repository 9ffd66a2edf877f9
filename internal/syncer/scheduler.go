package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/models"
)

// Scheduler drives the registered controllers on their cadences: daily and
// weekly via cron in each sport's local timezone, live polling via a
// per-sport ticker.
type Scheduler struct {
	controllers map[models.Sport]*Controller
	cron        *cron.Cron
	tickers     []*time.Ticker
	stopChan    chan struct{}
}

// NewScheduler creates a scheduler over the given controllers
func NewScheduler(controllers map[models.Sport]*Controller) *Scheduler {
	return &Scheduler{
		controllers: controllers,
		cron:        cron.New(),
		stopChan:    make(chan struct{}),
	}
}

// Start registers every sport's cron entries and starts the live tickers
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	for sport, controller := range s.controllers {
		cadence := controller.adapter.Cadence()

		dailySpec := inTimezone(cadence.Timezone, cadence.DailyCron)
		if _, err := s.cron.AddFunc(dailySpec, s.wrap(ctx, sport, "daily", controller.RunDaily)); err != nil {
			return fmt.Errorf("failed to schedule daily sync for %s: %w", sport, err)
		}

		weeklySpec := inTimezone(cadence.Timezone, cadence.WeeklyCron)
		if _, err := s.cron.AddFunc(weeklySpec, s.wrap(ctx, sport, "weekly", controller.RunWeekly)); err != nil {
			return fmt.Errorf("failed to schedule weekly sync for %s: %w", sport, err)
		}

		log.Info().
			Str("sport", string(sport)).
			Str("daily", dailySpec).
			Str("weekly", weeklySpec).
			Msg("Sync routines scheduled")

		interval := cadence.LiveInterval
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		ticker := time.NewTicker(interval)
		s.tickers = append(s.tickers, ticker)
		go s.pollLive(ctx, sport, controller, ticker)

		log.Info().
			Str("sport", string(sport)).
			Dur("interval", interval).
			Msg("Live polling started")
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron entries and live tickers
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	for _, ticker := range s.tickers {
		ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) wrap(ctx context.Context, sport models.Sport, name string, fn func(context.Context) error) func() {
	return func() {
		if err := fn(ctx); err != nil {
			log.Error().
				Err(err).
				Str("sport", string(sport)).
				Str("routine", name).
				Msg("Scheduled sync failed")
		}
	}
}

func (s *Scheduler) pollLive(ctx context.Context, sport models.Sport, controller *Controller, ticker *time.Ticker) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("sport", string(sport)).Msg("Context cancelled, stopping live polling")
			return
		case <-s.stopChan:
			log.Info().Str("sport", string(sport)).Msg("Stop signal received, stopping live polling")
			return
		case <-ticker.C:
			if err := controller.RunLive(ctx); err != nil {
				log.Error().Err(err).Str("sport", string(sport)).Msg("Live sync failed")
			}
		}
	}
}

// inTimezone prefixes a cron spec with the sport's local timezone so game
// calendars stay aligned across leagues.
func inTimezone(tz, spec string) string {
	if tz == "" {
		return spec
	}
	return fmt.Sprintf("CRON_TZ=%s %s", tz, spec)
}
