package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/repository"
)

// Sweeper runs the nightly entitlement backstop: subscriptions whose end
// date passed without a webhook are flipped off.
type Sweeper struct {
	subscribers *repository.SubscriberRepository
	c           *cron.Cron
}

func NewSweeper(subscribers *repository.SubscriberRepository) *Sweeper {
	return &Sweeper{subscribers: subscribers}
}

// Start schedules the sweep nightly at 12:00AM.
func (s *Sweeper) Start() error {
	s.c = cron.New(cron.WithSeconds())

	_, err := s.c.AddFunc("0 0 0 * * *", s.runOnce)
	if err != nil {
		return err
	}

	log.Info().Msg("entitlement sweeper started (running nightly at 12:00AM)")
	s.c.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.c != nil {
		<-s.c.Stop().Done()
	}
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.subscribers.ExpireLapsed(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("entitlement sweep failed")
		return
	}
	log.Info().Int64("expired", n).Msg("entitlement sweep completed")
}
