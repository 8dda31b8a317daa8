package service

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yourname/bloomhealth/internal"
)

// Refresher periodically starts a fetch cycle on every session.
type Refresher struct {
	hub       *Hub
	interval  time.Duration
	scheduler *gocron.Scheduler
	logger    internal.Logger
}

func NewRefresher(hub *Hub, interval time.Duration, logger internal.Logger) *Refresher {
	return &Refresher{hub: hub, interval: interval, logger: logger}
}

// Start schedules the refresh job. A non-positive interval disables it.
func (r *Refresher) Start() error {
	if r.interval <= 0 {
		r.logger.Infof("service: periodic refresh disabled")
		return nil
	}

	scheduler := gocron.NewScheduler(time.Local)
	_, err := scheduler.Every(r.interval).SingletonMode().WaitForSchedule().Do(func() {
		n := r.hub.RefreshAll()
		r.logger.Debugf("service: refreshed %d health sessions", n)
	})
	if err != nil {
		return err
	}
	scheduler.StartAsync()
	r.scheduler = scheduler
	r.logger.Infof("service: refreshing health sessions every %s", r.interval)
	return nil
}

func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
