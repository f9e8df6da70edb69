package scheduler

import (
	"context"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/jobs"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	// ExpirySchedule runs the notification cleanup daily at 03:00.
	ExpirySchedule = "0 3 * * *"

	jobTimeout = 5 * time.Minute
)

// Options controls which jobs are registered.
type Options struct {
	NotificationRetention time.Duration
	// DigestSchedule is a cron expression; empty disables the digest.
	DigestSchedule string
}

// Start registers the background jobs and starts the cron runner. The
// caller stops it with Stop on shutdown.
func Start(notificationService *services.NotificationService, digest *jobs.ReviewDigest, opts Options) (*cron.Cron, error) {
	c := cron.New()

	if opts.NotificationRetention > 0 {
		_, err := c.AddFunc(ExpirySchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			n, err := notificationService.DeleteExpiredNotifications(ctx, opts.NotificationRetention)
			if err != nil {
				logrus.WithError(err).Error("DeleteExpiredNotifications failed")
				return
			}
			logrus.WithField("count", n).Info("Expired notifications deleted")
		})
		if err != nil {
			return nil, err
		}
	}

	if opts.DigestSchedule != "" && digest != nil {
		_, err := c.AddFunc(opts.DigestSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if _, err := digest.Run(ctx); err != nil {
				logrus.WithError(err).Error("Review digest failed")
			}
		})
		if err != nil {
			return nil, err
		}
	}

	c.Start()
	logrus.WithField("jobs", len(c.Entries())).Info("Scheduler started")
	return c, nil
}
