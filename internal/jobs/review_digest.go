package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/sirupsen/logrus"
)

// ReviewDigest mails admins how many categories await review.
type ReviewDigest struct {
	Moderation  []*services.ModerationService
	UserService *services.UserService
	Mailer      services.Mailer
}

// NewReviewDigest creates a new instance of ReviewDigest
func NewReviewDigest(users *services.UserService, mailer services.Mailer, moderation ...*services.ModerationService) *ReviewDigest {
	return &ReviewDigest{
		Moderation:  moderation,
		UserService: users,
		Mailer:      mailer,
	}
}

// QueueCount is the review backlog of one taxonomy.
type QueueCount struct {
	Taxonomy models.Taxonomy
	Pending  int64
	Total    int64
}

// Counts collects the review backlog of every taxonomy.
func (d *ReviewDigest) Counts(ctx context.Context) ([]QueueCount, error) {
	counts := make([]QueueCount, 0, len(d.Moderation))
	for _, m := range d.Moderation {
		total, err := m.ReviewCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s review queue: %w", m.Taxonomy(), err)
		}
		pending, err := m.PendingCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s pending categories: %w", m.Taxonomy(), err)
		}
		counts = append(counts, QueueCount{Taxonomy: m.Taxonomy(), Pending: pending, Total: total})
	}
	return counts, nil
}

// Run sends the digest when any queue is non-empty. It returns the number
// of admins mailed; individual delivery failures are only logged.
func (d *ReviewDigest) Run(ctx context.Context) (int, error) {
	counts, err := d.Counts(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, c := range counts {
		total += c.Total
	}
	if total == 0 {
		logrus.Info("Review digest skipped: nothing awaiting review")
		return 0, nil
	}

	admins, err := d.UserService.Admins(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch admins: %w", err)
	}

	body := digestBody(counts)
	sent := 0
	for _, admin := range admins {
		if err := d.Mailer.Send(admin.Email, "Categories awaiting review", body); err != nil {
			logrus.WithError(err).WithField("userID", admin.ID.Hex()).Error("Failed to send review digest")
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{"admins": sent, "awaiting": total}).Info("Review digest sent")
	return sent, nil
}

func digestBody(counts []QueueCount) string {
	var b strings.Builder
	b.WriteString("Hello,\n\nThe following categories are waiting for a moderation decision:\n\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "- %s: %d awaiting review (%d newly submitted)\n", c.Taxonomy, c.Total, c.Pending)
	}
	return b.String()
}
