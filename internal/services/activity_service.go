package services

import (
	"context"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultActivityLimit = 50

type ActivityService struct {
	repo repository.ActivityStore
}

func NewActivityService(repo repository.ActivityStore) *ActivityService {
	return &ActivityService{repo: repo}
}

// LogActivity records one moderation event. Failures are logged and
// swallowed: the audit trail never fails the operation it describes.
func (s *ActivityService) LogActivity(
	ctx context.Context,
	actor Actor,
	actionType string,
	taxonomy models.Taxonomy,
	targetID *primitive.ObjectID,
	message string,
) {
	if s == nil {
		return
	}
	activity := &models.Activity{
		ActorID:   actor.UserID,
		Type:      actionType,
		Taxonomy:  taxonomy,
		TargetID:  targetID,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		logrus.WithError(err).Error("Failed to log activity in service")
		return
	}

	logrus.WithFields(logrus.Fields{
		"action_type": actionType,
		"taxonomy":    taxonomy,
	}).Debug("Activity logged successfully")
}

// GetRecentActivities returns the newest entries, optionally for one taxonomy
func (s *ActivityService) GetRecentActivities(ctx context.Context, taxonomy models.Taxonomy, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultActivityLimit
	}
	return s.repo.List(ctx, taxonomy, limit)
}
