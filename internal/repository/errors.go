package repository

import (
	"context"
	"errors"

	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"go.mongodb.org/mongo-driver/mongo"
)

// translate maps a driver error onto the application error kinds.
func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, err, format, args...)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.KindDuplicateName, err, format, args...)
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return apperr.Wrap(apperr.KindTimeout, err, format, args...)
	default:
		return apperr.Storage(err, format, args...)
	}
}
