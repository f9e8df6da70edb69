package importer

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize bounds how many upserts are in flight at once.
const DefaultBatchSize = 50

// Upserter is the slice of the category store the reconciler writes to.
type Upserter interface {
	Taxonomy() models.Taxonomy
	UpsertByName(ctx context.Context, upsert models.CategoryUpsert) (bool, error)
}

// Reconciler merges grouped categories into a store by name.
type Reconciler struct {
	store     Upserter
	batchSize int
}

func NewReconciler(store Upserter, batchSize int) *Reconciler {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Reconciler{store: store, batchSize: batchSize}
}

// Apply upserts every grouped category. Categories within a batch are
// written concurrently; batches run one after another. The first failing
// upsert stops the import: the summary then carries what was written and
// Aborted is set. Nothing already written is rolled back.
func (r *Reconciler) Apply(ctx context.Context, g *Grouping, createdBy *primitive.ObjectID) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{
		Taxonomy:    r.store.Taxonomy(),
		Rows:        g.Rows,
		Categories:  len(g.Categories),
		Skipped:     len(g.Skipped),
		SkippedRows: append([]models.SkippedRow{}, g.Skipped...),
		Warnings:    g.Warnings,
	}

	var created, updated int64
	for start := 0; start < len(g.Categories); start += r.batchSize {
		end := start + r.batchSize
		if end > len(g.Categories) {
			end = len(g.Categories)
		}

		if err := ctx.Err(); err != nil {
			return r.abort(summary, created, updated, err)
		}

		eg, gctx := errgroup.WithContext(ctx)
		for _, cat := range g.Categories[start:end] {
			up := cat.Upsert()
			up.CreatedBy = createdBy
			eg.Go(func() error {
				wasCreated, err := r.store.UpsertByName(gctx, up)
				if err != nil {
					return err
				}
				if wasCreated {
					atomic.AddInt64(&created, 1)
				} else {
					atomic.AddInt64(&updated, 1)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return r.abort(summary, created, updated, err)
		}
	}

	summary.Created = int(created)
	summary.Updated = int(updated)

	logger.Log.WithFields(logrus.Fields{
		"taxonomy": summary.Taxonomy,
		"created":  summary.Created,
		"updated":  summary.Updated,
		"skipped":  summary.Skipped,
	}).Info("Import reconciled")
	return summary, nil
}

func (r *Reconciler) abort(summary *models.ImportSummary, created, updated int64, err error) (*models.ImportSummary, error) {
	summary.Created = int(created)
	summary.Updated = int(updated)
	summary.Aborted = true

	logger.Log.WithError(err).WithFields(logrus.Fields{
		"taxonomy": summary.Taxonomy,
		"created":  summary.Created,
		"updated":  summary.Updated,
	}).Error("Import aborted")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return summary, apperr.Wrap(apperr.KindTimeout, err, "import timed out after %d of %d categories",
			summary.Created+summary.Updated, summary.Categories)
	case apperr.Is(err, apperr.KindStorage), apperr.Is(err, apperr.KindTimeout):
		return summary, err
	default:
		return summary, apperr.Storage(err, "import aborted after %d of %d categories",
			summary.Created+summary.Updated, summary.Categories)
	}
}
