package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/importer"
	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/sirupsen/logrus"
)

const analyzeSampleRows = 5

// ImportOptions tune the reconciler for one taxonomy.
type ImportOptions struct {
	BatchSize int
	Timeout   time.Duration
}

// ImportService runs spreadsheet imports into one taxonomy.
type ImportService struct {
	store      repository.CategoryStore
	policy     TaxonomyPolicy
	activities *ActivityService
	cache      CategoryCache
	opts       ImportOptions
}

func NewImportService(
	store repository.CategoryStore,
	policy TaxonomyPolicy,
	activities *ActivityService,
	cache CategoryCache,
	opts ImportOptions,
) *ImportService {
	return &ImportService{
		store:      store,
		policy:     policy,
		activities: activities,
		cache:      cache,
		opts:       opts,
	}
}

// Load parses the file and groups its rows, without touching the store.
func (s *ImportService) Load(r io.Reader, filename string) (*importer.Grouping, error) {
	table, err := importer.ParseFile(r, filename)
	if err != nil {
		return nil, err
	}
	cols := importer.ResolveColumns(table.Header)
	if missing := cols.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, apperr.New(apperr.KindParse, "missing required columns: %s", strings.Join(names, ", "))
	}
	return importer.Group(importer.ExtractRows(table, cols), s.policy.ImportDefaultStatus), nil
}

// Import parses the file and merges it into the taxonomy. On a storage
// failure or timeout the partial summary is returned with the error.
func (s *ImportService) Import(ctx context.Context, actor Actor, r io.Reader, filename string) (*models.ImportSummary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	grouping, err := s.Load(r, filename)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, actor, grouping)
}

// Apply writes an already grouped file.
func (s *ImportService) Apply(ctx context.Context, actor Actor, grouping *importer.Grouping) (*models.ImportSummary, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	summary, err := importer.NewReconciler(s.store, s.opts.BatchSize).Apply(ctx, grouping, actor.UserID)
	if s.cache != nil && summary != nil && summary.Created+summary.Updated > 0 {
		s.cache.Invalidate(context.WithoutCancel(ctx), s.store.Taxonomy())
	}
	if summary != nil {
		s.activities.LogActivity(context.WithoutCancel(ctx), actor, models.ActivityTaxonomyImported, s.store.Taxonomy(), nil,
			fmt.Sprintf("Imported %d categories (%d created, %d updated, %d rows skipped)",
				summary.Created+summary.Updated, summary.Created, summary.Updated, summary.Skipped))
	}
	if err != nil {
		return summary, err
	}

	logrus.WithFields(logrus.Fields{
		"taxonomy": s.store.Taxonomy(),
		"created":  summary.Created,
		"updated":  summary.Updated,
		"skipped":  summary.Skipped,
	}).Info("Spreadsheet imported")
	return summary, nil
}

// Analyze reports how the file's header resolves and previews its rows.
func (s *ImportService) Analyze(r io.Reader, filename string) (*importer.Analysis, error) {
	table, err := importer.ParseFile(r, filename)
	if err != nil {
		return nil, err
	}
	return importer.Analyze(table, analyzeSampleRows), nil
}
