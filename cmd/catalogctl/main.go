// Command catalogctl runs administrative tasks against the catalog store:
// spreadsheet imports, header analysis, clearing a taxonomy and promoting
// accounts to admin.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dias221467/Message_Catalog/internal/cache"
	"github.com/Dias221467/Message_Catalog/internal/config"
	"github.com/Dias221467/Message_Catalog/internal/database"
	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	stores   *database.Stores
	redis    *redis.Client
	taxonomy models.Taxonomy
	out      io.Writer
}

func (a *app) policy() services.TaxonomyPolicy {
	return services.NewTaxonomyPolicy(a.taxonomy, a.cfg.ImportDefault(a.taxonomy))
}

func (a *app) cache() services.CategoryCache {
	if a.redis == nil {
		return nil
	}
	return cache.NewCategoryCache(a.redis, a.cfg.CacheTTL)
}

func (a *app) categoryService() *services.CategoryService {
	store := a.stores.Categories[a.taxonomy]
	activities := services.NewActivityService(a.stores.Activities)
	return services.NewCategoryService(store, a.policy(), nil, activities, a.cache())
}

func (a *app) importService() *services.ImportService {
	store := a.stores.Categories[a.taxonomy]
	activities := services.NewActivityService(a.stores.Activities)
	return services.NewImportService(store, a.policy(), activities, a.cache(), services.ImportOptions{
		BatchSize: a.cfg.ImportBatchSize,
		Timeout:   a.cfg.ImportTimeout,
	})
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	var taxonomy string

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Administer the message catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			t, err := models.ParseTaxonomy(taxonomy)
			if err != nil {
				return err
			}
			a.taxonomy = t

			a.cfg = config.LoadConfig()
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger.InitLogger(a.cfg.LogLevel)

			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			a.stores, err = database.OpenStores(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			if a.cfg.RedisAddr != "" {
				if client, err := cache.Connect(a.cfg.RedisAddr, a.cfg.RedisPassword); err == nil {
					a.redis = client
				} else {
					logger.Log.WithError(err).Warn("Redis unavailable, cached listings will expire on their own")
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.redis != nil {
				a.redis.Close()
			}
			if a.stores != nil {
				return a.stores.Close(context.Background())
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&taxonomy, "taxonomy", "default", "Taxonomy to operate on: default or english")

	root.AddCommand(
		newImportCmd(a),
		newAnalyzeCmd(a),
		newClearCmd(a),
		newPromoteCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
