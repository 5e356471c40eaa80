package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/seed"
	"github.com/sells-group/scholarpath/internal/store"
)

var (
	seedFile    string
	seedMigrate bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog (or a catalog file) into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		catalog, err := loadCatalog(seedFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return runSeed(ctx, st, catalog, seedMigrate)
	},
}

// loadCatalog reads path, or returns the built-in demo when path is "".
func loadCatalog(path string) (model.Catalog, error) {
	if path == "" {
		return seed.Demo()
	}
	return seed.LoadFile(path)
}

func runSeed(ctx context.Context, st store.Store, c model.Catalog, migrate bool) error {
	if migrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
	}
	if err := st.Load(ctx, c); err != nil {
		return err
	}
	zap.L().Info("seed complete",
		zap.Int("campuses", len(c.Campuses)),
		zap.Int("majors", len(c.Majors)),
		zap.Int("source_schools", len(c.SourceSchools)),
		zap.Int("datasets", len(c.Datasets)),
		zap.Int("metrics", len(c.Metrics)),
	)
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML catalog to load (default: built-in demo)")
	seedCmd.Flags().BoolVar(&seedMigrate, "migrate", true, "run the schema migration first")
	rootCmd.AddCommand(seedCmd)
}
