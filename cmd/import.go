package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/itrunner/internal/database"
	"github.com/Lumos-Labs-HQ/itrunner/internal/graph"
	"github.com/Lumos-Labs-HQ/itrunner/internal/schema"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
)

var (
	importOut    string
	importModels []string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Dump the current database state as a record set",
	Long: `
Read every table of the configured schema from the database and write the
rows as a YAML record set keyed by model name. The output can be loaded into
the generated RecordSet type and used as the initial or expected state of a
test case.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		models, _, err := schema.Load(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to load schema: %w", err)
		}
		g, err := graph.Build(models)
		if err != nil {
			return err
		}

		url, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}
		db, err := database.OpenFixtureDB(ctx, cfg.Database.Provider, cfg.Database.Driver, url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		rs, err := importRecords(ctx, db, g, importModels)
		if err != nil {
			return err
		}

		if importOut == "" {
			return writeRecordSet(cmd.OutOrStdout(), rs)
		}
		if err := writeRecordSetFile(importOut, rs); err != nil {
			return err
		}
		color.Green("✅ Imported %d models into %s", len(rs), importOut)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importOut, "out", "o", "", "Write the record set to a file instead of stdout")
	importCmd.Flags().StringSliceVarP(&importModels, "model", "m", nil, "Only import the given models")
}

// importRecords reads all rows of the selected models concurrently, ordered
// by primary key.
func importRecords(ctx context.Context, db fixture.DB, g *graph.Graph, only []string) (map[string][]fixture.Record, error) {
	for _, name := range only {
		if _, ok := g.Model(name); !ok {
			return nil, fmt.Errorf("unknown model: %s", name)
		}
	}

	var selected []*graph.Model
	for _, m := range g.Models {
		if len(only) == 0 || slices.Contains(only, m.Name) {
			selected = append(selected, m)
		}
	}

	results := make([][]fixture.Record, len(selected))
	eg, gctx := errgroup.WithContext(ctx)
	for i, m := range selected {
		eg.Go(func() error {
			records, err := db.FindAll(gctx, m.DBName, m.PrimaryKey()...)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", m.Name, err)
			}
			results[i] = records
			debugf("read %d rows from %s", len(records), m.DBName)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	rs := make(map[string][]fixture.Record, len(selected))
	for i, m := range selected {
		rs[m.Name] = results[i]
	}
	return rs, nil
}

func writeRecordSet(w io.Writer, rs map[string][]fixture.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return fmt.Errorf("failed to encode record set: %w", err)
	}
	return enc.Close()
}

func writeRecordSetFile(path string, rs map[string][]fixture.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return writeRecordSet(f, rs)
}
