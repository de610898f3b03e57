package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/itrunner/internal/codegen"
	"github.com/Lumos-Labs-HQ/itrunner/internal/config"
	"github.com/Lumos-Labs-HQ/itrunner/internal/gencommon"
	"github.com/Lumos-Labs-HQ/itrunner/internal/schema"
)

var forceGenerate bool

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate the fixture engine",
	Long: `
Generate the fixture engine for the configured schema.

This command will:
1. Load models from the schema source in itrunner.config.json
2. Order them into rank groups by foreign-key dependencies
3. Write engine_gen.go (and runner_gen.go) to gen.out

Files whose content did not change are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		models, schemaFiles, err := schema.Load(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to load schema: %w", err)
		}
		debugf("loaded %d models from %s", len(models), schemaSource(cfg))

		cache := gencommon.NewGenerationCache(cfg.Gen.Out)
		if forceGenerate {
			cache.Clear()
		}
		var checksum string
		if len(schemaFiles) > 0 {
			checksum, err = gencommon.ComputeSchemaChecksum(schemaFiles, generateSettings(cfg)...)
			if err != nil {
				return fmt.Errorf("failed to hash schema: %w", err)
			}
			if !cache.SchemaChanged(checksum) && cache.UpToDate() {
				color.Cyan("ℹ️  Schema unchanged, generated files are up to date")
				return nil
			}
		}

		files, plan, err := codegen.Generate(models, codegen.Options{
			Package:       cfg.Gen.Package,
			Source:        schemaSource(cfg),
			Runner:        cfg.Gen.Runner,
			DefaultSeeder: cfg.Gen.DefaultSeeder,
		})
		if err != nil {
			return fmt.Errorf("failed to generate engine: %w", err)
		}

		for i, group := range plan.InsertGroups {
			names := make([]string, len(group))
			for j, m := range group {
				names[j] = m.Name
			}
			debugf("rank %d: %s", i, strings.Join(names, ", "))
		}

		removed, err := codegen.Prune(cfg.Gen.Out, files, cache)
		if err != nil {
			return fmt.Errorf("failed to remove stale files: %w", err)
		}
		for _, name := range removed {
			color.Yellow("   removed %s", name)
		}
		if checksum != "" {
			cache.UpdateSchemaChecksum(checksum)
		}

		written, err := codegen.Write(cfg.Gen.Out, files, cache)
		if err != nil {
			return fmt.Errorf("failed to write generated files: %w", err)
		}

		if len(written) == 0 && len(removed) == 0 {
			color.Cyan("ℹ️  Generated files are up to date")
			return nil
		}
		for _, path := range written {
			fmt.Printf("   %s\n", path)
		}
		color.Green("🎉 Generated fixture engine for %d models in %d rank groups", len(plan.Models), len(plan.InsertGroups))
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVarP(&forceGenerate, "force", "f", false, "Rewrite files even when unchanged")
}

// generateSettings lists the config values that shape the generated files.
func generateSettings(cfg *config.Config) []string {
	return []string{
		"version=" + Version,
		"source=" + schemaSource(cfg),
		"package=" + cfg.Gen.Package,
		"runner=" + strconv.FormatBool(cfg.Gen.Runner),
		"default_seeder=" + strconv.FormatBool(cfg.Gen.DefaultSeeder),
	}
}

func schemaSource(cfg *config.Config) string {
	if cfg.Schema.Source == config.SourceDatabase {
		return cfg.Database.Provider + " database"
	}
	return filepath.ToSlash(cfg.Schema.Path)
}
