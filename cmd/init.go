package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/itrunner/internal/config"
	"github.com/Lumos-Labs-HQ/itrunner/template"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an itrunner project",
	Long:  `Create itrunner.config.json, a starter model schema and a .env file with DATABASE_URL.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		return initializeProject(".", dbType)
	},
}

func init() {
	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
}

// initializeProject writes the starter files into dir. Existing files are
// kept; an existing .env only gains DATABASE_URL when it lacks it.
func initializeProject(dir string, dbType template.DatabaseType) error {
	tmpl := template.NewProjectTemplate(dbType)

	for _, d := range tmpl.GetDirectoryStructure() {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	cfgContent, err := tmpl.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	files := map[string]string{
		config.FileName:  cfgContent,
		"db/schema.yaml": tmpl.GetSchema(),
	}

	var skipped []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			skipped = append(skipped, name)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", name, err)
		}
	}

	if err := handleEnvFile(filepath.Join(dir, ".env"), tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	color.Green("✅ Initialized itrunner project with %s database support", dbType)
	fmt.Println()
	fmt.Println("📝 Files:")
	fmt.Printf("   %s\n", config.FileName)
	fmt.Println("   db/schema.yaml")
	for _, name := range skipped {
		color.Cyan("ℹ️  Skipped %s (already exists)", name)
	}

	fmt.Println()
	fmt.Println("🚀 Next steps:")
	fmt.Println("   itrunner graph      # Inspect insertion order")
	fmt.Println("   itrunner generate   # Generate the fixture engine into fixtures/")
	return nil
}

func handleEnvFile(envPath, defaultEnvContent string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}
	existingStr += "\n# Added by itrunner\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
