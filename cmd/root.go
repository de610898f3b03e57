package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lumos-Labs-HQ/itrunner/internal/config"
)

var (
	cfgFile string
	verbose bool
	Version = "0.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════╗",
		"║   ██╗████████╗██████╗ ██╗   ██╗███╗   ██╗        ║",
		"║   ██║╚══██╔══╝██╔══██╗██║   ██║████╗  ██║        ║",
		"║   ██║   ██║   ██████╔╝██║   ██║██╔██╗ ██║        ║",
		"║   ██║   ██║   ██╔══██╗██║   ██║██║╚██╗██║        ║",
		"║   ██║   ██║   ██║  ██║╚██████╔╝██║ ╚████║        ║",
		"║   ╚═╝   ╚═╝   ╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═══╝        ║",
		"║                                                  ║",
		"║   Table-driven integration tests for Go          ║",
		"╚══════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                 ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "itrunner",
	Short: "Generate fixture engines for table-driven database integration tests",
	Long: `
itrunner reads a model schema, orders its models by foreign-key dependencies
and generates a typed fixture engine: apply, import and assert record sets,
auto-complete missing parents and run table-driven test cases against a
real database.

Schema sources:
- YAML or JSON model lists
- SQL DDL files
- .raft model files
- a live database (PostgreSQL, MySQL, SQLite)`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("itrunner version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Print detailed progress")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	rootCmd.AddCommand(generateCmd, graphCmd, importCmd, initCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("itrunner.config")
	}

	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// loadConfig returns the validated configuration for the current directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func debugf(format string, args ...any) {
	if verbose {
		color.New(color.FgHiBlack).Fprintf(os.Stderr, format+"\n", args...)
	}
}
