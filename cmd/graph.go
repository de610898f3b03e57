package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/itrunner/internal/graph"
	"github.com/Lumos-Labs-HQ/itrunner/internal/schema"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the rank groups of the schema",
	Long: `
Print the models of the configured schema grouped by rank. Rank 0 holds
models without dependencies; every other model only references models of
lower ranks. Records are inserted rank by rank and deleted in reverse.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		models, _, err := schema.Load(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to load schema: %w", err)
		}

		out, err := buildGraphOutput(models)
		if err != nil {
			return err
		}
		return writeGraph(cmd.OutOrStdout(), out, graphFormat)
	},
}

func init() {
	graphCmd.Flags().StringVar(&graphFormat, "format", "text", "Output format: text, json or yaml")
}

type graphOutput struct {
	Groups []groupOutput `json:"groups" yaml:"groups"`
}

type groupOutput struct {
	Rank   int           `json:"rank" yaml:"rank"`
	Models []modelOutput `json:"models" yaml:"models"`
}

type modelOutput struct {
	Name      string   `json:"name" yaml:"name"`
	Table     string   `json:"table" yaml:"table"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

func buildGraphOutput(models []types.ModelDescriptor) (*graphOutput, error) {
	g, err := graph.Build(models)
	if err != nil {
		return nil, err
	}
	groups, err := graph.Stratify(g)
	if err != nil {
		return nil, err
	}

	out := &graphOutput{Groups: make([]groupOutput, 0, len(groups))}
	for _, grp := range groups {
		group := groupOutput{Rank: grp.Rank}
		for _, m := range grp.Models {
			mo := modelOutput{Name: m.Name, Table: m.DBName}
			for _, rel := range m.Dependencies() {
				if !slices.Contains(mo.DependsOn, rel.To.Name) {
					mo.DependsOn = append(mo.DependsOn, rel.To.Name)
				}
			}
			group.Models = append(group.Models, mo)
		}
		out.Groups = append(out.Groups, group)
	}
	return out, nil
}

func writeGraph(w io.Writer, out *graphOutput, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	case "text":
		rank := color.New(color.FgCyan, color.Bold)
		for _, group := range out.Groups {
			rank.Fprintf(w, "rank %d\n", group.Rank)
			for _, m := range group.Models {
				if len(m.DependsOn) == 0 {
					fmt.Fprintf(w, "  %s\n", m.Name)
					continue
				}
				fmt.Fprintf(w, "  %s -> %s\n", m.Name, strings.Join(m.DependsOn, ", "))
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
