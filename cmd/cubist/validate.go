package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cubist-dev/cubist/internal/cli"
	"github.com/cubist-dev/cubist/pkg/model"
	"github.com/cubist-dev/cubist/pkg/parser"
)

var (
	validateModel   string
	validateLenient bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a model document",
	Long: `Validate a model document by building the full model from it.

All dimensions are registered (resolving templates in declaration order)
and all cubes are built, so every structural error the model can produce
is surfaced here: duplicate names, unknown templates, template cycles,
unknown dimensions, ambiguous join aliases, and invalid aggregates.`,
	Example: `  # Validate a specific model file
  cubist validate --model models/sales.yaml

  # Validate using config file settings
  cubist validate

  # Report all cube errors instead of stopping at the first
  cubist validate --lenient`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath := resolveString(validateModel, cfg.Model)

		if _, err := os.Stat(modelPath); err != nil {
			return cli.ModelError(fmt.Sprintf("model not found: %s", modelPath), nil)
		}

		m, err := parser.LoadModel(modelPath, model.BuildOptions{
			Lenient: validateLenient || cfg.Lenient,
		})
		if err != nil && m == nil {
			return cli.ModelError("building model", err)
		}

		if !quiet {
			fmt.Printf("Model is valid. Found %d cubes, %d dimensions:\n",
				len(m.CubeNames()), len(m.DimensionNames()))
			for _, name := range m.CubeNames() {
				c, _ := m.Cube(name)
				fmt.Printf("  - %s (%d dimensions, %d measures)\n",
					name, len(c.Dimensions()), len(c.Measures()))
			}
		}

		if err != nil {
			// Lenient build: model is usable but some cubes were skipped.
			fmt.Fprintf(os.Stderr, "\nSkipped cubes:\n%v\n", err)
			return cli.ModelError("model has invalid cubes", nil)
		}

		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateModel, "model", "", "path to model document")
	validateCmd.Flags().BoolVar(&validateLenient, "lenient", false, "skip invalid cubes instead of failing")
}
