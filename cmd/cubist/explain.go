package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cubist-dev/cubist/internal/cli"
	"github.com/cubist-dev/cubist/pkg/model"
	"github.com/cubist-dev/cubist/pkg/parser"
)

var explainModel string

var explainCmd = &cobra.Command{
	Use:   "explain [cube]",
	Short: "Show a cube's resolved structure",
	Long: `Show a cube's resolved structure: fact table, dimensions with their
levels, the join plan with effective names and methods, and the
aggregate plan.

Without arguments, lists all cubes and dimensions in the model.`,
	Example: `  # List everything in the model
  cubist explain

  # Show the resolved structure of one cube
  cubist explain sales`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath := resolveString(explainModel, cfg.Model)

		m, err := parser.LoadModel(modelPath, model.BuildOptions{Lenient: cfg.Lenient})
		if err != nil && m == nil {
			return cli.ModelError("building model", err)
		}

		if len(args) == 0 {
			printModelSummary(m)
			return nil
		}

		c, err := m.Cube(args[0])
		if err != nil {
			return cli.ModelError(fmt.Sprintf("cube %q", args[0]), err)
		}
		printCube(c)
		return nil
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainModel, "model", "", "path to model document")
}

func printModelSummary(m *model.Model) {
	fmt.Println("Cubes:")
	for _, name := range m.CubeNames() {
		c, _ := m.Cube(name)
		fmt.Printf("  %s (fact: %s)\n", name, c.FactTable())
	}
	fmt.Println("Dimensions:")
	for _, name := range m.DimensionNames() {
		d, _ := m.Dimension(name)
		fmt.Printf("  %s (levels: %s)\n", name, strings.Join(d.LevelNames(), ", "))
	}
}

func printCube(c *model.Cube) {
	fmt.Printf("Cube: %s\n", c.Name())
	fmt.Printf("Fact: %s\n", c.FactTable())

	fmt.Println("\nDimensions:")
	for _, d := range c.Dimensions() {
		fmt.Printf("  %s (levels: %s)\n", d.Name(), strings.Join(d.LevelNames(), ", "))
	}

	if len(c.Measures()) > 0 {
		fmt.Println("\nMeasures:")
		for _, meas := range c.Measures() {
			fmt.Printf("  %s\n", meas.Name)
		}
	}

	if len(c.Joins()) > 0 {
		fmt.Println("\nJoin plan:")
		for _, j := range c.Joins() {
			fmt.Printf("  %-10s %s.%s -> %s.%s AS %s\n",
				string(j.Method), j.MasterTable, j.MasterColumn,
				j.DetailTable, j.DetailColumn, j.Name)
		}
	}

	if len(c.Aggregates()) > 0 {
		fmt.Println("\nAggregate plan:")
		for _, a := range c.Aggregates() {
			if a.Measure == "" {
				fmt.Printf("  %s = %s(*)\n", a.Name, string(a.Function))
			} else {
				fmt.Printf("  %s = %s(%s)\n", a.Name, string(a.Function), a.Measure)
			}
		}
	}
}
