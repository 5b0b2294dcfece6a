package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/attaboy/strokecheck/internal/form"
	"github.com/attaboy/strokecheck/internal/infra"
	"github.com/attaboy/strokecheck/internal/risk"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "strokectl",
		Short:         "Stroke risk model and database tooling",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newTrainCmd(), newScoreCmd(), newMigrateCmd())
	return root
}

func newTrainCmd() *cobra.Command {
	opts := risk.DefaultTrainOptions()
	var out string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a random forest on the synthetic patient dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Trees < 1 || opts.Samples < 1 {
				return errors.New("--trees and --samples must be positive")
			}
			forest, err := risk.TrainMock(opts)
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			if err := forest.Save(out); err != nil {
				return fmt.Errorf("save %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote forest with %d trees to %s\n", len(forest.Trees), out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&out, "out", "model.json", "output path of the forest artifact")
	f.IntVar(&opts.Trees, "trees", opts.Trees, "number of trees")
	f.IntVar(&opts.Samples, "samples", opts.Samples, "number of synthetic training samples")
	f.IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "maximum tree depth")
	f.IntVar(&opts.MinLeaf, "min-leaf", opts.MinLeaf, "minimum samples per leaf")
	f.Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	return cmd
}

// featureFlags are the score command flags, named after the form keys.
var featureFlags = []struct {
	name  string
	usage string
}{
	{form.FieldAge, "age in years"},
	{form.FieldGlucose, "average glucose level"},
	{form.FieldBMI, "body mass index"},
	{form.FieldGender, "1 male, 0 female"},
	{form.FieldHypertension, "1 if hypertensive"},
	{form.FieldHeartDisease, "1 if heart disease"},
	{form.FieldMarried, "1 if ever married"},
	{form.FieldWork, "0 govt, 1 never worked, 2 private, 3 self-employed, 4 children"},
	{form.FieldResidence, "1 urban, 0 rural"},
	{form.FieldSmoking, "0 unknown, 1 formerly, 2 never, 3 smokes"},
}

func newScoreCmd() *cobra.Command {
	var strategy, modelPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Evaluate one patient and print the result message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{}
			for _, ff := range featureFlags {
				if cmd.Flags().Changed(ff.name) {
					v, _ := cmd.Flags().GetString(ff.name)
					values.Set(ff.name, v)
				}
			}

			f, err := form.NewParser(strict).Parse(values)
			if err != nil {
				return err
			}
			ev, err := risk.New(strategy, modelPath)
			if err != nil {
				return err
			}
			outcome, err := ev.Predict(f)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, outcome.Message())
			if ex, ok := ev.(risk.Explainer); ok {
				score := ex.Explain(f)
				fmt.Fprintf(w, "score: %d (threshold %d)\n", score.Total, risk.RuleThreshold)
				if len(score.Factors) > 0 {
					fmt.Fprintf(w, "factors: %s\n", strings.Join(score.Factors, ", "))
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&strategy, "strategy", risk.StrategyRules, "rules or forest")
	f.StringVar(&modelPath, "model", "model.json", "forest artifact path")
	f.BoolVar(&strict, "strict", false, "reject values outside the documented ranges")
	for _, ff := range featureFlags {
		f.String(ff.name, "", ff.usage)
	}
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply credential store migrations to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.UsePostgres() {
				return errors.New("DATABASE_URL is not set")
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}
			logger := infra.NewLogger(cfg.LogLevel, cfg.LogFormat)
			return infra.RunMigrations(cfg.DatabaseURL, dir, logger)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migration directory (default: search for db/migrations)")
	return cmd
}
