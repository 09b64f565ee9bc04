package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/issvm/optimizer"
	"github.com/katalvlaran/issvm/prng"
)

// sparsifierWarmStart is the minimum Iterate calls before the gap
// criterion is consulted; LastGap is 0 until the first real step.
const sparsifierWarmStart = 2

func newOptimizeCmd() *cobra.Command {
	var (
		modelFile string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Iterate a model's optimizer until the gap criterion or iteration cap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			arch, err := loadModel(modelFile)
			if err != nil {
				return err
			}
			_, opt, err := arch.Build()
			if err != nil {
				return err
			}

			rng := prng.NewLaggedFibonacci4(activeCfg.Seed)
			start := opt.Iterations()
			if err := driveOptimizer(opt, rng, activeCfg.Tolerance, activeCfg.MaxIter); err != nil {
				return err
			}

			arch.Capture(opt)
			if err := saveModel(outFile, arch); err != nil {
				return err
			}
			slog.Info("optimization finished",
				"iterations", opt.Iterations()-start,
				"total", opt.Iterations(),
				"normSquared", opt.NormSquared(),
				"bias", opt.Bias(),
				"out", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model file to optimize")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output model file")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// driveOptimizer runs the iterate loop. The Sparsifier stops once its
// last recorded gap falls under tol (after a warm start of at least two
// iterations); every other variant runs to the iteration cap.
func driveOptimizer(opt optimizer.Optimizer, rng prng.Source, tol float64, maxIter int) error {
	sp, isSparsifier := opt.(*optimizer.Sparsifier)
	for i := 0; i < maxIter; i++ {
		if err := opt.Iterate(rng); err != nil {
			return err
		}
		if isSparsifier && i+1 >= sparsifierWarmStart && sp.LastGap() < tol {
			break
		}
	}
	return nil
}
