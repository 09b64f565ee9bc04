package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/issvm/dataset"
	"github.com/katalvlaran/issvm/prng"
)

func newEvaluateCmd() *cobra.Command {
	var (
		modelFile string
		dataFile  string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Print per-example raw predictions for a dataset (or the model's validation split)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			arch, err := loadModel(modelFile)
			if err != nil {
				return err
			}
			_, opt, err := arch.Build()
			if err != nil {
				return err
			}

			out, closeFn, err := openOut(outFile)
			if err != nil {
				return err
			}
			bw := bufio.NewWriter(out)

			if dataFile == "" {
				// No dataset given: emit the label-signed responses of
				// the model's own validation split.
				for _, v := range opt.GetValidationResponses() {
					if _, err := fmt.Fprintln(bw, formatPrediction(v)); err != nil {
						_ = closeFn()
						return err
					}
				}
			} else {
				f, err := os.Open(dataFile)
				if err != nil {
					_ = closeFn()
					return fmt.Errorf("open %s: %w", dataFile, err)
				}
				vectors, _, err := dataset.Load(f)
				_ = f.Close()
				if err != nil {
					_ = closeFn()
					return fmt.Errorf("%s: %w", dataFile, err)
				}
				rng := prng.NewLaggedFibonacci4(activeCfg.Seed)
				for _, x := range vectors {
					v, err := opt.Evaluate(rng, x)
					if err != nil {
						_ = closeFn()
						return err
					}
					if _, err := fmt.Fprintln(bw, formatPrediction(v)); err != nil {
						_ = closeFn()
						return err
					}
				}
			}

			if err := bw.Flush(); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model file")
	cmd.Flags().StringVarP(&dataFile, "data", "f", "", "Dataset file to evaluate (defaults to the model's validation split)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "-", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func formatPrediction(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
