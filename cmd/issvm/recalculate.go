package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newRecalculateCmd() *cobra.Command {
	var (
		modelFile string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild the response vector exactly from alpha, correcting drift",
		RunE: func(cmd *cobra.Command, _ []string) error {
			arch, err := loadModel(modelFile)
			if err != nil {
				return err
			}
			_, opt, err := arch.Build()
			if err != nil {
				return err
			}
			if err := opt.Recalculate(); err != nil {
				return err
			}
			arch.Capture(opt)
			if err := saveModel(outFile, arch); err != nil {
				return err
			}
			slog.Info("responses recalculated", "out", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output model file")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
