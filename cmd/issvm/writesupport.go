package main

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/issvm/dataset"
)

func newWriteSupportCmd() *cobra.Command {
	var (
		modelFile string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "write-support",
		Short: "Write the support set as `bias alpha featureVector` lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			arch, err := loadModel(modelFile)
			if err != nil {
				return err
			}
			eng, opt, err := arch.Build()
			if err != nil {
				return err
			}

			out, closeFn, err := openOut(outFile)
			if err != nil {
				return err
			}
			if err := dataset.WriteSupport(out, opt, eng); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "-", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}
