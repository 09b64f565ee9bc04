package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/issvm/dataset"
	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/model"
	"github.com/katalvlaran/issvm/vector"
)

func newInitCmd() *cobra.Command {
	var (
		trainFile   string
		validFile   string
		outFile     string
		kernelName  string
		kernelParam []float64
		algorithm   string
		algoParams  []float64
		biased      bool
		predictions string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Load a dataset, construct a kernel and optimizer, write a fresh model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			vectors, labels, trainingSize, err := loadDatasets(trainFile, validFile)
			if err != nil {
				return err
			}

			var kind kernel.Kind
			opts := []kernel.Option{kernel.WithCacheSize(activeCfg.CacheSize)}
			switch kernelName {
			case model.KernelLinear:
				kind = kernel.Linear
				if len(kernelParam) != 0 {
					return fmt.Errorf("linear kernel takes no -K parameters")
				}
			case model.KernelGaussian:
				kind = kernel.Gaussian
				if len(kernelParam) != 1 {
					return fmt.Errorf("gaussian kernel wants -K gamma")
				}
				opts = append(opts, kernel.WithGamma(kernelParam[0]))
			default:
				return fmt.Errorf("unknown kernel %q", kernelName)
			}

			eng, err := kernel.New(vectors, labels, trainingSize, kind, opts...)
			if err != nil {
				return err
			}

			spec := model.OptimizerSpec{
				Name:   algorithm,
				Biased: biased,
				Params: algoParams,
			}
			if algorithm == model.OptSparsifier {
				if predictions == "" {
					return fmt.Errorf("sparsifier requires --predictions")
				}
				f, err := os.Open(predictions)
				if err != nil {
					return fmt.Errorf("open %s: %w", predictions, err)
				}
				target, perr := dataset.LoadPredictions(f, trainingSize)
				_ = f.Close()
				if perr != nil {
					return perr
				}
				spec.Target = target
			}

			opt, err := model.BuildOptimizer(eng, spec)
			if err != nil {
				return err
			}

			arch := model.New(eng, spec)
			arch.Capture(opt)
			if err := saveModel(outFile, arch); err != nil {
				return err
			}
			slog.Info("model initialized",
				"training", trainingSize,
				"validation", len(vectors)-trainingSize,
				"kernel", kernelName,
				"algorithm", algorithm,
				"biased", biased,
				"out", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&trainFile, "train", "f", "", "Training dataset file")
	cmd.Flags().StringVarP(&validFile, "valid", "v", "", "Optional validation dataset file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output model file")
	cmd.Flags().StringVarP(&kernelName, "kernel", "k", model.KernelLinear, "Kernel (linear|gaussian)")
	cmd.Flags().Float64SliceVarP(&kernelParam, "kernel-params", "K", nil, "Kernel parameters (gaussian: gamma)")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Optimizer (smo|sbp|perceptron|sparsifier)")
	cmd.Flags().Float64SliceVarP(&algoParams, "algorithm-params", "A", nil, "Optimizer parameters (smo: lambda; perceptron: mu; sbp: nu; sparsifier: wSquared,eta,epsilon)")
	cmd.Flags().BoolVarP(&biased, "biased", "b", false, "Use the biased (bias-carrying) variant")
	cmd.Flags().StringVarP(&predictions, "predictions", "p", "", "Teacher prediction file (sparsifier only)")
	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("algorithm")

	return cmd
}

// loadDatasets reads the training file and the optional validation
// file, returning the concatenated vectors/labels and the training
// count T.
func loadDatasets(trainFile, validFile string) ([]vector.Vector, []float64, int, error) {
	f, err := os.Open(trainFile)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("open %s: %w", trainFile, err)
	}
	vectors, labels, err := dataset.Load(f)
	_ = f.Close()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", trainFile, err)
	}
	trainingSize := len(vectors)

	if validFile != "" {
		vf, err := os.Open(validFile)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("open %s: %w", validFile, err)
		}
		vv, vl, err := dataset.Load(vf)
		_ = vf.Close()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%s: %w", validFile, err)
		}
		vectors = append(vectors, vv...)
		labels = append(labels, vl...)
	}
	return vectors, labels, trainingSize, nil
}

// saveModel writes arch to path, honoring the shared --compress flag.
func saveModel(path string, arch *model.Archive) error {
	f, closeFn, err := openOut(path)
	if err != nil {
		return err
	}
	if err := model.Save(f, arch, activeCfg.Compress); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

// loadModel reads the archive at path.
func loadModel(path string) (*model.Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return model.Load(f)
}
