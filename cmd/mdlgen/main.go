// mdlgen generates MDL modules from shading node definition documents.
//
// Usage:
//
//	mdlgen generate nodes.hcl [more.hcl ...] [-o module.mdl] [--mdl-version 1.8]
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/mdlgen/gen"
	"github.com/gogpu/mdlgen/hcldoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	mdlVersion string
	outputPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "mdlgen",
	Short:         "MDL source generator for shading node definitions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <document.hcl> [more documents...]",
	Short: "Generate an MDL module from node definition documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	version := gen.VersionLatest
	if mdlVersion != "" {
		var err error
		version, err = gen.ParseVersion(mdlVersion)
		if err != nil {
			return err
		}
	}
	doc, err := hcldoc.LoadFiles(args...)
	if err != nil {
		return err
	}
	logger.Debug("document loaded",
		zap.Int("nodedefs", len(doc.NodeDefs())),
		zap.Int("implementations", len(doc.Implementations())))

	g := gen.NewGenerator()
	ctx := gen.NewContext(g, gen.WithVersion(version), gen.WithLogger(logger))
	stage, err := g.GenerateModule(doc, ctx)
	if err != nil {
		return err
	}
	if outputPath == "" {
		_, err = os.Stdout.Write(stage.Bytes())
		return err
	}
	if err := os.WriteFile(outputPath, stage.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Info("module written",
		zap.String("path", outputPath),
		zap.String("mdl_version", version.String()))
	return nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	generateCmd.Flags().StringVar(&mdlVersion, "mdl-version", "", "targeted MDL version (default latest)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(generateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
