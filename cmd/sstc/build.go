package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tangzhangming/sstc/internal/config"
	"github.com/tangzhangming/sstc/internal/errors"
	"github.com/tangzhangming/sstc/internal/jvmgen"
	"github.com/tangzhangming/sstc/internal/loader"
)

type buildFlags struct {
	configPath  string
	debug       bool
	outDir      string
	lineNumbers bool
}

func newBuildCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build <file.json|file.cbor>...",
		Short: "Generate class files from class documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			return runBuild(cmd, cfg, args)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to sstc.toml (default: search upwards from the first input)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "dump the constant pool and constructor bytecode")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "output directory for class files")
	cmd.Flags().BoolVar(&flags.lineNumbers, "line-numbers", false, "emit a LineNumberTable for the constructor")
	return cmd
}

// resolveConfig 加载配置文件并应用命令行覆盖
func resolveConfig(cmd *cobra.Command, flags *buildFlags, firstInput string) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.Find(firstInput)
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("debug") {
		cfg.Debug = flags.debug
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = flags.outDir
	}
	if cmd.Flags().Changed("line-numbers") {
		cfg.LineNumbers = flags.lineNumbers
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, cfg *config.Config, files []string) error {
	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := cfg.GeneratorOptions()
	opts.Logger = log
	opts.DebugOut = cmd.ErrOrStderr()
	gen := jvmgen.NewGenerator(opts)

	reporter := errors.NewReporter(cmd.ErrOrStderr())
	var result *multierror.Error
	for _, file := range files {
		out, err := buildOne(gen, cfg, file)
		if err != nil {
			log.Debug("build failed", zap.String("input", file), zap.Error(err))
			reporter.Report(err)
			result = multierror.Append(result, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", file, out.Path)
	}

	if result.ErrorOrNil() != nil {
		reporter.Summary()
		return errReported
	}
	return nil
}

func buildOne(gen *jvmgen.Generator, cfg *config.Config, file string) (*jvmgen.Output, error) {
	class, err := loader.LoadFile(file)
	if err != nil {
		return nil, err
	}
	return gen.CompileToFile(class, cfg.OutputDir, cfg.ClassExtension)
}
