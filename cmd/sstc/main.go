package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tangzhangming/sstc/internal/errors"
)

const (
	Version = "0.1.0"
)

// errReported 错误已经通过 Reporter 输出，main 只需设置退出码
var errReported = fmt.Errorf("errors reported")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sstc",
		Short:         "JavaSST class file backend",
		Long:          "sstc turns a resolved JavaSST class document into a JVM class file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newBuildCmd(),
		newInspectCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sstc version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sstc version %s\n", Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if err != errReported {
			fmt.Fprint(os.Stderr, errors.NewFormatter().FormatError(err))
		}
		os.Exit(1)
	}
}
