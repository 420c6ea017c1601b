package cmd

import (
	"github.com/spf13/cobra"

	taskcmd "github.com/lsh-hdc/build-tools/pkg/buildsys/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "tool",
	Short: "Build tools for lsh-hdc",
	Long: `This command bundles the tools that are used to build the lsh-hdc extension
and to run its Monte-Carlo experiments. This includes a generic task runner,
shortcuts for the common build steps and a dependency fetcher.`,
}

func init() {
	rootCmd.AddCommand(taskcmd.RootCmd)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
