package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lsh-hdc/build-tools/pkg"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuilds the extension whenever its sources change",
	Long: `Runs modd (from the workspace .tools directory, see install-tools) with the
repository's modd.conf so edits trigger a build-ext run automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := pkg.GetProjectRoot()
		if err != nil {
			return err
		}

		moddBin := filepath.Join(root, ".tools", "modd")
		if runtime.GOOS == "windows" {
			moddBin += ".exe"
		}

		if _, err := os.Stat(moddBin); err != nil {
			return eris.Wrap(err, "modd not found; run \"tool install-tools\" first")
		}

		modd := exec.Command(moddBin, "--file", filepath.Join(root, "modd.conf"))
		modd.Dir = root
		modd.Stdin = os.Stdin
		modd.Stdout = os.Stdout
		modd.Stderr = os.Stderr
		return modd.Run()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
