package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lsh-hdc/build-tools/pkg"
	"github.com/lsh-hdc/build-tools/pkg/buildsys"
	taskcmd "github.com/lsh-hdc/build-tools/pkg/buildsys/cmd"
)

// runTasks loads the task list and executes the given tasks in order.
// Returns the wall-clock duration of the final task.
func runTasks(cmd *cobra.Command, taskNames []string) (time.Duration, error) {
	procs, err := cmd.Flags().GetInt("procs")
	if err != nil {
		return 0, err
	}

	dryRun, err := cmd.Flags().GetBool("dry")
	if err != nil {
		return 0, err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return 0, err
	}

	jobs := pkg.JobCount(procs)
	logger := taskcmd.NewLogger()
	ctx := buildsys.WithLogger(context.Background(), &logger)

	taskList, projectRoot, err := taskcmd.LoadTasks(ctx, map[string]string{}, jobs, false)
	if err != nil {
		return 0, err
	}

	for _, name := range taskNames {
		if _, ok := taskList[name]; !ok {
			return 0, eris.Errorf("task %s not found; check tasks.star", name)
		}
	}

	logger.Info().Int("jobs", jobs).Msgf("running with %d parallel jobs", jobs)

	var lastStart time.Time
	for _, name := range taskNames {
		lastStart = time.Now()
		err = buildsys.RunTask(ctx, projectRoot, name, taskList, dryRun, force)
		if err != nil {
			return 0, eris.Wrapf(err, "failed task %s", name)
		}
	}

	return time.Since(lastStart), nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("procs", "j", 0, "number of parallel jobs (default: NUM_PROCS, then MAKEOPTS, then the core count)")
	cmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	cmd.Flags().BoolP("force", "f", false, "always execute, even if the outputs are up to date")
}

var extrasCmd = &cobra.Command{
	Use:   "extras",
	Short: "Builds the optional extras",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runTasks(cmd, []string{"extras"})
		return err
	},
}

var buildExtCmd = &cobra.Command{
	Use:   "build-ext",
	Short: "Builds the C extension in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runTasks(cmd, []string{"build-ext"})
		return err
	},
}

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Builds everything and runs the Monte-Carlo experiment",
	Long: `Runs the extras and build-ext tasks followed by the parallel experiment
task, the same sequence the old shell scripts performed. The duration of the
experiment task itself (not the build steps) is measured and logged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		if output != "" {
			output, err = filepath.Abs(output)
			if err != nil {
				return eris.Wrapf(err, "failed to resolve %s", output)
			}

			// task commands inherit the process environment, so this is
			// the same override the old scripts applied
			err = os.Setenv("EXPERIMENT", output)
			if err != nil {
				return eris.Wrap(err, "failed to override EXPERIMENT")
			}
		}

		elapsed, err := runTasks(cmd, []string{"extras", "build-ext", "experiment"})
		if err != nil {
			return err
		}

		logger := taskcmd.NewLogger()
		logger.Info().
			Dur("elapsed", elapsed).
			Msgf("experiment finished after %s", elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	addRunFlags(extrasCmd)
	addRunFlags(buildExtCmd)
	addRunFlags(experimentCmd)
	experimentCmd.Flags().StringP("output", "o", "", "experiment output directory (exported as EXPERIMENT)")

	rootCmd.AddCommand(extrasCmd)
	rootCmd.AddCommand(buildExtCmd)
	rootCmd.AddCommand(experimentCmd)
}
