// Package cmd implements the CLI surface of the buildsys package
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lsh-hdc/build-tools/pkg"
	"github.com/lsh-hdc/build-tools/pkg/buildsys"
)

const taskFileName = "tasks.star"
const cacheFileName = ".tool-cache"

// NewLogger builds the zerolog logger used by all task-running commands.
// TOOL_DEBUG enables debug output.
func NewLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("TOOL_DEBUG") != "" {
		level = zerolog.DebugLevel
	}

	return zerolog.New(NewConsoleWriter()).Level(level)
}

// FindTaskFile searches for the next tasks.star file, starting in the
// current working directory and walking up.
func FindTaskFile() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", eris.Wrap(err, "failed to retrieve the current working directory")
	}

	path := wd
	for {
		taskPath := filepath.Join(path, taskFileName)
		_, err := os.Stat(taskPath)
		if err == nil {
			taskPath, err = filepath.Rel(wd, taskPath)
			if err != nil {
				return "", eris.Wrap(err, "failed to simplify path")
			}
			return taskPath, nil
		}
		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "failed to check %s", taskPath)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.Errorf("no %s file found", taskFileName)
		}

		path = parent
	}
}

// LoadTasks locates the task file and returns the parsed task list and the
// project root. The parsed list is cached next to the task file; a stale or
// unreadable cache silently falls back to re-parsing.
func LoadTasks(ctx context.Context, options map[string]string, jobs int, noCache bool) (buildsys.TaskList, string, error) {
	taskPath, err := FindTaskFile()
	if err != nil {
		return nil, "", err
	}

	projectRoot := filepath.Dir(taskPath)
	cachePath := filepath.Join(projectRoot, cacheFileName)

	if !noCache {
		taskList, ok, err := buildsys.ReadCache(cachePath, taskPath, options, jobs)
		if err == nil && ok {
			return taskList, projectRoot, nil
		}
	}

	result, err := buildsys.Parse(ctx, taskPath, projectRoot, options, jobs)
	if err != nil {
		return nil, "", eris.Wrap(err, "failed to parse tasks")
	}

	if !noCache {
		// a failed cache write only costs the next invocation a re-parse
		_ = buildsys.WriteCache(cachePath, taskPath, options, jobs, result)
	}

	return result.Tasks, projectRoot, nil
}

var RootCmd = &cobra.Command{
	Use:   "task",
	Short: "Generic task runner",
	Long:  `This command parses the first tasks.star file it finds and executes the given tasks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		taskArgs := make([]string, 0)
		options := make(map[string]string)
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}

		for _, part := range args {
			pos := strings.Index(part, "=")
			if pos > -1 {
				options[part[:pos]] = part[pos+1:]
			} else {
				taskArgs = append(taskArgs, part)
			}
		}

		logger := NewLogger()
		ctx := buildsys.WithLogger(context.Background(), &logger)

		taskList, projectRoot, err := LoadTasks(ctx, options, pkg.JobCount(0), noCache)
		if err != nil {
			return err
		}

		for _, name := range taskArgs {
			_, ok := taskList[name]
			if !ok {
				return eris.Errorf("task %s not found", name)
			}

			err = buildsys.RunTask(ctx, projectRoot, name, taskList, dryRun, force)
			if err != nil {
				return eris.Wrapf(err, "failed task %s", name)
			}
		}

		if len(taskArgs) == 0 {
			fmt.Println("Available tasks:")
			maxNameLen := 0
			sortedNames := make([]string, 0)
			for _, task := range taskList {
				nameLen := len(task.Short)
				if nameLen > maxNameLen {
					maxNameLen = nameLen
				}

				sortedNames = append(sortedNames, task.Short)
			}

			sort.Strings(sortedNames)

			lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+3)
			for _, name := range sortedNames {
				fmt.Printf(lineFmt, name+":", taskList[name].Desc)
			}
		}

		return nil
	},
}

func init() {
	RootCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	RootCmd.Flags().BoolP("force", "f", false, "force build; always execute the passed tasks even if they don't have to run")
	RootCmd.Flags().Bool("no-cache", false, "always re-evaluate the task file")
}
