package buildsys

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	logger := zerolog.New(ioutil.Discard)
	return WithLogger(context.Background(), &logger)
}

func writeScript(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "tasks.star")
	err := ioutil.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
	return path
}

func TestParseCollectsTasks(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    task(
        "build-ext",
        desc = "builds the extension",
        env = {"SOURCE_DATE_EPOCH": "0"},
        cmds = ["make build_ext -j %d" % JOBS],
    )

    task(
        "experiment",
        desc = "runs the experiment",
        deps = ["build-ext"],
        cmds = ["make experiment -j %d" % JOBS],
    )
`)

	result, err := Parse(testCtx(), script, dir, map[string]string{}, 4)
	require.NoError(t, err)

	tasks := result.Tasks
	require.Len(t, tasks, 2)

	ext := tasks["build-ext"]
	require.NotNil(t, ext)
	assert.Equal(t, "builds the extension", ext.Desc)
	assert.Equal(t, "0", ext.Env["SOURCE_DATE_EPOCH"])
	require.Len(t, ext.Cmds, 1)

	cmd, ok := ext.Cmds[0].(TaskCmdScript)
	require.True(t, ok)
	assert.Equal(t, "make build_ext -j 4", cmd.Content)

	exp := tasks["experiment"]
	require.NotNil(t, exp)
	assert.Equal(t, []string{"build-ext"}, exp.Deps)
}

func TestParseOptions(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
py = option("python", "python", help = "interpreter")

def configure():
    task("which-py", desc = "", cmds = [("echo", py)])
`)

	result, err := RunScript(testCtx(), script, dir, map[string]string{"python": "python3"}, 1, true)
	require.NoError(t, err)

	require.Contains(t, result.Options, "python")
	assert.Equal(t, "python", result.Options["python"].Default())
	assert.Equal(t, "interpreter", result.Options["python"].Help)

	cmd := result.Tasks["which-py"].Cmds[0].(TaskCmdScript)
	assert.Equal(t, "echo python3", cmd.Content)
}

func TestParseAnonymousTasksAreHidden(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    hidden = task(cmds = ["make prep"])
    task("all", desc = "everything", cmds = [hidden])
`)

	result, err := Parse(testCtx(), script, dir, map[string]string{}, 1)
	require.NoError(t, err)

	// only the named task shows up in the list
	tasks := result.Tasks
	require.Len(t, tasks, 1)
	require.Contains(t, tasks, "all")

	ref, ok := tasks["all"].Cmds[0].(TaskCmdTaskRef)
	require.True(t, ok)
	assert.True(t, ref.Task.Hidden)
}

func TestParseRejectsConfigureTaskName(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    task("configure", desc = "", cmds = ["true"])
`)

	_, err = Parse(testCtx(), script, dir, map[string]string{}, 1)
	assert.Error(t, err)
}

func TestParseMissingConfigure(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `x = 1`)

	_, err = Parse(testCtx(), script, dir, map[string]string{}, 1)
	assert.Error(t, err)
}

func TestSetenvAppliesToTasks(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    setenv("EXPERIMENT", "montecarlo/run-7")
    task("experiment", desc = "", cmds = ["make experiment"])
    task("pinned", desc = "", env = {"EXPERIMENT": "elsewhere"}, cmds = ["make experiment"])
`)

	result, err := Parse(testCtx(), script, dir, map[string]string{}, 1)
	require.NoError(t, err)

	tasks := result.Tasks
	assert.Equal(t, "montecarlo/run-7", tasks["experiment"].Env["EXPERIMENT"])
	// an explicit task env entry wins over the setenv override
	assert.Equal(t, "elsewhere", tasks["pinned"].Env["EXPERIMENT"])
}

func TestParseRecordsEnvReads(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	old, present := os.LookupEnv("EXPERIMENT")
	defer func() {
		if present {
			os.Setenv("EXPERIMENT", old)
		} else {
			os.Unsetenv("EXPERIMENT")
		}
	}()
	os.Setenv("EXPERIMENT", "montecarlo/run-3")

	script := writeScript(t, dir, `
def configure():
    experiment = getenv("EXPERIMENT")
    setenv("LOCAL", "value")
    local = getenv("LOCAL")
    task("experiment", desc = "", env = {"EXPERIMENT": experiment}, cmds = ["make experiment"])
`)

	result, err := Parse(testCtx(), script, dir, map[string]string{}, 1)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"EXPERIMENT": "montecarlo/run-3"}, result.EnvReads)
	assert.Equal(t, "montecarlo/run-3", result.Tasks["experiment"].Env["EXPERIMENT"])
}
