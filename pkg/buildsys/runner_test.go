package buildsys

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTasks(t *testing.T, script, dir string) TaskList {
	t.Helper()

	result, err := Parse(testCtx(), script, dir, map[string]string{}, 1)
	require.NoError(t, err)
	return result.Tasks
}

func TestRunTaskExecutesCommands(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    task("hello", desc = "", cmds = ["echo hello > marker.txt"])
`)

	tasks := parseTasks(t, script, dir)

	err = RunTask(testCtx(), dir, "hello", tasks, false, false)
	require.NoError(t, err)

	content, err := ioutil.ReadFile(filepath.Join(dir, "marker.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}

func TestRunTaskDryRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    task("hello", desc = "", cmds = ["echo hello > marker.txt"])
`)

	tasks := parseTasks(t, script, dir)

	err = RunTask(testCtx(), dir, "hello", tasks, true, false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "marker.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunTaskDependencyOrder(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    task("first", desc = "", cmds = ["echo first > order.txt"])
    task("second", desc = "", deps = ["first"], cmds = ["echo second >> order.txt"])
`)

	tasks := parseTasks(t, script, dir)

	err = RunTask(testCtx(), dir, "second", tasks, false, false)
	require.NoError(t, err)

	content, err := ioutil.ReadFile(filepath.Join(dir, "order.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(content))
}

func TestRunTaskUnknownTask(t *testing.T) {
	err := RunTask(testCtx(), ".", "nope", TaskList{}, false, false)
	assert.Error(t, err)
}

func TestRunTaskDetectsRecursion(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    task("loop", desc = "", deps = ["loop"], cmds = ["true"])
`)

	tasks := parseTasks(t, script, dir)

	err = RunTask(testCtx(), dir, "loop", tasks, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive")
}

func TestRunTaskSkipIfExists(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	err = ioutil.WriteFile(filepath.Join(dir, "done.stamp"), []byte("x"), 0600)
	require.NoError(t, err)

	script := writeScript(t, dir, `
def configure():
    task(
        "expensive",
        desc = "",
        skip_if_exists = ["done.stamp"],
        cmds = ["echo ran > ran.txt"],
    )
`)

	tasks := parseTasks(t, script, dir)

	err = RunTask(testCtx(), dir, "expensive", tasks, false, false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "ran.txt"))
	assert.True(t, os.IsNotExist(err), "task should have been skipped")

	// force overrides the skip list
	err = RunTask(testCtx(), dir, "expensive", tasks, false, true)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "ran.txt"))
	assert.NoError(t, err)
}

func TestRunTaskEnvReachesCommands(t *testing.T) {
	dir, err := ioutil.TempDir("", "buildsys")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	script := writeScript(t, dir, `
def configure():
    task(
        "experiment",
        desc = "",
        env = {"EXPERIMENT": "montecarlo/run-7"},
        cmds = ["echo $EXPERIMENT > exp.txt"],
    )
`)

	tasks := parseTasks(t, script, dir)

	err = RunTask(testCtx(), dir, "experiment", tasks, false, false)
	require.NoError(t, err)

	content, err := ioutil.ReadFile(filepath.Join(dir, "exp.txt"))
	require.NoError(t, err)
	assert.Equal(t, "montecarlo/run-7\n", string(content))
}
