package buildsys

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	ctx := &parserCtx{
		filepath:    filepath.Join("/work", "project", "tasks.star"),
		projectRoot: filepath.Join("/work", "project"),
	}

	// relative to the task file's directory
	assert.Equal(t, filepath.Join("/work", "project", "lsh_hdc"), normalizePath(ctx, "lsh_hdc"))

	// anchored at the project root
	assert.Equal(t, filepath.Join("/work", "project", "montecarlo"), normalizePath(ctx, "//montecarlo"))

	// later elements are joined onto earlier ones
	assert.Equal(t, filepath.Join("/work", "project", "a", "b"), normalizePath(ctx, "a", "b"))
}

func TestSimplifyPath(t *testing.T) {
	root, err := filepath.Abs("testdata")
	assert.NoError(t, err)

	ctx := &parserCtx{
		filepath:    filepath.Join(root, "tasks.star"),
		projectRoot: root,
	}

	assert.Equal(t, "//"+filepath.Join("sub", "file.txt"), simplifyPath(ctx, filepath.Join(root, "sub", "file.txt")))
}
