package cmd

import (
	"archive/tar"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/schollz/progressbar/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalConditionsExpandsPlaceholders(t *testing.T) {
	meta := depSpec{
		URL: "{BASE}/corpora/sim-corpus-{VERSION}.tar.gz",
	}
	vars := map[string]string{
		"BASE":    "https://example.org",
		"VERSION": "2021-03",
	}

	assert.True(t, evalConditions(&meta, vars))
	assert.Equal(t, "https://example.org/corpora/sim-corpus-2021-03.tar.gz", meta.URL)
}

func TestEvalConditionsUnknownPlaceholder(t *testing.T) {
	meta := depSpec{URL: "{MISSING}/file.zip"}

	assert.True(t, evalConditions(&meta, map[string]string{}))
	assert.Equal(t, "/file.zip", meta.URL)
}

func TestEvalConditionsIf(t *testing.T) {
	meta := depSpec{Condition: "linux", URL: "x"}

	assert.False(t, evalConditions(&meta, map[string]string{}))
	assert.True(t, evalConditions(&meta, map[string]string{"linux": "true"}))
}

func TestEvalConditionsIfNot(t *testing.T) {
	meta := depSpec{Rejections: "ci", URL: "x"}

	assert.True(t, evalConditions(&meta, map[string]string{}))
	assert.False(t, evalConditions(&meta, map[string]string{"ci": "true"}))
}

func TestEvalConditionsMultiple(t *testing.T) {
	meta := depSpec{Condition: "linux, amd64", URL: "x"}

	assert.False(t, evalConditions(&meta, map[string]string{"linux": "true"}))
	assert.True(t, evalConditions(&meta, map[string]string{"linux": "true", "amd64": "true"}))
}

func TestExtractTarEntryTypes(t *testing.T) {
	dir, err := ioutil.TempDir("", "fetch-deps")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archivePath := filepath.Join(dir, "dep.tar")
	handle, err := os.Create(archivePath)
	require.NoError(t, err)

	writer := tar.NewWriter(handle)
	err = writer.WriteHeader(&tar.Header{
		Name:     "pkg/bin/solver",
		Typeflag: tar.TypeReg,
		Mode:     0755,
		Size:     6,
	})
	require.NoError(t, err)
	_, err = writer.Write([]byte("binary"))
	require.NoError(t, err)

	err = writer.WriteHeader(&tar.Header{
		Name:     "pkg/bin/solver-latest",
		Typeflag: tar.TypeSymlink,
		Linkname: "solver",
		Mode:     0777,
	})
	require.NoError(t, err)

	// a character device shares bits with the symlink type flag and must
	// not be treated as a link
	err = writer.WriteHeader(&tar.Header{
		Name:     "pkg/dev/null",
		Typeflag: tar.TypeChar,
		Mode:     0666,
	})
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	require.NoError(t, handle.Close())

	handle, err = os.Open(archivePath)
	require.NoError(t, err)
	defer handle.Close()

	bar := progressbar.NewOptions64(-1, progressbar.OptionSetVisibility(false))
	err = extractTar(handle, handle, bar, dir, "dep", depSpec{Dest: "third_party", Strip: 1})
	require.NoError(t, err)

	content, err := ioutil.ReadFile(filepath.Join(dir, "third_party", "bin", "solver"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(content))

	linkInfo, err := os.Lstat(filepath.Join(dir, "third_party", "bin", "solver-latest"))
	require.NoError(t, err)
	assert.NotZero(t, linkInfo.Mode()&os.ModeSymlink)

	target, err := os.Readlink(filepath.Join(dir, "third_party", "bin", "solver-latest"))
	require.NoError(t, err)
	assert.Equal(t, "solver", target)

	devInfo, err := os.Lstat(filepath.Join(dir, "third_party", "dev", "null"))
	require.NoError(t, err)
	assert.True(t, devInfo.Mode().IsRegular())
}

func TestGetExtractor(t *testing.T) {
	for _, url := range []string{"a.zip", "a.tar.gz", "a.tar.bz2", "a.tar.xz"} {
		extractor, err := getExtractor(url)
		assert.NoError(t, err, url)
		assert.NotNil(t, extractor, url)
	}

	_, err := getExtractor("a.rar")
	assert.Error(t, err)
}
