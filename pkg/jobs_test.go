package pkg

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withEnv(t *testing.T, key, value string, fn func()) {
	old, present := os.LookupEnv(key)
	os.Setenv(key, value)
	defer func() {
		if present {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	}()

	fn()
}

func TestJobCountOverrideWins(t *testing.T) {
	withEnv(t, "NUM_PROCS", "3", func() {
		assert.Equal(t, 7, JobCount(7))
	})
}

func TestJobCountNumProcs(t *testing.T) {
	withEnv(t, "NUM_PROCS", "3", func() {
		assert.Equal(t, 3, JobCount(0))
	})
}

func TestJobCountIgnoresInvalidNumProcs(t *testing.T) {
	withEnv(t, "MAKEOPTS", "", func() {
		withEnv(t, "NUM_PROCS", "banana", func() {
			assert.Equal(t, runtime.NumCPU(), JobCount(0))
		})

		withEnv(t, "NUM_PROCS", "0", func() {
			assert.Equal(t, runtime.NumCPU(), JobCount(0))
		})

		withEnv(t, "NUM_PROCS", "-2", func() {
			assert.Equal(t, runtime.NumCPU(), JobCount(0))
		})
	})
}

func TestJobCountMakeopts(t *testing.T) {
	withEnv(t, "NUM_PROCS", "", func() {
		withEnv(t, "MAKEOPTS", "-j4", func() {
			assert.Equal(t, 4, JobCount(0))
		})
	})
}

func TestParseMakeopts(t *testing.T) {
	assert.Equal(t, 4, parseMakeopts("-j4"))
	assert.Equal(t, 4, parseMakeopts("-j 4"))
	assert.Equal(t, 16, parseMakeopts("--jobs=16"))
	assert.Equal(t, 2, parseMakeopts("-l3 -j2"))
	assert.Equal(t, 0, parseMakeopts(""))
	assert.Equal(t, 0, parseMakeopts("-l4"))
	assert.Equal(t, 0, parseMakeopts("--jobs"))
}
