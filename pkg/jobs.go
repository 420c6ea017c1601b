package pkg

import (
	"os"
	"regexp"
	"runtime"
	"strconv"
)

var makeoptsJobs = regexp.MustCompile(`(?:^|\s)-?-j(?:obs)?[=\s]*([0-9]+)`)

// JobCount determines how many parallel jobs build and experiment tasks
// should use. The override parameter (usually a --procs flag) wins if it's
// positive. Otherwise NUM_PROCS is honored, then a -j value parsed out of
// MAKEOPTS, and finally the machine's core count.
func JobCount(override int) int {
	if override > 0 {
		return override
	}

	if procs := parseProcs(os.Getenv("NUM_PROCS")); procs > 0 {
		return procs
	}

	if jobs := parseMakeopts(os.Getenv("MAKEOPTS")); jobs > 0 {
		return jobs
	}

	return runtime.NumCPU()
}

func parseProcs(value string) int {
	procs, err := strconv.Atoi(value)
	if err != nil || procs < 1 {
		return 0
	}
	return procs
}

func parseMakeopts(makeopts string) int {
	match := makeoptsJobs.FindStringSubmatch(makeopts)
	if match == nil {
		return 0
	}

	jobs, err := strconv.Atoi(match[1])
	if err != nil || jobs < 1 {
		return 0
	}
	return jobs
}
