package buildsys

import (
	"encoding/gob"
	"os"
	"reflect"
	"time"
)

func init() {
	gob.Register(TaskList{})
	gob.Register(Task{})
	gob.Register(TaskCmdScript{})
	gob.Register(TaskCmdTaskRef{})
}

type cacheHeader struct {
	ScriptModTime time.Time
	Jobs          int
	Options       map[string]string
	EnvReads      map[string]string
}

// WriteCache stores the parsed task list so later invocations can skip the
// Starlark evaluation. scriptPath is the task file the list was parsed from.
func WriteCache(file, scriptPath string, options map[string]string, jobs int, result *ScriptResult) error {
	info, err := os.Stat(scriptPath)
	if err != nil {
		return err
	}

	handle, err := os.Create(file)
	if err != nil {
		return err
	}
	defer handle.Close()

	encoder := gob.NewEncoder(handle)
	err = encoder.Encode(cacheHeader{
		ScriptModTime: info.ModTime(),
		Jobs:          jobs,
		Options:       options,
		EnvReads:      result.EnvReads,
	})
	if err != nil {
		return err
	}

	return encoder.Encode(result.Tasks)
}

// ReadCache loads a cached task list. It returns ok == false if the task
// file, the options, the job count or any environment value the script read
// changed since the cache was written; callers should re-parse in that case.
func ReadCache(file, scriptPath string, options map[string]string, jobs int) (TaskList, bool, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, false, err
	}
	defer handle.Close()

	decoder := gob.NewDecoder(handle)

	var header cacheHeader
	err = decoder.Decode(&header)
	if err != nil {
		return nil, false, err
	}

	info, err := os.Stat(scriptPath)
	if err != nil {
		return nil, false, err
	}

	if !header.ScriptModTime.Equal(info.ModTime()) || header.Jobs != jobs || !reflect.DeepEqual(header.Options, options) {
		return nil, false, nil
	}

	for key, value := range header.EnvReads {
		if os.Getenv(key) != value {
			return nil, false, nil
		}
	}

	var list TaskList
	err = decoder.Decode(&list)
	if err != nil {
		return nil, false, err
	}

	return list, true, nil
}
