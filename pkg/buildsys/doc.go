// Package buildsys implements a small build system that uses Starlark for the task
// declarations and mvdan.cc/sh as the shell runtime.
// It exists so that the extension build and the Monte-Carlo experiment pipeline behave
// the same on every platform instead of depending on whatever shell happens to be
// installed.
package buildsys
