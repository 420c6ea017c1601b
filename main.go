package main

import "github.com/lsh-hdc/build-tools/cmd"

func main() {
	cmd.Execute()
}
