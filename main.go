package main

import "github.com/pocketfuldev/artag/cmd"

var version = "dev" // This will be set by ldflags during build

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
