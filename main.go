package main

import "github.com/szqshan/datamaster/cmd"

func main() {
	cmd.Execute()
}
