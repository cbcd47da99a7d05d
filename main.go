package main

import "github.com/jamesatomc/token/cmd"

func main() {
	cmd.Execute()
}
