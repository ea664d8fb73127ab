package main

import "clipkeep/cmd/clipkeep-cli/cmd"

func main() {
	cmd.Execute()
}
