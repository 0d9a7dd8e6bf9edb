package main

import "github.com/omnote/omnote/internal/cli/cmd"

func main() {
	cmd.Execute()
}
