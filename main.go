package main

import "github.com/nvr-ai/visioncore/cmd"

func main() {
	cmd.Execute()
}
