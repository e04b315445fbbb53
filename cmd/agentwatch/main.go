package main

import "github.com/nickmvincent/agentwatch/internal/cli"

func main() {
	cli.Execute()
}
