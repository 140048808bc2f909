package main

import "github.com/troutline/stocking-events/internal/cli"

func main() {
	cli.Execute()
}
