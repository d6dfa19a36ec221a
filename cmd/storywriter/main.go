package main

import (
	"github.com/portfola/storywriter/internal/cli"
)

func main() {
	cli.Execute()
}
