package main

import "github.com/keyfold/keyfold/internal/cli"

func main() {
	cli.Execute()
}
