package main

import "github.com/maestro-drills/backend/internal/cli"

func main() {
	cli.Execute()
}
