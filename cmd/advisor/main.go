package main

import (
	"os"

	"automation-advisor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
