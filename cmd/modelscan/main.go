package main

import (
	"os"

	"modelscan/internal/ui/cli"
)

func main() {
	os.Exit(cli.Execute())
}
