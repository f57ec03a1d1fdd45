package main

import (
	"os"

	"partsstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
