package main

import (
	"os"

	"github.com/PolarWolf314/gitseal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
