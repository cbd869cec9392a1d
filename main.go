package main

import (
	"os"

	"github.com/thenoetrevino/quadro/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
