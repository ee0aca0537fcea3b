package main

import (
	"fmt"
	"os"

	"github.com/mrodavis/sound-circle-be/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
