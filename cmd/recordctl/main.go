package main

import (
	"os"

	"github.com/spf13/afero"
)

func main() {
	root := newRootCmd(afero.NewOsFs())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
