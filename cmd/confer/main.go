package main

import (
	"fmt"
	"os"

	"github.com/example/confer/internal/cli"
	"github.com/example/confer/internal/db"
	"github.com/example/confer/internal/version"
)

func main() {
	rootCmd := cli.RootCmd(version.String())

	err := rootCmd.Execute()
	db.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
