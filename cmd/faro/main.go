package main

import (
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/faro-app/faro/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
