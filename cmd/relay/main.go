package main

import (
	"os"

	"github.com/huynhanx03/go-relay/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
