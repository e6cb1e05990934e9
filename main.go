package main

import (
	"os"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
