package main

import (
	"log"

	tool "github.com/mercatto/marketplace-api/internal/tools/loadgen"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
