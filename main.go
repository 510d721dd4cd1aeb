package main

import (
	"context"
	"log"
	"os"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}
	if err := newApp().Run(context.Background(), args); err != nil {
		log.Fatalf("run-tracker: %v", err)
	}
}
