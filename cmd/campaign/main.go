package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	campaigncmd "github.com/impulso-music/impulso/internal/cmd/campaign"
)

func main() {
	cfg, err := campaigncmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CAMPAIGN] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := campaigncmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
