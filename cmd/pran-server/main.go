package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	pran "github.com/ruchit2005/Pran-Protocol"
	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to yaml configuration")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.LevelDebug)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	client, err := pran.New(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init pipeline: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := pran.ServeStdio(client); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}
