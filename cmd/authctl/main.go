package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/energyaudit/internal/admin"
	"github.com/dmitrijs2005/energyaudit/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := admin.Main(ctx, cfg, os.Args[1:]); err != nil {
		if errors.Is(err, admin.ErrUsage) {
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}

}
