// Package main runs the flowdoc interactive shell. It edits the configured
// storage directly, so no server has to be running.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/atinyakov/FlowDoc/internal/logger"
	"github.com/atinyakov/FlowDoc/internal/service"
	"github.com/atinyakov/FlowDoc/internal/shell"
	"github.com/atinyakov/FlowDoc/internal/storage"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		dsn       string
		ephemeral bool
		logLevel  string
		showVer   bool
	)

	flag.StringVar(&dsn, "s", "file://data", "storage dsn")
	flag.BoolVar(&ephemeral, "ephemeral", false, "keep everything in memory")
	flag.StringVar(&logLevel, "l", "warn", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("FlowDoc Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}
	if ephemeral {
		dsn = "memory://"
	}

	lg := logger.New()
	if err := lg.Init(logLevel); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Log.Sync() }()

	ctx := context.Background()
	kv, err := storage.Open(ctx, dsn, storage.Options{Log: lg.Log})
	if err != nil {
		log.Fatal(err)
	}
	defer kv.Close()

	auth := service.NewAuthService(storage.NewAccountStore(kv, lg.Module("auth")), lg.Module("auth"))
	if err := auth.SeedDemoAccount(ctx); err != nil {
		log.Printf("demo account: %v", err)
	}
	ws := service.NewWorkspace(ctx, storage.NewProjectStore(kv, lg.Module("storage")), lg.Module("workspace"))

	shell.New(auth, ws).Run(ctx)
}
