// mcp-hfspace exposes Gradio-powered Hugging Face Spaces as MCP tools
// over stdio.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tsubasakong/mcp-hfspace/src/config"
	"github.com/tsubasakong/mcp-hfspace/src/server"
	"github.com/tsubasakong/mcp-hfspace/src/workdir"
)

const version = "0.2.0"

func main() {
	// stdout carries the MCP transport, so all diagnostics go to stderr.
	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		logger.Fatalf("configuration: %v", err)
	}
	if cfg.ShowVersion {
		fmt.Println("mcp-hfspace " + version)
		return
	}

	wd, err := workdir.New(cfg.WorkDir)
	if err != nil {
		logger.Fatalf("working directory: %v", err)
	}

	srv, err := server.New(context.Background(), cfg.Spaces, server.Options{
		Version:     version,
		Token:       cfg.Token,
		DesktopMode: cfg.DesktopMode,
		Workdir:     wd,
		Logger:      logger.Printf,
	})
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}

	logger.Printf("serving %d endpoint(s), working directory %s", len(srv.Wrappers()), wd.Root())
	if err := srv.ServeStdio(); err != nil {
		logger.Fatalf("serve: %v", err)
	}
}
