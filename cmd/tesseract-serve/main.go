package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/logger"
	"github.com/lixenwraith/tesseract/status"
)

func main() {
	configPath := flag.String("config", "", "TOML tuning file (defaults when empty)")
	addr := flag.String("addr", "", "listen address (overrides serve.addr)")
	seed := flag.Uint64("seed", 1, "default world seed for new connections")
	schemaOnly := flag.Bool("schema", false, "print the stream JSON schema and exit")
	flag.Parse()

	if *schemaOnly {
		data, err := schemaJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build schema: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	logger.Init()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}

	srv := newServer(cfg, *seed, status.NewRegistry())
	logger.Log.WithFields(logrus.Fields{
		"addr":    cfg.Serve.Addr,
		"seed":    *seed,
		"columns": cfg.Serve.Columns,
	}).Info("column stream listening")

	if err := http.ListenAndServe(cfg.Serve.Addr, srv.routes()); err != nil {
		logger.Log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
