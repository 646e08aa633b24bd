// Command taxmcp serves the tax form engine as MCP tools over stdio.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Aashish23092/tax-form-engine/client"
	"github.com/Aashish23092/tax-form-engine/config"
	"github.com/Aashish23092/tax-form-engine/logger"
	"github.com/Aashish23092/tax-form-engine/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taxmcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	taxService, loader, err := service.NewFromConfig(cfg, zl)
	if err != nil {
		return err
	}

	srv, err := client.NewMCPServer(taxService, loader, zl)
	if err != nil {
		return err
	}

	zl.Info("serving MCP over stdio", zap.String("server", client.ServerName), zap.Int("tax_year", cfg.TaxYear))
	return srv.ServeStdio()
}
