// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the lendweb
// library lending service. Commands are organized using the cobra
// library. The root command starts the web server itself, the "db"
// sub-command initializes the database, and the "users" sub-command
// manages the users which may borrow books.
//
//	./lendweb [-c /path/of/config.yaml]           # start web server
//	./lendweb db init-dev [-c /path/of/config.yaml]
//	./lendweb db init-prod [-c /path/of/config.yaml]
//	./lendweb users add <username> [--staff]
//	./lendweb users delete <username>
//	./lendweb users list
//
// A .env file in the working directory (if any) is loaded before the
// configuration file, so its variables (like LENDWEB_JWT_SECRET and
// CONFIG_FILE) may override the configuration settings.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/momeni/clean-lending/pkg/adapter/config"
	"github.com/momeni/clean-lending/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-lending/pkg/adapter/restful/gin/routes"
	"github.com/momeni/clean-lending/pkg/core/log"
	"github.com/momeni/clean-lending/pkg/core/repo"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "lendweb",
	Short: "A library lending web service",
	Long: `A library lending web service which keeps a catalog of books
and lets the authenticated users borrow and return them.
A book may have at most one active loan at a time, users with overdue
loans may not borrow more books, and the number of active loans of
each user is limited by a mutable setting which the staff members may
change at runtime through the settings REST API.
Callers are authenticated by HS256 bearer tokens which are issued by
an external identity provider.`,
	RunE:          startWebServer,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func startWebServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		cmd.Context(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	e := c.Gin.NewEngine()
	if err = routes.Register(ctx, e, p, c); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	srv := &http.Server{Addr: c.Gin.Address, Handler: e}
	errs := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", slog.String("address", srv.Addr))
		errs <- srv.ListenAndServe()
	}()
	select {
	case err = <-errs:
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}
	log.Info(
		ctx, "shutting down",
		log.Valuer("timeout", c.Gin.ShutdownTimeout),
	)
	sctx, cancel := context.WithTimeout(
		context.Background(), c.Gin.ShutdownTimeout.Std(),
	)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err = <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving HTTP: %w", err)
	}
	return nil
}

// loadConfig loads the configuration file and installs its console
// logging handler as the default slog handler.
func loadConfig() (*cfg1.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	slog.SetDefault(slog.New(c.Logging.NewHandler(os.Stderr)))
	return c, nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. Any error is
// reported to the stderr and causes a non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotEnv, fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// loadDotEnv loads the .env file (if it exists) without overriding
// the variables which are already set in the environment.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "ignoring .env file:", err)
	}
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
