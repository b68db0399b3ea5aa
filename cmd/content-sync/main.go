// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/content-sync/internal/app"
	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/models"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "content-sync: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var showVersion bool

	cmd := &cobra.Command{
		Use:   "content-sync",
		Short: "Copy the documents of a remote content store into an empty local one",
		Long: "content-sync reads every document of the selected collections from a remote\n" +
			"content store and recreates them in the local store, remapping the ids of\n" +
			"relationships and uploads and replaying the latest version of each document.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := config.BindFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print build information and exit")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if showVersion {
			printBuildInfo(cmd.OutOrStdout(), models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))
			return nil
		}

		if err := config.LoadDotenv("."); err != nil {
			return err
		}

		cfg, err := config.GetStructuredConfig(flags)
		if err != nil {
			return fmt.Errorf("error getting configs: %w", err)
		}

		log := logger.NewLogger("content-sync", logger.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
		})
		log.Debug().
			Str("remote", cfg.Remote.URL).
			Str("local_config", cfg.Sync.LocalConfigPath).
			Strs("collections", cfg.Sync.Collections).
			Strs("priority_collections", cfg.Sync.PriorityCollections).
			Int("limit", cfg.Sync.Limit).
			Str("files_driver", cfg.Storage.Files.Driver).
			Msg("received configs")

		application, err := app.NewApp(cfg, log)
		if err != nil {
			return err
		}

		report, err := application.Run(cmd.Context())
		if err != nil {
			log.Error().Err(err).Msg("sync failed")
			return err
		}

		log.Info().
			Str("run_id", report.RunID).
			Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
			Msg("sync completed")
		return nil
	}

	return cmd
}

func printBuildInfo(w io.Writer, info models.AppBuildInfo) {
	version, date, commit := info.BuildVersion(), info.BuildDate(), info.BuildCommit()
	if version == "" {
		version = "N/A"
	}
	if date == "" {
		date = "N/A"
	}
	if commit == "" {
		commit = "N/A"
	}

	fmt.Fprintf(w, "Build version: %s\n", version)
	fmt.Fprintf(w, "Build date: %s\n", date)
	fmt.Fprintf(w, "Build commit: %s\n", commit)
}
