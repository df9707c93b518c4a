// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/telekom/plover/internal/logger"
	"github.com/telekom/plover/pkg/config"
	"github.com/telekom/plover/pkg/plover"
)

// NewCmdRun creates a new run command
func NewCmdRun() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run plover",
		Long:  "Run plover to start the probing of the configured peers",
		RunE:  run(),
	}

	return cmd
}

// run is the entry point to start plover
func run() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := logger.NewContextWithLogger(cmd.Context())
		defer cancel()
		log := logger.FromContext(ctx)

		cfg := &config.Config{}
		err := viper.Unmarshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		if err = cfg.Validate(ctx); err != nil {
			return fmt.Errorf("error while validating the config: %w", err)
		}

		p := plover.New(cfg)

		log.Info("Running plover")
		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err = p.Run(sigCtx); err != nil {
			log.Error("Error while running plover", "error", err)
			//nolint:gocritic // The exitAfterDefer is not a problem here, since defers are just canceling contexts
			os.Exit(1)
		}
		return nil
	}
}
