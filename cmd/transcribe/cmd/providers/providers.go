package providers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"whisper-transcribe/cmd/transcribe/cmd/common"
	"whisper-transcribe/internal/app"
	appconfig "whisper-transcribe/internal/app/config"
	"whisper-transcribe/internal/config"
)

var (
	healthTimeout time.Duration
	force         bool
)

func init() {
	Cmd.Flags().DurationVar(&healthTimeout, "health-timeout", 15*time.Second, "time allowed for all health checks")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	Cmd.AddCommand(initCmd)
}

// Cmd represents the providers command
var Cmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured transcription providers and their health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, err := app.InitializeProviders(common.Options(config.SettingsFromEnv()))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
		defer cancel()
		return printStatus(cmd.OutOrStdout(), providers.Status(ctx))
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example providers config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := common.ConfigPath
		if path == "" {
			path = appconfig.GetDefaultConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := appconfig.SaveProvidersConfig(appconfig.CreateDefaultConfig(), path); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func printStatus(w io.Writer, statuses []appconfig.ProviderStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tENABLED\tDEFAULT\tSTATUS\tDETAIL")
	for _, st := range statuses {
		status := "healthy"
		switch {
		case !st.Enabled:
			status = "disabled"
		case st.Info == nil:
			status = "unavailable"
		case !st.Healthy:
			status = "unhealthy"
		}
		detail := st.Error
		if detail == "" && st.Info != nil {
			detail = st.Info.DisplayName
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\t%s\n", st.Name, st.Type, st.Enabled, yes(st.Default), status, detail)
	}
	return tw.Flush()
}

func yes(b bool) string {
	if b {
		return "*"
	}
	return ""
}
