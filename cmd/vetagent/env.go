package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vetevidence/vetagent/internal/config"
	"github.com/vetevidence/vetagent/pkg/env"
	"github.com/vetevidence/vetagent/pkg/log"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration in .env form",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			log.FromCtx(ctx).Fatal().Err(err).Msg("failed to init env")
		}

		sections := []any{
			config.NewAppConfig(ctx),
			config.NewServerConfig(ctx),
			config.NewLiteratureConfig(ctx),
			config.NewPubMedConfig(ctx),
		}

		out := cmd.OutOrStdout()
		for _, section := range sections {
			content, err := env.MarshalEnv(section)
			if err != nil {
				return err
			}
			fmt.Fprint(out, content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
