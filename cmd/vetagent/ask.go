package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vetevidence/vetagent/internal/core"
	"github.com/vetevidence/vetagent/internal/service/citations"
	"github.com/vetevidence/vetagent/pkg/log"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single clinical question and print the cited answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		a := newApp(ctx)
		defer func() {
			if err := a.db.Close(); err != nil {
				log.FromCtx(ctx).Error().Err(err).Msg("failed to close database")
			}
		}()

		question := strings.Join(args, " ")
		resp, err := a.agent.Run(ctx, core.Request{
			Messages: []core.Turn{{Role: core.RoleUser, Content: question}},
		})
		if err != nil {
			return err
		}

		fmt.Println(resp.Content)
		if sources := citations.FormatForDisplay(resp.Citations); sources != "" {
			fmt.Println()
			fmt.Println(sources)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
