package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-lund/diamond/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past diarization sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(ctx.cfg.History.Database)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			sessions, err := store.ListSessions(limitFlag)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions recorded yet.")
				return nil
			}

			fmt.Println(renderHistory(sessions))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of sessions to show")

	return cmd
}
