package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-lund/diamond/internal/roster"
)

func newSpeakersCommand(ctx *commandContext) *cobra.Command {
	var (
		filterFlag string
		retryFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "List enrolled speaker identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			speakers, err := roster.Fetch(cmd.Context(), ctx.client(), filterFlag)
			if err != nil && retryFlag {
				ctx.log.Warn().Err(err).Msg("speaker fetch failed, retrying")
				speakers, err = roster.Fetch(cmd.Context(), ctx.client(), filterFlag)
			}
			if err != nil {
				fmt.Println("Could not load speakers. Is the backend running?")
				fmt.Println("Run again with --retry, or check the api.base_url setting.")
				return err
			}

			if len(speakers) == 0 {
				if filterFlag != "" {
					fmt.Printf("No speakers match %q.\n", filterFlag)
				} else {
					fmt.Println("No speakers enrolled yet.")
				}
				return nil
			}

			fmt.Println(renderRoster(speakers))
			fmt.Printf("%d identities\n", len(speakers))
			return nil
		},
	}

	cmd.Flags().StringVar(&filterFlag, "filter", "", "Only show speakers matching this substring")
	cmd.Flags().BoolVar(&retryFlag, "retry", false, "Retry once if the roster fetch fails")

	return cmd
}
