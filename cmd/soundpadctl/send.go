package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewandler/soundpad-go/client"
)

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <payload> [payload...]",
		Short: "Send one or more payloads and print the responses",
		Long: `Send writes each payload to the remote control pipe and prints the response.
Several payloads run as one sequence, paced by SOUNDPAD_DEBOUNCE.`,
		Example: `  soundpadctl send 'DoPlaySound(3)'
  soundpadctl send 'DoPlaySound(1)' 'DoStopSound()'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dial(client.Options{})
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			if len(args) == 1 {
				res, err := c.Request(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("request failed: %w", err)
				}
				return write(cmd.OutOrStdout(), a.output, res)
			}

			res, err := c.Sequence(cmd.Context(), args...)
			if err != nil {
				return fmt.Errorf("sequence failed: %w", err)
			}
			return write(cmd.OutOrStdout(), a.output, res)
		},
	}
}
