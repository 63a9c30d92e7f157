package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUpsampleCmd() *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "upsample",
		Short: "Print the upsampled caption for a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prompt) == "" {
				return errors.New("--prompt is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			res, err := a.Upsampler.Upsample(ctx, prompt, true)
			if err != nil {
				return err
			}
			if res.Degraded {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: every rewrite failed, the base prompt is used as is")
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.FinalCaption)
			return nil
		},
		Example: `upsampler upsample --prompt "a frgo on a lilly pad"`,
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "base prompt to upsample (required)")
	return cmd
}

func init() { rootCmd.AddCommand(newUpsampleCmd()) }
