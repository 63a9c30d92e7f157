package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		prompt   string
		output   string
		upsample bool
		params   paramFlags
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one image, optionally upsampling the prompt first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prompt) == "" {
				return errors.New("--prompt is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := params.apply(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := context.Background()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			img, err := a.Generate(ctx, prompt, upsample, p)
			if err != nil {
				return err
			}
			if !strings.HasSuffix(strings.ToLower(output), ".png") {
				output += ".png"
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output dir %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(output, img.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Caption: %s\nGenerated image saved at: %s\n", img.FinalCaption, output)
			return nil
		},
		Example: `upsampler generate --prompt "A frog" --upsample -o frog.png`,
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "base prompt (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "path to save the generated PNG image")
	cmd.Flags().BoolVar(&upsample, "upsample", false, "upsample the prompt before generating")
	addParamFlags(cmd, &params)
	return cmd
}

func init() { rootCmd.AddCommand(newGenerateCmd()) }
