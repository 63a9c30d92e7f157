package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/upsampler/internal/app"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		prompt    string
		outputDir string
		params    paramFlags
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Generate a prompt with and without upsampling and judge both images",
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

			v, err := a.Validate(ctx, prompt, p)
			if err != nil {
				return err
			}

			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output dir %s: %w", outputDir, err)
				}
			}
			for _, o := range []struct {
				name    string
				outcome app.Outcome
			}{{"plain", v.Plain}, {"upsampled", v.Upsampled}} {
				printOutcome(cmd.OutOrStdout(), o.name, o.outcome)
				if outputDir == "" || o.outcome.Image == nil {
					continue
				}
				path := filepath.Join(outputDir, o.name+".png")
				if err := os.WriteFile(path, o.outcome.Image.Data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  image saved at: %s\n", path)
			}
			return nil
		},
		Example: `upsampler validate --prompt "A frog" --output-dir out/`,
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "base prompt to validate (required)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory to save plain.png and upsampled.png")
	addParamFlags(cmd, &params)
	return cmd
}

func printOutcome(w io.Writer, name string, o app.Outcome) {
	fmt.Fprintf(w, "%s:\n  caption: %s\n", name, o.FinalCaption)
	if o.Err != nil {
		fmt.Fprintf(w, "  error: %v\n", o.Err)
		return
	}
	if o.Judgement != nil {
		fmt.Fprintf(w, "  score: %.3f (%s) after %d attempt(s)\n  rationale: %s\n",
			o.Judgement.Score, o.Judgement.Verdict, o.Judgement.AttemptCount, o.Judgement.Rationale)
	}
}

func init() { rootCmd.AddCommand(newValidateCmd()) }
