package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/stylist/internal/config"
	"github.com/dshills/stylist/internal/llm"
	"github.com/dshills/stylist/internal/logging"
	"github.com/dshills/stylist/internal/profile"
	"github.com/dshills/stylist/internal/prompt"
	"github.com/dshills/stylist/internal/render"
	"github.com/dshills/stylist/internal/synth"
)

// profileFlags are shared by every command that takes a profile.
type profileFlags struct {
	shape    string
	skinTone string
	gender   string
}

func (p *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.shape, "shape", "", "face shape, e.g. Oval")
	cmd.Flags().StringVar(&p.skinTone, "skin-tone", "", "skin tone, e.g. Warm")
	cmd.Flags().StringVar(&p.gender, "gender", "", "gender (default Unspecified)")
}

func (p profileFlags) profile() profile.Profile {
	return profile.Profile{Shape: p.shape, SkinTone: p.skinTone, Gender: p.gender}
}

type recommendFlags struct {
	profileFlags
	apiKey   string
	provider string
	model    string
	format   string
	out      string
	timeout  time.Duration
	debug    bool
}

func newRecommendCmd() *cobra.Command {
	var f recommendFlags
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Generate a style guide for a profile",
		Long: "Generate outfit, hair and accessory recommendations. When generation " +
			"is unavailable or returns unusable output, a fixed fallback set is printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return badInput("%v", err)
			}
			return runRecommend(cmd.Context(), cfg, f, cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key for this call only")
	cmd.Flags().StringVar(&f.provider, "provider", "", "provider: "+strings.Join(llm.Names(), ", "))
	cmd.Flags().StringVar(&f.model, "model", "", "model identifier (default depends on provider)")
	cmd.Flags().StringVar(&f.format, "format", render.FormatJSON, "output format: json or md")
	cmd.Flags().StringVar(&f.out, "out", "", "write output to file instead of stdout")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "generation timeout (default from STYLIST_AI_TIMEOUT)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "print prompts to stderr")
	return cmd
}

// applyFlags overlays command-line values on the loaded configuration.
func applyFlags(cfg config.Config, f recommendFlags) (config.Config, error) {
	if f.provider != "" {
		cfg.Provider = strings.ToLower(f.provider)
		if f.model == "" {
			cfg.Model = ""
		}
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.timeout > 0 {
		cfg.AITimeout = f.timeout
	}
	if !llm.Known(cfg.Provider) {
		return cfg, badInput("unknown provider %q (available: %s)", cfg.Provider, strings.Join(llm.Names(), ", "))
	}
	return cfg, nil
}

func runRecommend(ctx context.Context, cfg config.Config, f recommendFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := applyFlags(cfg, f)
	if err != nil {
		return err
	}
	switch strings.ToLower(f.format) {
	case render.FormatJSON, render.FormatMarkdown, "markdown":
	default:
		return badInput("unknown format %q (use json or md)", f.format)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	opts := synth.Options{
		Settings:  cfg.Settings(),
		Timeout:   cfg.AITimeout,
		MaxTokens: cfg.MaxTokens,
		Logger:    logger,
	}
	if f.debug {
		opts.Debug = os.Stderr
	}
	s := synth.New(opts)

	p := f.profile()
	set := s.Recommend(ctx, synth.Request{Profile: p, APIKey: f.apiKey})

	b, err := render.Render(f.format, &set, p)
	if err != nil {
		return err
	}
	return writeOutput(b, f.out, stdout)
}

func writeOutput(b []byte, path string, stdout io.Writer) error {
	if len(b) == 0 || b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	if path == "" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func newPromptCmd() *cobra.Command {
	var f profileFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the generation prompt for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n%s\n", prompt.SystemInstruction, prompt.Build(f.profile()))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newFallbackCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "fallback",
		Short: "Print the fixed fallback recommendation set",
		RunE: func(cmd *cobra.Command, args []string) error {
			set := synth.Fallback()
			b, err := render.Render(format, &set, profile.Profile{})
			if err != nil {
				return badInput("%v", err)
			}
			return writeOutput(b, "", cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&format, "format", render.FormatJSON, "output format: json or md")
	return cmd
}
