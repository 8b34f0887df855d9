package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"speteval/internal/filter"
	"speteval/internal/measure"
	"speteval/internal/media/audio"
)

type checkResult struct {
	Path       string       `json:"path"`
	Keep       bool         `json:"keep"`
	RejectedBy string       `json:"rejected_by,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	Metrics    *clipMetrics `json:"metrics,omitempty"`
}

type clipMetrics struct {
	Extension    string  `json:"extension"`
	Channels     int     `json:"channels"`
	SampleRate   int     `json:"sample_rate"`
	Frames       int     `json:"frames"`
	DurationMS   int64   `json:"duration_ms"`
	MinDim       int     `json:"min_dim"`
	MaxDim       int     `json:"max_dim"`
	TextLength   int     `json:"text_length"`
	TextToSpeech float64 `json:"text_to_speech"`
	TextToFrame  float64 `json:"text_to_frame"`
	HopLength    int     `json:"hop_length"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <audio> [text]",
		Short: "Evaluate a single clip against the enabled validators",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			pipeline, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}

			rec := filter.Record{Path: args[0]}
			if len(args) == 2 {
				rec.Text = args[1]
			}
			verdict, err := pipeline.Inspect(cmd.Context(), rec)
			if err != nil {
				return err
			}

			result := checkResult{
				Path:       rec.Path,
				Keep:       verdict.Keep,
				RejectedBy: string(verdict.RejectedBy),
				Reason:     verdict.Reason,
			}
			if verdict.Clip != nil {
				result.Metrics = metricsFor(verdict.Clip, rec, cfg.Validators.TextToFrame.HopLength)
			}

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				renderCheckResult(cmd, result)
			}
			if !verdict.Keep {
				return fmt.Errorf("%s rejected by %s", rec.Path, verdict.RejectedBy)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func metricsFor(clip *audio.Clip, rec filter.Record, hopLength int) *clipMetrics {
	content := clip.Content()
	return &clipMetrics{
		Extension:    measure.FileExtension(rec.Path),
		Channels:     clip.Channels(),
		SampleRate:   clip.SampleRate,
		Frames:       clip.Frames(),
		DurationMS:   clip.Duration().Milliseconds(),
		MinDim:       measure.MinDim(content),
		MaxDim:       measure.MaxDim(content),
		TextLength:   len([]rune(rec.Text)),
		TextToSpeech: measure.TextToSpeechRatio(rec.Text, content, measure.DefaultEpsilon),
		TextToFrame:  measure.TextToFrameRatio(rec.Text, content, hopLength, measure.DefaultEpsilon),
		HopLength:    hopLength,
	}
}

func renderCheckResult(cmd *cobra.Command, result checkResult) {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)
	verdict := colorize("keep", ansiGreen, color)
	if !result.Keep {
		verdict = colorize("reject ("+result.RejectedBy+")", ansiRed, color)
	}
	fmt.Fprintf(out, "%s: %s\n", result.Path, verdict)
	if result.Reason != "" {
		fmt.Fprintf(out, "Reason: %s\n", result.Reason)
	}
	if result.Metrics == nil {
		return
	}
	m := result.Metrics
	rows := [][]string{
		{"Extension", m.Extension},
		{"Channels", strconv.Itoa(m.Channels)},
		{"Sample rate", strconv.Itoa(m.SampleRate)},
		{"Frames", strconv.Itoa(m.Frames)},
		{"Duration (ms)", strconv.FormatInt(m.DurationMS, 10)},
		{"Min dim", strconv.Itoa(m.MinDim)},
		{"Max dim", strconv.Itoa(m.MaxDim)},
		{"Text length", strconv.Itoa(m.TextLength)},
		{"Text/speech", strconv.FormatFloat(m.TextToSpeech, 'g', 6, 64)},
		{"Text/frame (hop " + strconv.Itoa(m.HopLength) + ")", strconv.FormatFloat(m.TextToFrame, 'g', 6, 64)},
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}
