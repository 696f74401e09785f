package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AhmedIzaan/ai-interview-coach/internal/config"
	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/storage"
)

type reportsOptions struct {
	dir    string
	format string
}

func (o *reportsOptions) store(fs afero.Fs) (*storage.ReportStore, error) {
	cfg := config.Load()
	dir := o.dir
	if dir == "" {
		dir = cfg.Reports.Dir
	}
	format := o.format
	if format == "" {
		format = cfg.Reports.Format
	}
	return storage.NewReportStore(fs, dir, format)
}

func newReportsCommand(fs afero.Fs) *cobra.Command {
	opts := &reportsOptions{}

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect archived interview reports",
	}
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "Report directory (overrides REPORTS_DIR)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "", "Preferred report format: json or yaml (overrides REPORTS_FORMAT)")

	cmd.AddCommand(newReportsListCommand(fs, opts))
	cmd.AddCommand(newReportsShowCommand(fs, opts))
	return cmd
}

func newReportsListCommand(fs afero.Fs, opts *reportsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived session ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store(fs)
			if err != nil {
				return err
			}
			ids, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintf(out, "No reports in %s\n", store.Dir())
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}

func newReportsShowCommand(fs afero.Fs, opts *reportsOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store(fs)
			if err != nil {
				return err
			}
			report, err := store.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "text", "":
				writeReportText(out, report)
				return nil
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(report)
			default:
				return fmt.Errorf("unknown output %q: use text, json or yaml", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func writeReportText(w io.Writer, r *storage.Report) {
	fb := r.Feedback
	fmt.Fprintf(w, "Session:   %s\n", r.SessionID)
	fmt.Fprintf(w, "Role:      %s (%s)\n", r.Role, r.Tone)
	fmt.Fprintf(w, "Completed: %s\n", r.CompletedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Score:     %.1f / %.0f\n", fb.ClampedScore(), models.MaxScore)
	if fb.Sentiment != "" {
		fmt.Fprintf(w, "Sentiment: %s\n", fb.Sentiment)
	}
	writeList(w, "Strengths", fb.Strengths)
	writeList(w, "Improvements", fb.Improvements)
	if fb.DetailedFeedback != "" {
		fmt.Fprintf(w, "\n%s\n", fb.DetailedFeedback)
	}
	if fb.FinalVerdict != "" {
		fmt.Fprintf(w, "\nVerdict: %s\n", fb.FinalVerdict)
	}
	if len(fb.Answers) > 0 {
		fmt.Fprintln(w, "\nAnswers:")
		for _, t := range fb.Answers {
			fmt.Fprintf(w, "  Q%d. %s\n      %s\n", t.Number, t.Question, t.Answer)
		}
	}
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
