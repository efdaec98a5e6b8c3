// Package main provides the CLI entry point for xlsniff-go.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/detect"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/output"
)

var (
	threshold    float64
	outputPath   string
	markdownPath string
	pretty       bool
	configPath   string
	showProgress bool
	disabled     []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlsniff [input.xlsx]",
		Short: "Probabilistic defect detection for Excel workbooks",
		Long: `xlsniff-go scans an Excel workbook with a battery of probabilistic
defect detectors (broken anchoring, formula propagation gaps, circular
named ranges, stale external data, ...) and reports every suspect cell
with a confidence score.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	rootCmd.Flags().Float64VarP(&threshold, "threshold", "t", xlsniff.DefaultThreshold,
		"Minimum probability for a finding to be reported (0-1)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "JSON report path (default: stdout)")
	rootCmd.Flags().StringVarP(&markdownPath, "markdown", "m", "", "Markdown report path")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (xlsniff.yaml)")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "Show per-detector progress")
	rootCmd.Flags().StringSliceVar(&disabled, "disable", nil, "Detector names to skip")

	watchCmd := &cobra.Command{
		Use:   "watch [input.xlsx]",
		Short: "Re-analyze the workbook whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().Float64VarP(&threshold, "threshold", "t", xlsniff.DefaultThreshold,
		"Minimum probability for a finding to be reported (0-1)")
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildOptions(cmd *cobra.Command) (xlsniff.Options, error) {
	opts := xlsniff.DefaultOptions()
	if cmd.Flags().Changed("threshold") {
		t := threshold
		opts.Threshold = &t
	}
	opts.Disabled = disabled

	if configPath != "" {
		cfg, err := xlsniff.LoadConfig(configPath)
		if err != nil {
			return opts, fmt.Errorf("config: %w", err)
		}
		opts = cfg.Apply(opts)
		if outputPath == "" {
			outputPath = cfg.Output.JSON
		}
		if markdownPath == "" {
			markdownPath = cfg.Output.Markdown
		}
		if !pretty {
			pretty = cfg.Output.Pretty
		}
	}

	if showProgress {
		var bar *progressbar.ProgressBar
		opts.Progress = func(name string, done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("detectors"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Describe(name)
			_ = bar.Set(done)
		}
	}
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}
	return analyzeOnce(args[0], opts)
}

func analyzeOnce(inputPath string, opts xlsniff.Options) error {
	rep, err := xlsniff.Analyze(inputPath, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if outputPath != "" {
		if err := output.WriteJSON(rep, outputPath, pretty); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
	} else if markdownPath == "" {
		data, err := output.ToJSON(rep, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Println(string(data))
	}

	if markdownPath != "" {
		if err := output.WriteMarkdown(rep, markdownPath); err != nil {
			return fmt.Errorf("failed to write Markdown report: %w", err)
		}
	}

	printSummary(rep)
	return nil
}

func printSummary(rep *detect.Report) {
	fmt.Fprintf(os.Stderr, "Found %d findings above threshold %.2f (high: %d, medium: %d, low: %d)\n",
		rep.Summary.TotalFindings, rep.Summary.Threshold,
		rep.Summary.BySeverity[detect.SeverityHigh],
		rep.Summary.BySeverity[detect.SeverityMedium],
		rep.Summary.BySeverity[detect.SeverityLow])
}

func runWatch(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace the file on save, which
	// swaps the inode a file watch would be pinned to.
	dir := filepath.Dir(inputPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	if err := analyzeOnce(inputPath, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	}

	var timer *time.Timer
	debounce := 300 * time.Millisecond
	trigger := func() {
		if err := analyzeOnce(inputPath, opts); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
	}

	base := filepath.Base(inputPath)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "ERROR: watch error: %v\n", err)
		}
	}
}
