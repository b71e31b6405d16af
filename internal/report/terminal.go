package report

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float64
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		bold:   color.New(color.Bold),
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
	r.lastStage = ""
}

func (r *TerminalReporter) SourceLoaded(summary SourceSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("SOURCE")
	r.printLabel(11, "File:", summary.InputFile)
	r.printLabel(11, "Duration:", summary.Duration)
	if summary.HasVideo {
		r.printLabel(11, "Resolution:", summary.Resolution)
	}
	streams := []string{}
	if summary.HasVideo {
		streams = append(streams, "video")
	}
	if summary.HasAudio {
		streams = append(streams, "audio")
	}
	r.printLabel(11, "Streams:", strings.Join(streams, ", "))
}

func (r *TerminalReporter) ToolStarted(info ToolStartInfo) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println(strings.ToUpper(info.Tool))
	r.printLabel(8, "Input:", info.InputFile)
	r.printLabel(8, "Output:", info.OutputDir)
	if info.Detail != "" {
		r.printLabel(8, "Options:", info.Detail)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Working [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) PlanComputed(summary PlanSummary) {
	caveat := ""
	if summary.LastShort {
		caveat = " (final unit is shorter)"
	}
	fmt.Printf("  %s %d x %ss%s\n",
		r.bold.Sprint("Plan:"),
		summary.Units,
		util.FormatSeconds(summary.UnitLength),
		caveat)
}

func (r *TerminalReporter) ToolProgress(update ToolProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := update.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	// The displayed percentage never goes backwards even if the underlying
	// stages report out of order.
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := update.Stage
	if update.TotalUnits > 0 {
		desc = fmt.Sprintf("%s %d/%d", update.Stage, update.CurrentUnit, update.TotalUnits)
	}
	if update.Message != "" {
		desc = fmt.Sprintf("%s: %s", desc, update.Message)
	}
	r.progress.Describe(desc)
	r.lastStage = update.Stage
}

func (r *TerminalReporter) ArtifactReady(artifact ArtifactSummary) {
	r.mu.Lock()
	active := r.progress != nil
	r.mu.Unlock()
	if active {
		// Artifacts are summarized on completion while the bar is live.
		return
	}
	fmt.Printf("  - %s (%s)\n", artifact.Name, util.FormatBytes(artifact.Size))
}

func (r *TerminalReporter) ToolComplete(summary ToolOutcome) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	r.printLabel(10, "Artifacts:", fmt.Sprintf("%d", summary.Artifacts))
	r.printLabel(10, "Size:", util.FormatBytes(summary.TotalSize))
	r.printLabel(10, "Time:", util.FormatDuration(summary.ElapsedSec))
	fmt.Printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputDir))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH")
	fmt.Printf("  Processing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	fmt.Printf("\nFile %s of %d\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("BATCH SUMMARY")
	fmt.Printf("  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	fmt.Printf("  Artifacts: %d (%s)\n", summary.TotalArtifacts, util.FormatBytes(summary.TotalSize))
	for _, failure := range summary.Failures {
		fmt.Printf("  - %s: %s\n", failure.Filename, r.red.Sprint(failure.Reason))
	}
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	fmt.Printf("  %s\n", color.New(color.Faint).Sprint(message))
}
