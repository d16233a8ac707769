package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/jvlbi/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float64
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

// printLabel prints a bold label with fixed width padding followed by a value.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("HARDWARE")
	r.printLabel(14, "Hostname:", summary.Hostname)
	r.printLabel(14, "Capture board:", summary.CaptureBoard)
	r.printLabel(14, "Mountpoints:", fmt.Sprintf("%d", summary.MountpointsN))
	r.printLabel(14, "Queue depth:", fmt.Sprintf("%d", summary.QueueDepth))
}

func (r *TerminalReporter) ConnectStarted(summary ConnectSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("CONNECT")
	r.printLabel(12, "Mode:", summary.Mode)
	r.printLabel(12, "Protocol:", summary.Protocol)
	for i, ep := range summary.Endpoints {
		r.printLabel(12, fmt.Sprintf("Endpoint %d:", i+1), ep)
	}
	r.printLabel(12, "Blocksize:", util.FormatBytes(summary.Blocksize))
	r.printLabel(12, "MTU:", fmt.Sprintf("%d", summary.MTU))
	if summary.Compress {
		r.printLabel(12, "Compress:", "enabled")
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
			BarStart:      "Transfer [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) StateChanged(change StateChange) {
	fmt.Printf("  %s %s: %s -> %s\n", r.magenta.Sprint("›"), change.Mode, change.FromState, change.ToState)
}

func (r *TerminalReporter) TransferProgress(progress TransferProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil || progress.BytesTotal == 0 {
		return
	}

	percent := float64(progress.BytesComplete) / float64(progress.BytesTotal) * 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	if percent >= r.maxPercent {
		r.maxPercent = percent
		_ = r.progress.Set64(int64(percent))
	}

	desc := fmt.Sprintf("%s, eta %s", util.FormatRate(progress.Rate), util.FormatDurationFromSecs(int64(progress.ETA.Seconds())))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) TransferComplete(summary TransferOutcome) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("TRANSFER COMPLETE")
	r.printLabel(10, "Mode:", summary.Mode)
	r.printLabel(10, "Moved:", util.FormatBytes(summary.BytesMoved))
	r.printLabel(10, "Duration:", util.FormatDurationFromSecs(int64(summary.Duration.Seconds())))
	r.printLabel(10, "Avg rate:", util.FormatRate(summary.AverageRate))
	if summary.PacketsTotal > 0 {
		r.printLabel(10, "Loss:", fmt.Sprintf("%d/%d packets", summary.PacketsLost, summary.PacketsTotal))
	}
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR (%d) %s\n", err.Code, err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) Verbose(message string) {
	_, _ = color.New(color.Faint).Printf("  %s\n", message)
}
