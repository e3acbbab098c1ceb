package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	PromptColor  = color.New(color.FgMagenta)

	AddedColor   = color.New(color.FgGreen)
	RemovedColor = color.New(color.FgRed)
	HunkColor    = color.New(color.FgCyan)
	FileColor    = color.New(color.Bold)
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects log output and returns the previous writer. The TUI uses it to keep
// log lines from tearing the screen.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(writer(), format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(writer(), format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(writer(), format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(writer(), format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(writer(), format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(writer(), "  "+format+"\n", a...)
}

func Prompt(format string, a ...interface{}) string {
	return PromptColor.Sprintf(format, a...)
}

// ColorizeDiff colors the lines of a rendered unified diff.
func ColorizeDiff(text string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			b.WriteString(FileColor.Sprint(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(HunkColor.Sprint(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(AddedColor.Sprint(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(RemovedColor.Sprint(body))
		default:
			b.WriteString(body)
		}
		b.WriteString(nl)
	}
	return b.String()
}

// PrintDiff writes a colored unified diff to w.
func PrintDiff(w io.Writer, text string) {
	fmt.Fprint(w, ColorizeDiff(text))
}

// --- Summaries ---

func printList(items []string) {
	w := writer()
	for _, f := range items {
		fmt.Fprintf(w, "  - %s\n", f)
	}
}

func PrintUpdateSummary(modified, created, deleted, failed []string) {
	Header("\n--- Update Summary ---")

	if len(modified) == 0 && len(created) == 0 && len(deleted) == 0 && len(failed) == 0 {
		Info("No files were updated.")
		return
	}

	if len(modified) > 0 {
		Success("Modified %d file(s):", len(modified))
		printList(modified)
	}
	if len(created) > 0 {
		Success("Created %d new file(s):", len(created))
		printList(created)
	}
	if len(deleted) > 0 {
		Success("Deleted %d file(s):", len(deleted))
		printList(deleted)
	}
	if len(failed) > 0 {
		Error("Failed to process %d file(s):", len(failed))
		printList(failed)
	}
}

func PrintRevertSummary(reverted, failed []string) {
	Header("\n--- Revert Summary ---")
	if len(reverted) > 0 {
		Success("Successfully reverted %d file(s):", len(reverted))
		printList(reverted)
	}
	if len(failed) > 0 {
		Error("Failed to revert %d file(s):", len(failed))
		printList(failed)
	}
}

func PrintRedoSummary(redone, failed []string) {
	Header("\n--- Redo Summary ---")
	if len(redone) > 0 {
		Success("Successfully redid %d file(s):", len(redone))
		printList(redone)
	}
	if len(failed) > 0 {
		Error("Failed to redo %d file(s):", len(failed))
		printList(failed)
	}
}
