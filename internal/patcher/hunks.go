package patcher

import (
	"fmt"

	"github.com/sokinpui/fylia.go/internal/diff"
)

// ApplyHunks replays hunks against lines and returns the patched lines. Hunks must be in
// ascending source order. Every context and removed line is checked at its splice point; on
// mismatch a *StaleHunkError is returned and lines is left as it was.
func ApplyHunks(lines []string, hunks []diff.Hunk) ([]string, error) {
	return applyHunks(lines, hunks, false)
}

func applyHunks(lines []string, hunks []diff.Hunk, relocate bool) ([]string, error) {
	work := append([]string(nil), lines...)
	offset := 0
	floor := 0 // first line not yet consumed by an applied hunk

	for i, h := range hunks {
		if i > 0 {
			prev := hunks[i-1]
			if h.SourceStart < prev.SourceStart {
				return nil, fmt.Errorf("%w: %s follows %s", ErrHunkOrder, h.Header(), prev.Header())
			}
			if prev.SourceLength > 0 && h.SourceStart < prev.SourceStart+prev.SourceLength {
				return nil, fmt.Errorf("%w: %s overlaps %s", ErrHunkOrder, h.Header(), prev.Header())
			}
		}

		base := h.SourceStart - 1
		if h.SourceLength == 0 {
			base = h.SourceStart
		}
		at := base + offset
		source := hunkSource(h)

		if err := checkBlock(work, at, source, h); err != nil {
			if !relocate {
				return nil, err
			}
			found, ok := locateBlock(work, source, at, floor)
			if !ok {
				return nil, err
			}
			at = found
			offset = at - base
		}

		replacement := hunkTarget(h, work[at:at+len(source)])
		work = splice(work, at, len(source), replacement)
		offset += len(replacement) - len(source)
		floor = at + len(replacement)
	}
	return work, nil
}

// checkBlock verifies that source sits at position at of lines.
func checkBlock(lines []string, at int, source []string, h diff.Hunk) error {
	if at < 0 || len(source) > len(lines)-at {
		return &StaleHunkError{
			Hunk:   h.Header(),
			Line:   at + 1,
			Reason: fmt.Sprintf("needs %d lines from line %d but the file has %d", len(source), at+1, len(lines)),
		}
	}
	for k, want := range source {
		if got := lines[at+k]; got != want {
			return &StaleHunkError{Hunk: h.Header(), Line: at + k + 1, Want: want, Got: got}
		}
	}
	return nil
}

// hunkSource returns the context and removed lines of h in order.
func hunkSource(h diff.Hunk) []string {
	var out []string
	for _, l := range h.Lines {
		if l.Kind != diff.Added {
			out = append(out, l.Text)
		}
	}
	return out
}

// hunkTarget returns the lines that replace matched. Context lines keep the file's own text,
// which only differs from the hunk after a whitespace-tolerant relocation.
func hunkTarget(h diff.Hunk, matched []string) []string {
	out := make([]string, 0, h.TargetLength)
	k := 0
	for _, l := range h.Lines {
		switch l.Kind {
		case diff.Context:
			out = append(out, matched[k])
			k++
		case diff.Removed:
			k++
		case diff.Added:
			out = append(out, l.Text)
		}
	}
	return out
}

func splice(lines []string, at, remove int, insert []string) []string {
	out := make([]string, 0, len(lines)-remove+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	out = append(out, lines[at+remove:]...)
	return out
}
