// Package diff builds, renders and parses unified diffs of text files.
//
// Text is handled as a sequence of lines where every line keeps its trailing "\n" (only the
// last line of a text may lack one). Joining the lines back with no separator reproduces the
// original bytes, which is what lets a diff round-trip trailing-newline differences.
package diff

import (
	"fmt"
	"strings"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// DevNull is the label used by diff tools for a missing side.
const DevNull = "/dev/null"

// LineKind tags a line of a hunk.
type LineKind int

const (
	Context LineKind = iota // present on both sides
	Removed                 // present only in the source
	Added                   // present only in the target
)

func (k LineKind) prefix() byte {
	switch k {
	case Removed:
		return '-'
	case Added:
		return '+'
	default:
		return ' '
	}
}

func (k LineKind) String() string {
	switch k {
	case Context:
		return "context"
	case Removed:
		return "removed"
	case Added:
		return "added"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// Line is one line of a hunk. Text includes the trailing newline when the line had one.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a contiguous region of change.
//
// SourceStart and TargetStart are 1-based. When a length is zero the matching start names
// the line after which the change sits, so an insertion into an empty file is "-0,0".
type Hunk struct {
	SourceStart  int
	SourceLength int
	TargetStart  int
	TargetLength int
	Lines        []Line
}

// Counts returns the number of context, removed and added lines in h.
func (h Hunk) Counts() (context, removed, added int) {
	for _, l := range h.Lines {
		switch l.Kind {
		case Context:
			context++
		case Removed:
			removed++
		case Added:
			added++
		}
	}
	return context, removed, added
}

// Validate checks that the declared lengths agree with the tagged lines.
func (h Hunk) Validate() error {
	context, removed, added := h.Counts()
	if context+removed != h.SourceLength {
		return fmt.Errorf("hunk -%d,%d: source length %d does not match %d context/removed lines",
			h.SourceStart, h.SourceLength, h.SourceLength, context+removed)
	}
	if context+added != h.TargetLength {
		return fmt.Errorf("hunk +%d,%d: target length %d does not match %d context/added lines",
			h.TargetStart, h.TargetLength, h.TargetLength, context+added)
	}
	return nil
}

// sourceLines returns the lines h expects to find in the source, in order.
func (h Hunk) sourceLines() []string {
	var out []string
	for _, l := range h.Lines {
		if l.Kind != Added {
			out = append(out, l.Text)
		}
	}
	return out
}

// Document is the unified diff of a single file.
type Document struct {
	SourceLabel string
	TargetLabel string
	Hunks       []Hunk
}

// IsEmpty reports whether d describes no change.
func (d Document) IsEmpty() bool {
	return len(d.Hunks) == 0
}

// IsCreation reports whether the source side is /dev/null.
func (d Document) IsCreation() bool {
	return labelPath(d.SourceLabel) == DevNull
}

// IsDeletion reports whether the target side is /dev/null.
func (d Document) IsDeletion() bool {
	return labelPath(d.TargetLabel) == DevNull
}

// Path returns the file the document applies to: the target label with any "b/" prefix
// and trailing timestamp removed, or the source label when the target is /dev/null.
func (d Document) Path() string {
	if p := labelPath(d.TargetLabel); p != "" && p != DevNull {
		return stripSidePrefix(p, "b/")
	}
	if p := labelPath(d.SourceLabel); p != "" && p != DevNull {
		return stripSidePrefix(p, "a/")
	}
	return ""
}

// Stats returns the number of added and removed lines across all hunks.
func (d Document) Stats() (added, removed int) {
	for _, h := range d.Hunks {
		_, r, a := h.Counts()
		added += a
		removed += r
	}
	return added, removed
}

// Validate checks every hunk and the ordering invariant: hunks appear in non-decreasing
// source order and never overlap on the source side.
func (d Document) Validate() error {
	for i, h := range d.Hunks {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("hunk %d: %w", i+1, err)
		}
		if i > 0 {
			if err := checkOrder(d.Hunks[i-1], h); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reverse returns the diff that undoes d.
func (d Document) Reverse() Document {
	r := Document{
		SourceLabel: swapSidePrefix(d.TargetLabel, "b/", "a/"),
		TargetLabel: swapSidePrefix(d.SourceLabel, "a/", "b/"),
		Hunks:       make([]Hunk, len(d.Hunks)),
	}
	for i, h := range d.Hunks {
		rh := Hunk{
			SourceStart:  h.TargetStart,
			SourceLength: h.TargetLength,
			TargetStart:  h.SourceStart,
			TargetLength: h.SourceLength,
			Lines:        make([]Line, 0, len(h.Lines)),
		}
		// Keep removed-before-added order inside each change run.
		var removed, added []Line
		flush := func() {
			rh.Lines = append(rh.Lines, removed...)
			rh.Lines = append(rh.Lines, added...)
			removed, added = nil, nil
		}
		for _, l := range h.Lines {
			switch l.Kind {
			case Added:
				removed = append(removed, Line{Kind: Removed, Text: l.Text})
			case Removed:
				added = append(added, Line{Kind: Added, Text: l.Text})
			default:
				flush()
				rh.Lines = append(rh.Lines, l)
			}
		}
		flush()
		r.Hunks[i] = rh
	}
	return r
}

// SplitLines splits text into lines that keep their trailing "\n".
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// labelPath drops a tab-separated timestamp from a header label.
func labelPath(label string) string {
	if i := strings.IndexByte(label, '\t'); i >= 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}

func stripSidePrefix(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func swapSidePrefix(label, from, to string) string {
	if strings.HasPrefix(label, from) {
		return to + strings.TrimPrefix(label, from)
	}
	return label
}
