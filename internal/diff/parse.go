package diff

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports diff text that does not follow the unified diff grammar, including
// hunks whose declared line counts disagree with their lines.
type ParseError struct {
	Line int // 1-based line in the diff text
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid diff at line %d: %s", e.Line, e.Msg)
}

var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

type parser struct {
	lines []string
	idx   int
}

func (p *parser) eof() bool { return p.idx >= len(p.lines) }

func (p *parser) peek() string { return p.lines[p.idx] }

func (p *parser) lineNumber() int { return p.idx + 1 }

func (p *parser) errorf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Parse splits unified diff text into one Document per file section, in order of
// appearance. Lines outside file sections (git "diff --git" and "index" preambles, prose) are
// skipped. Text with no file section at all yields no documents.
func Parse(text string) ([]Document, error) {
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	p := &parser{lines: lines}

	var docs []Document
	var cur *Document
	flush := func() {
		if cur != nil {
			docs = append(docs, *cur)
			cur = nil
		}
	}

	for !p.eof() {
		line := p.peek()
		switch {
		case p.atFileHeader():
			flush()
			cur = &Document{
				SourceLabel: strings.TrimSpace(strings.TrimPrefix(line, "--- ")),
				TargetLabel: strings.TrimSpace(strings.TrimPrefix(p.lines[p.idx+1], "+++ ")),
			}
			p.idx += 2

		case strings.HasPrefix(line, "@@"):
			if cur == nil {
				return nil, p.errorf(p.lineNumber(), "hunk without a preceding ---/+++ file header")
			}
			headerLine := p.lineNumber()
			h, err := p.parseHunk()
			if err != nil {
				return nil, err
			}
			if n := len(cur.Hunks); n > 0 {
				if err := checkOrder(cur.Hunks[n-1], h); err != nil {
					return nil, p.errorf(headerLine, "%v", err)
				}
			}
			cur.Hunks = append(cur.Hunks, h)

		case cur != nil && len(cur.Hunks) > 0 && isHunkBodyLine(line):
			h := cur.Hunks[len(cur.Hunks)-1]
			return nil, p.errorf(p.lineNumber(), "hunk %s has more lines than declared", h.Header())

		default:
			p.idx++
		}
	}
	flush()
	return docs, nil
}

// ParseDocument parses text that must hold exactly one file section.
func ParseDocument(text string) (Document, error) {
	docs, err := Parse(text)
	if err != nil {
		return Document{}, err
	}
	if len(docs) != 1 {
		return Document{}, &ParseError{Line: 1, Msg: fmt.Sprintf("expected one file section, found %d", len(docs))}
	}
	return docs[0], nil
}

func (p *parser) atFileHeader() bool {
	return strings.HasPrefix(p.peek(), "--- ") &&
		p.idx+1 < len(p.lines) &&
		strings.HasPrefix(p.lines[p.idx+1], "+++ ")
}

func isHunkBodyLine(line string) bool {
	return line != "" && strings.ContainsRune(" +-\\", rune(line[0]))
}

func (p *parser) parseHunk() (Hunk, error) {
	headerLine := p.lineNumber()
	m := hunkHeaderRegex.FindStringSubmatch(p.peek())
	if m == nil {
		return Hunk{}, p.errorf(headerLine, "malformed hunk header %q", p.peek())
	}
	var nums [4]int
	for i, def := range []int{0, 1, 0, 1} {
		n, err := atoiDefault(m[i+1], def)
		if err != nil {
			return Hunk{}, p.errorf(headerLine, "hunk header %q: %v", p.peek(), err)
		}
		nums[i] = n
	}
	p.idx++

	h := Hunk{
		SourceStart:  nums[0],
		SourceLength: nums[1],
		TargetStart:  nums[2],
		TargetLength: nums[3],
	}

	var source, target int
	for source < h.SourceLength || target < h.TargetLength {
		if p.eof() {
			return Hunk{}, p.errorf(headerLine, "hunk %s ends after %d source and %d target lines", h.Header(), source, target)
		}
		line := p.peek()

		var kind LineKind
		var text string
		switch {
		case line == "" || line == "\r":
			// Editors and chat clients strip the space off blank context lines.
			kind, text = Context, line+"\n"
		case line[0] == ' ':
			kind, text = Context, line[1:]+"\n"
		case line[0] == '-':
			kind, text = Removed, line[1:]+"\n"
		case line[0] == '+':
			kind, text = Added, line[1:]+"\n"
		case line[0] == '\\':
			if err := stripLastNewline(&h); err != nil {
				return Hunk{}, p.errorf(p.lineNumber(), "%v", err)
			}
			p.idx++
			continue
		default:
			return Hunk{}, p.errorf(p.lineNumber(), "hunk %s ends after %d source and %d target lines", h.Header(), source, target)
		}

		if kind != Added {
			source++
		}
		if kind != Removed {
			target++
		}
		if source > h.SourceLength || target > h.TargetLength {
			return Hunk{}, p.errorf(p.lineNumber(), "hunk %s has more %s lines than declared", h.Header(), kind)
		}
		h.Lines = append(h.Lines, Line{Kind: kind, Text: text})
		p.idx++
	}

	if !p.eof() && strings.HasPrefix(p.peek(), `\`) {
		if err := stripLastNewline(&h); err != nil {
			return Hunk{}, p.errorf(p.lineNumber(), "%v", err)
		}
		p.idx++
	}
	return h, nil
}

func stripLastNewline(h *Hunk) error {
	if len(h.Lines) == 0 {
		return fmt.Errorf("%q before any hunk line", NoNewlineMarker)
	}
	last := &h.Lines[len(h.Lines)-1]
	last.Text = strings.TrimSuffix(last.Text, "\n")
	return nil
}

// checkOrder enforces ascending, non-overlapping source ranges between consecutive hunks.
func checkOrder(prev, next Hunk) error {
	if next.SourceStart < prev.SourceStart {
		return fmt.Errorf("hunk %s starts before previous hunk %s", next.Header(), prev.Header())
	}
	if prev.SourceLength > 0 && next.SourceStart < prev.SourceStart+prev.SourceLength {
		return fmt.Errorf("hunk %s overlaps previous hunk %s", next.Header(), prev.Header())
	}
	return nil
}

// maxLineNumber bounds header numbers so start+length arithmetic cannot overflow.
const maxLineNumber = math.MaxInt32

// atoiDefault parses a header number; an empty optional length yields def.
func atoiDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > maxLineNumber {
		return 0, fmt.Errorf("line number %s out of range", s)
	}
	return n, nil
}
