// Package parser turns free-form text, such as a chat reply in markdown, into the diffs and
// whole-file contents it proposes.
package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sokinpui/fylia.go/internal/diff"
	"github.com/sokinpui/fylia.go/internal/ui"
)

// Instruction is a proposed whole-file content for Path.
type Instruction struct {
	Path    string
	Content string
}

// Plan is everything a piece of text proposes to change.
type Plan struct {
	// Documents come from diff blocks, or from the whole text when it is a bare diff.
	Documents []diff.Document
	// Instructions come from code blocks introduced by a path marker.
	Instructions []Instruction
}

// IsEmpty reports whether the plan proposes nothing.
func (p *Plan) IsEmpty() bool {
	return len(p.Documents) == 0 && len(p.Instructions) == 0
}

var (
	// pathMarkerRegex matches "File: x", "**Path:** `x`", "### File: x" and similar.
	pathMarkerRegex = regexp.MustCompile(`(?i)^[\s*_#>-]*(?:file|path)[*_]*\s*:[*_]*\s*(.+?)\s*$`)
	pathInHintRegex = regexp.MustCompile("`([^`\n]+)`")
	diffHeaderRegex = regexp.MustCompile(`(?m)^--- .*\n\+\+\+ .*\n@@ `)
)

var diffLangs = map[string]bool{"diff": true, "patch": true, "udiff": true}

// ExtractFileInstruction returns the first code block introduced by a path marker.
func ExtractFileInstruction(text string) (Instruction, bool) {
	instructions := ExtractFileInstructions(text)
	if len(instructions) == 0 {
		return Instruction{}, false
	}
	return instructions[0], true
}

// ExtractFileInstructions returns every non-diff code block introduced by a path marker,
// in document order.
func ExtractFileInstructions(text string) []Instruction {
	blocks, err := ExtractCodeBlocks([]byte(text))
	if err != nil {
		return nil
	}
	var out []Instruction
	for _, block := range blocks {
		if diffLangs[block.Lang] {
			continue
		}
		path := extractPathFromHint(block.Hint)
		if path == "" {
			continue
		}
		out = append(out, Instruction{Path: path, Content: block.Content})
	}
	return out
}

// ExtractDiffBlocks returns the bodies of diff code blocks. When the text has no code blocks
// but is itself a unified diff, the whole text is returned.
func ExtractDiffBlocks(text string) []string {
	if isBareDiff(text) {
		return []string{text}
	}
	blocks, err := ExtractCodeBlocks([]byte(text))
	if err != nil {
		return nil
	}
	var diffs []string
	for _, block := range blocks {
		if diffLangs[block.Lang] || (block.Lang == "" && diffHeaderRegex.MatchString(block.Content)) {
			diffs = append(diffs, block.Content)
		}
	}
	if len(blocks) == 0 && diffHeaderRegex.MatchString(text) {
		diffs = append(diffs, text)
	}
	return diffs
}

// isBareDiff reports whether text starts like the output of diff or git diff.
func isBareDiff(text string) bool {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	for _, prefix := range []string{"diff ", "--- ", "Index: "} {
		if strings.HasPrefix(trimmed, prefix) {
			return diffHeaderRegex.MatchString(text)
		}
	}
	return false
}

// CreatePlan extracts diffs and file instructions from content. Extensions, when given,
// restrict which files are touched; the single extension ".diff" keeps only diff blocks.
// A whole-file instruction replaces any diff for the same path.
func CreatePlan(content string, extensions []string) (*Plan, error) {
	diffOnly := len(extensions) == 1 && extensions[0] == ".diff"
	filter := extensions
	if diffOnly {
		filter = nil
	}

	plan := &Plan{}
	replaced := make(map[string]bool)
	if !diffOnly {
		for _, inst := range ExtractFileInstructions(content) {
			if !hasAllowedExtension(inst.Path, filter) {
				continue
			}
			plan.Instructions = append(plan.Instructions, inst)
			replaced[inst.Path] = true
		}
	}

	for i, block := range ExtractDiffBlocks(content) {
		docs, err := diff.Parse(block)
		if err != nil {
			return nil, fmt.Errorf("diff block %d: %w", i+1, err)
		}
		if len(docs) == 0 {
			ui.Warning("Found a diff block without file headers. Skipping.")
			continue
		}
		for _, doc := range docs {
			path := doc.Path()
			if replaced[path] || !hasAllowedExtension(path, filter) {
				continue
			}
			plan.Documents = append(plan.Documents, doc)
		}
	}
	return plan, nil
}

// extractPathFromHint looks for a "File:"/"Path:" marker on any line of the hint, last line
// first, and falls back to a lone backticked path.
func extractPathFromHint(hint string) string {
	lines := strings.Split(strings.TrimSpace(hint), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if match := pathMarkerRegex.FindStringSubmatch(lines[i]); len(match) > 1 {
			if path := cleanPath(match[1]); path != "" {
				return path
			}
		}
	}

	// A path hint must be enclosed in backticks, e.g., `path/to/file.go`
	if match := pathInHintRegex.FindStringSubmatch(hint); len(match) > 1 {
		path := strings.TrimSpace(match[1])
		// Disallow spaces to avoid capturing commands like `go run main.go` as a path.
		if !strings.Contains(path, " ") {
			return path
		}
	}

	return ""
}

func cleanPath(raw string) string {
	if match := pathInHintRegex.FindStringSubmatch(raw); len(match) > 1 {
		raw = match[1]
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`*_'\"")
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func hasAllowedExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, allowedExt := range extensions {
		if ext == allowedExt {
			return true
		}
	}
	return false
}
