package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Builder computes unified diffs with a configurable context margin.
type Builder struct {
	// Context is the number of unchanged lines kept on each side of a change.
	Context int
}

// BuildDiff diffs oldContent to newContent with DefaultContext lines of context. The label is
// rendered as "a/<label>" and "b/<label>".
//
//	doc := diff.BuildDiff(before, after, "main.go")
//	fmt.Print(doc.String())
func BuildDiff(oldContent, newContent, label string) Document {
	return Builder{Context: DefaultContext}.Build(oldContent, newContent, label)
}

// Build diffs oldContent to newContent. It performs no I/O and never modifies its inputs.
func (b Builder) Build(oldContent, newContent, label string) Document {
	doc := Document{SourceLabel: "a/" + label, TargetLabel: "b/" + label}
	if oldContent == newContent {
		return doc
	}
	context := b.Context
	if context < 0 {
		context = 0
	}
	doc.Hunks = groupHunks(lineEdits(oldContent, newContent), context)
	return doc
}

// edit is one line of the full edit script, with its 0-based position on each side.
type edit struct {
	kind LineKind
	text string
	old  int // number of source lines before this edit
	new  int // number of target lines before this edit
}

// lineEdits returns the minimal line edit script from oldContent to newContent. Inside each
// change run every removed line precedes every added line.
func lineEdits(oldContent, newContent string) []edit {
	dmp := diffmatchpatch.New()
	// No deadline: the bisection always runs to the minimal script.
	dmp.DiffTimeout = 0

	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldContent, newContent)
	diffs := dmp.DiffMainRunes(rOld, rNew, false)

	decode := func(s string) []string {
		out := make([]string, 0, len(s))
		for _, r := range s {
			if idx := int(r); idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var (
		edits      []edit
		dels, ins  []string
		oldN, newN int
	)
	flush := func() {
		for _, t := range dels {
			edits = append(edits, edit{kind: Removed, text: t, old: oldN, new: newN})
			oldN++
		}
		for _, t := range ins {
			edits = append(edits, edit{kind: Added, text: t, old: oldN, new: newN})
			newN++
		}
		dels, ins = nil, nil
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for _, t := range decode(d.Text) {
				edits = append(edits, edit{kind: Context, text: t, old: oldN, new: newN})
				oldN++
				newN++
			}
		case diffmatchpatch.DiffDelete:
			dels = append(dels, decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, decode(d.Text)...)
		}
	}
	flush()
	return edits
}

// groupHunks cuts the edit script into hunks. Change runs separated by at most 2*context
// unchanged lines share a hunk.
func groupHunks(edits []edit, context int) []Hunk {
	var hunks []Hunk
	i := 0
	for i < len(edits) {
		if edits[i].kind == Context {
			i++
			continue
		}

		start := i - context
		if start < 0 {
			start = 0
		}
		// Leading context never reaches into a previous hunk: the previous hunk ended at
		// most context lines past its last change, and the gap was larger than 2*context.
		end := i
		for end < len(edits) {
			for end < len(edits) && edits[end].kind != Context {
				end++
			}
			gap := end
			for gap < len(edits) && edits[gap].kind == Context {
				gap++
			}
			if gap < len(edits) && gap-end <= 2*context {
				end = gap
				continue
			}
			end += min(context, gap-end)
			break
		}

		hunks = append(hunks, makeHunk(edits[start:end]))
		i = end
	}
	return hunks
}

func makeHunk(edits []edit) Hunk {
	h := Hunk{Lines: make([]Line, 0, len(edits))}
	for _, e := range edits {
		h.Lines = append(h.Lines, Line{Kind: e.kind, Text: e.text})
		switch e.kind {
		case Context:
			h.SourceLength++
			h.TargetLength++
		case Removed:
			h.SourceLength++
		case Added:
			h.TargetLength++
		}
	}
	first := edits[0]
	h.SourceStart = first.old + 1
	if h.SourceLength == 0 {
		h.SourceStart = first.old
	}
	h.TargetStart = first.new + 1
	if h.TargetLength == 0 {
		h.TargetStart = first.new
	}
	return h
}
