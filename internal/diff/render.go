package diff

import (
	"fmt"
	"strings"
)

// NoNewlineMarker follows a hunk line whose text has no trailing newline.
const NoNewlineMarker = `\ No newline at end of file`

// String renders d as unified diff text. A document without hunks renders as "".
func (d Document) String() string {
	if d.IsEmpty() {
		return ""
	}
	var b strings.Builder
	d.render(&b)
	return b.String()
}

// render writes d into b, header lines included.
func (d Document) render(b *strings.Builder) {
	fmt.Fprintf(b, "--- %s\n", d.SourceLabel)
	fmt.Fprintf(b, "+++ %s\n", d.TargetLabel)
	for _, h := range d.Hunks {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteByte(l.Kind.prefix())
			if strings.HasSuffix(l.Text, "\n") {
				b.WriteString(l.Text)
				continue
			}
			b.WriteString(l.Text)
			b.WriteByte('\n')
			b.WriteString(NoNewlineMarker)
			b.WriteByte('\n')
		}
	}
}

// Header returns the "@@ -s,l +s,l @@" marker line of h.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.SourceStart, h.SourceLength, h.TargetStart, h.TargetLength)
}

// Render concatenates several documents into one multi-file diff.
func Render(docs []Document) string {
	var b strings.Builder
	for _, d := range docs {
		if d.IsEmpty() {
			continue
		}
		d.render(&b)
	}
	return b.String()
}
