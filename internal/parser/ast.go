package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock represents a parsed code block from markdown content.
type CodeBlock struct {
	// Hint is the raw text of the paragraph or heading immediately preceding the code block.
	Hint string
	// Lang is the first word of the info string (e.g., "go", "diff").
	Lang string
	// Content is the raw text inside the code block, every line newline-terminated.
	Content string
}

// ExtractCodeBlocks uses a markdown AST to find all fenced code blocks
// and their preceding paragraph or heading, which is treated as a hint.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fencedCodeBlock, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var block CodeBlock
		if fencedCodeBlock.Info != nil {
			block.Lang = strings.ToLower(string(fencedCodeBlock.Language(source)))
		}
		block.Content = string(rawLines(fencedCodeBlock, source))

		if prev := fencedCodeBlock.PreviousSibling(); prev != nil {
			switch prev.(type) {
			case *ast.Paragraph, *ast.Heading:
				block.Hint = strings.TrimSpace(string(rawLines(prev, source)))
			}
		}

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return blocks, nil
}

// rawLines returns the source text of a block node's lines, each ending in a newline.
func rawLines(n ast.Node, source []byte) []byte {
	var content bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		value := line.Value(source)
		content.Write(value)
		if !bytes.HasSuffix(value, []byte("\n")) {
			content.WriteByte('\n')
		}
	}
	return content.Bytes()
}
