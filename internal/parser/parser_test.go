package parser

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokinpui/fylia.go/internal/diff"
	"github.com/sokinpui/fylia.go/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestExtractCodeBlocks(t *testing.T) {
	src := "Intro text.\n\n`main.go`\n```go\npackage main\n```\n\n```\nno hint\n```\n"
	blocks, err := ExtractCodeBlocks([]byte(src))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	require.Equal(t, "go", blocks[0].Lang)
	require.Equal(t, "`main.go`", blocks[0].Hint)
	require.Equal(t, "package main\n", blocks[0].Content)

	require.Equal(t, "", blocks[1].Lang)
	require.Equal(t, "", blocks[1].Hint)
}

func TestExtractFileInstruction(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantPath string
		wantOK   bool
	}{
		{
			name:     "file marker",
			text:     "File: src/app.py\n```python\nprint(1)\n```\n",
			wantPath: "src/app.py",
			wantOK:   true,
		},
		{
			name:     "bold path marker with backticks",
			text:     "Here is the update.\n\n**Path:** `pkg/a.go`\n\n```go\npackage a\n```\n",
			wantPath: "pkg/a.go",
			wantOK:   true,
		},
		{
			name:     "heading marker",
			text:     "### File: docs/readme.md\n\n```markdown\n# hi\n```\n",
			wantPath: "docs/readme.md",
			wantOK:   true,
		},
		{
			name:     "backticked path hint",
			text:     "`web/index.js`\n```js\nconsole.log(1)\n```\n",
			wantPath: "web/index.js",
			wantOK:   true,
		},
		{
			name:   "command in backticks is not a path",
			text:   "Run `go run main.go`\n```sh\necho\n```\n",
			wantOK: false,
		},
		{
			name:   "no marker",
			text:   "Some code:\n```go\npackage x\n```\n",
			wantOK: false,
		},
		{
			name:   "diff blocks are not instructions",
			text:   "File: a.go\n```diff\n--- a/a.go\n+++ b/a.go\n```\n",
			wantOK: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inst, ok := ExtractFileInstruction(tc.text)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				require.Equal(t, tc.wantPath, inst.Path)
			}
		})
	}
}

func TestExtractFileInstruction_Content(t *testing.T) {
	text := "File: a.py\n```python\ndef f():\n    return 1\n```\n\nFile: b.py\n```python\nx = 2\n```\n"

	inst, ok := ExtractFileInstruction(text)
	require.True(t, ok)
	require.Equal(t, Instruction{Path: "a.py", Content: "def f():\n    return 1\n"}, inst)

	all := ExtractFileInstructions(text)
	require.Len(t, all, 2)
	require.Equal(t, "b.py", all[1].Path)
}

func TestExtractDiffBlocks(t *testing.T) {
	patch := "--- a/x.txt\n+++ b/x.txt\n@@ -1 +1 @@\n-a\n+b\n"

	t.Run("fenced", func(t *testing.T) {
		blocks := ExtractDiffBlocks("Apply this:\n\n```diff\n" + patch + "```\n")
		require.Equal(t, []string{patch}, blocks)
	})

	t.Run("bare diff", func(t *testing.T) {
		text := "diff --git a/x.txt b/x.txt\nindex 1..2 100644\n" + patch
		require.Equal(t, []string{text}, ExtractDiffBlocks(text))
	})

	t.Run("unlabelled fence holding a diff", func(t *testing.T) {
		blocks := ExtractDiffBlocks("```\n" + patch + "```\n")
		require.Equal(t, []string{patch}, blocks)
	})

	t.Run("plain prose", func(t *testing.T) {
		require.Empty(t, ExtractDiffBlocks("nothing to see here\n"))
	})
}

func TestCreatePlan(t *testing.T) {
	content := "First a diff:\n\n```diff\n" +
		"--- a/one.go\n+++ b/one.go\n@@ -1 +1 @@\n-a\n+b\n" +
		"--- a/two.py\n+++ b/two.py\n@@ -1 +1 @@\n-c\n+d\n" +
		"```\n\nFile: two.py\n```python\nd\n```\n\nFile: three.go\n```go\npackage three\n```\n"

	plan, err := CreatePlan(content, nil)
	require.NoError(t, err)
	require.Len(t, plan.Documents, 1)
	require.Equal(t, "one.go", plan.Documents[0].Path())
	require.Equal(t, []Instruction{
		{Path: "two.py", Content: "d\n"},
		{Path: "three.go", Content: "package three\n"},
	}, plan.Instructions)

	t.Run("extension filter", func(t *testing.T) {
		plan, err := CreatePlan(content, []string{".go"})
		require.NoError(t, err)
		require.Len(t, plan.Documents, 1)
		require.Equal(t, []Instruction{{Path: "three.go", Content: "package three\n"}}, plan.Instructions)
	})

	t.Run("diff only", func(t *testing.T) {
		plan, err := CreatePlan(content, []string{".diff"})
		require.NoError(t, err)
		require.Empty(t, plan.Instructions)
		var paths []string
		for _, d := range plan.Documents {
			paths = append(paths, d.Path())
		}
		require.Equal(t, []string{"one.go", "two.py"}, paths)
	})

	t.Run("malformed diff", func(t *testing.T) {
		_, err := CreatePlan("```diff\n--- a/x\n+++ b/x\n@@ -1,2 +1,2 @@\n-a\n```\n", nil)
		var perr *diff.ParseError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("nothing", func(t *testing.T) {
		plan, err := CreatePlan("just words", nil)
		require.NoError(t, err)
		require.True(t, plan.IsEmpty())
	})
}
