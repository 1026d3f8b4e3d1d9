package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsDeclaration(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "public void Run()", want: true},
		{line: "    private static int Add(int a, int b)", want: true},
		{line: "\tprotected override string ToString() {", want: true},
		{line: "internal async Task<Order> LoadAsync(Guid id)", want: true},
		{line: "public abstract void Run();", want: false},
		{line: "public int Count { get; set; }", want: false},
		{line: "public class OrderService", want: false},
		{line: "void Run()", want: false},
		{line: "publicvoid Run()", want: false},
		{line: "// public void Run()", want: false},
		{line: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := IsDeclaration(tt.line); got != tt.want {
				t.Errorf("IsDeclaration(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestChunkLines(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantKeys  []string
		wantTexts []string
	}{
		{
			name:      "no declarations yields whole file",
			lines:     []string{"using System;", "", "namespace Shop;"},
			wantKeys:  []string{"Shop.cs_1"},
			wantTexts: []string{"using System;\n\nnamespace Shop;"},
		},
		{
			name:      "empty input",
			lines:     nil,
			wantKeys:  nil,
			wantTexts: nil,
		},
		{
			name:      "blank lines only",
			lines:     []string{"", "   ", "\t"},
			wantKeys:  nil,
			wantTexts: nil,
		},
		{
			name:  "declaration splits and annotates the following chunk",
			lines: []string{
				"public class Shop",
				"{",
				"    public void Buy(int id)",
				"    {",
				"    }",
				"}",
			},
			wantKeys:  []string{"Shop.cs_1", "Shop.cs_2"},
			wantTexts: []string{
				"public class Shop\n{",
				"// METHOD: public void Buy(int id)\npublic void Buy(int id)\n    {\n    }\n}",
			},
		},
		{
			name:      "lone declaration is not annotated",
			lines:     []string{"public void Run()"},
			wantKeys:  []string{"Shop.cs_1"},
			wantTexts: []string{"public void Run()"},
		},
		{
			name:      "declaration on first line opens an unannotated chunk",
			lines:     []string{"public void A()", "{", "}"},
			wantKeys:  []string{"Shop.cs_1"},
			wantTexts: []string{"public void A()\n{\n}"},
		},
		{
			// Same body as above; only a non-empty buffer makes the declaration annotate its chunk.
			name:      "declaration after a leading line annotates its chunk",
			lines:     []string{"using System;", "public void A()", "{", "}"},
			wantKeys:  []string{"Shop.cs_1", "Shop.cs_2"},
			wantTexts: []string{"using System;", "// METHOD: public void A()\npublic void A()\n{\n}"},
		},
		{
			name:      "back-to-back declarations flush once per trigger",
			lines:     []string{"public void A()", "public void B()", "public void C()"},
			wantKeys:  []string{"Shop.cs_1", "Shop.cs_2", "Shop.cs_3"},
			wantTexts: []string{
				"public void A()",
				"// METHOD: public void B()\npublic void B()",
				"// METHOD: public void C()\npublic void C()",
			},
		},
		{
			name:      "blank buffer before a declaration does not consume a sequence number",
			lines:     []string{"", "  ", "public void A()", "{", "}"},
			wantKeys:  []string{"Shop.cs_1"},
			wantTexts: []string{"// METHOD: public void A()\npublic void A()\n{\n}"},
		},
		{
			name:      "statement with parentheses is not a declaration",
			lines:     []string{"var x = 1;", "    public void Log(string m);", "x++;"},
			wantKeys:  []string{"Shop.cs_1"},
			wantTexts: []string{"var x = 1;\n    public void Log(string m);\nx++;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkLines("Shop.cs", tt.lines)

			if len(chunks) != len(tt.wantKeys) {
				t.Fatalf("ChunkLines() returned %d chunks, want %d: %+v", len(chunks), len(tt.wantKeys), chunks)
			}
			for i, chunk := range chunks {
				if chunk.Key != tt.wantKeys[i] {
					t.Errorf("chunk[%d].Key = %q, want %q", i, chunk.Key, tt.wantKeys[i])
				}
				if chunk.Text != tt.wantTexts[i] {
					t.Errorf("chunk[%d].Text = %q, want %q", i, chunk.Text, tt.wantTexts[i])
				}
				if chunk.DocumentName != "Shop.cs" {
					t.Errorf("chunk[%d].DocumentName = %q", i, chunk.DocumentName)
				}
				if chunk.SequenceNumber != i+1 {
					t.Errorf("chunk[%d].SequenceNumber = %d, want %d", i, chunk.SequenceNumber, i+1)
				}
			}
		})
	}
}

func TestChunker_Step(t *testing.T) {
	c := NewChunker("Fold.cs")

	if _, ok := c.Step("public void A()"); ok {
		t.Fatal("first declaration should not emit")
	}
	if _, ok := c.Step("{ }"); ok {
		t.Fatal("body line should not emit")
	}

	chunk, ok := c.Step("private int B(int x)")
	if !ok {
		t.Fatal("second declaration should emit the buffered chunk")
	}
	if chunk.Key != "Fold.cs_1" || chunk.Text != "public void A()\n{ }" {
		t.Errorf("emitted chunk = %+v", chunk)
	}

	chunk, ok = c.Flush()
	if !ok {
		t.Fatal("Flush() should emit the pending chunk")
	}
	if chunk.Key != "Fold.cs_2" || !strings.HasPrefix(chunk.Text, "// METHOD: private int B(int x)\n") {
		t.Errorf("flushed chunk = %+v", chunk)
	}

	if _, ok := c.Flush(); ok {
		t.Error("second Flush() should not emit")
	}
}

// stripAnnotations returns the chunk texts without method annotations.
func stripAnnotations(chunks []Chunk) []string {
	var out []string
	for _, chunk := range chunks {
		text := chunk.Text
		if strings.HasPrefix(text, MethodAnnotationPrefix) {
			text = text[strings.Index(text, "\n")+1:]
		}
		out = append(out, text)
	}
	return out
}

// nonBlankLines returns the trimmed non-blank lines of text.
func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

const sampleSource = `using System;

namespace Shop
{
    public class OrderService
    {
        private readonly IRepo _repo;

        public OrderService(IRepo repo)
        {
            _repo = repo;
        }

        public Order Get(Guid id)
        {
            return _repo.Find(id);
        }
        public void Delete(Guid id) { _repo.Remove(id); }

        internal static bool IsValid(Order o) => o != null;
    }
}
`

func TestChunkLines_Reconstruction(t *testing.T) {
	chunks := ChunkLines("OrderService.cs", SplitLines([]byte(sampleSource)))
	if len(chunks) < 4 {
		t.Fatalf("expected declaration splits, got %d chunks", len(chunks))
	}

	got := nonBlankLines(strings.Join(stripAnnotations(chunks), "\n"))
	want := nonBlankLines(sampleSource)

	if len(got) != len(want) {
		t.Fatalf("reconstructed %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunkLines_Idempotent(t *testing.T) {
	lines := SplitLines([]byte(sampleSource))
	first := ChunkLines("OrderService.cs", lines)
	second := ChunkLines("OrderService.cs", lines)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key || first[i].Text != second[i].Text {
			t.Errorf("chunk %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestChunkLines_TextNeverEmpty(t *testing.T) {
	for _, chunk := range ChunkLines("OrderService.cs", SplitLines([]byte(sampleSource))) {
		if strings.TrimSpace(chunk.Text) == "" {
			t.Errorf("chunk %s has empty text", chunk.Key)
		}
		if chunk.Text != strings.TrimSpace(chunk.Text) {
			t.Errorf("chunk %s text is not trimmed: %q", chunk.Key, chunk.Text)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "empty", content: "", want: nil},
		{name: "single line", content: "a", want: []string{"a"}},
		{name: "trailing newline", content: "a\nb\n", want: []string{"a", "b"}},
		{name: "crlf", content: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "inner blank line", content: "a\n\nb", want: []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines([]byte(tt.content))
			if len(got) != len(tt.want) {
				t.Fatalf("SplitLines(%q) = %q, want %q", tt.content, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("SplitLines(%q)[%d] = %q, want %q", tt.content, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "nested", "Program.cs")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("class P {}\r\npublic static void Main(string[] args)\r\n{\r\n}\r\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	chunks, err := ChunkFile(path)
	if err != nil {
		t.Fatalf("ChunkFile() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("ChunkFile() = %d chunks, want 2", len(chunks))
	}
	if chunks[0].DocumentName != "Program.cs" || chunks[0].Key != "Program.cs_1" {
		t.Errorf("chunk[0] = %+v", chunks[0])
	}
	if chunks[1].Text != "// METHOD: public static void Main(string[] args)\npublic static void Main(string[] args)\n{\n}" {
		t.Errorf("chunk[1].Text = %q", chunks[1].Text)
	}

	blank := filepath.Join(dir, "Blank.cs")
	if err := os.WriteFile(blank, []byte("\n  \n\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	chunks, err = ChunkFile(blank)
	if err != nil {
		t.Fatalf("ChunkFile(blank) error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("ChunkFile(blank) = %d chunks, want 0", len(chunks))
	}

	if _, err := ChunkFile(filepath.Join(dir, "missing.cs")); err == nil {
		t.Error("ChunkFile() on a missing file should fail")
	}
}
