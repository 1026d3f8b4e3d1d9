package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"codebase-ai/internal/rag"
)

// codeLanguage tags fenced chunks for syntax highlighting on the client.
const codeLanguage = "csharp"

type answerPageData struct {
	Question string
	Content  template.HTML
}

var answerTemplate = template.Must(template.New("answer").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Question}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0 auto; padding: 2rem; max-width: 960px; line-height: 1.6; }
    pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
    h2 { font-size: 1rem; margin-top: 2rem; }
  </style>
</head>
<body>
  <h1>{{.Question}}</h1>
  {{.Content}}
</body>
</html>
`))

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

func renderMarkdown(md goldmark.Markdown, source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// answerMarkdown lays out retrieved chunks as one heading and fenced code block each.
func answerMarkdown(resp rag.AskResponse) string {
	if len(resp.References) == 0 {
		return resp.Answer + "\n"
	}

	var b strings.Builder
	for _, ref := range resp.References {
		title := fmt.Sprintf("%s (chunk %d)", ref.DocumentName, ref.SequenceNumber)
		if ref.RelPath != "" {
			title += " - " + ref.RelPath
		}
		fence := codeFence(ref.Text)
		fmt.Fprintf(&b, "## %s\n\n%s%s\n%s\n%s\n\n", title, fence, codeLanguage, ref.Text, fence)
	}
	return b.String()
}

// codeFence returns a backtick fence longer than any backtick run in text.
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}
