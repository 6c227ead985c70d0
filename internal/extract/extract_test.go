package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeDocx(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}

	var b strings.Builder
	b.WriteString(`<w:document><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	if _, err := w.Write([]byte(b.String())); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := New(zap.NewNop())

	tests := []struct {
		name     string
		path     string
		contains []string
	}{
		{
			name:     "plain text",
			path:     writeFile(t, dir, "a.txt", "Python developer\n5 years"),
			contains: []string{"Python developer", "5 years"},
		},
		{
			name:     "markdown",
			path:     writeFile(t, dir, "b.md", "# Jane\n- Docker"),
			contains: []string{"Jane", "Docker"},
		},
		{
			name:     "html",
			path:     writeFile(t, dir, "c.html", "<html><body><h1>Jane Doe</h1><p>Kubernetes engineer</p><script>var x;</script></body></html>"),
			contains: []string{"Jane Doe", "Kubernetes engineer"},
		},
		{
			name:     "docx",
			path:     writeDocx(t, dir, "d.docx", "Name: John Smith", "AWS and Docker"),
			contains: []string{"Name: John Smith", "AWS and Docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text, err := e.Text(tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Fatalf("expected %q in %q", want, text)
				}
			}
		})
	}
}

func TestTextDocxParagraphsOnSeparateLines(t *testing.T) {
	t.Parallel()

	path := writeDocx(t, t.TempDir(), "r.docx", "first", "second")
	text, err := New(nil).Text(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "first\nsecond" {
		t.Fatalf("unexpected docx text: %q", text)
	}
}

func TestTextUnsupported(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "photo.png", "binary")
	if _, err := New(nil).Text(path); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if IsSupported(path) {
		t.Fatalf("png must not be supported")
	}
	if !IsSupported("CV.PDF") {
		t.Fatalf("extension check must be case-insensitive")
	}
}

func TestTextBrokenPDF(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "broken.pdf", "this is not a pdf")
	if _, err := New(nil).Text(path); err == nil {
		t.Fatalf("expected an error for a broken pdf")
	}
}

func TestTextWarnsOnEmpty(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	path := writeFile(t, t.TempDir(), "blank.txt", "   \n\t")

	text, err := New(zap.New(core)).Text(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(text) != "" {
		t.Fatalf("expected blank text, got %q", text)
	}
	if observed.FilterMessage("no text extracted").Len() != 1 {
		t.Fatalf("expected a warning about empty text")
	}
}

func TestSupportedExtensions(t *testing.T) {
	t.Parallel()

	got := strings.Join(SupportedExtensions(), ",")
	if got != ".docx,.htm,.html,.md,.pdf,.txt" {
		t.Fatalf("unexpected extensions: %s", got)
	}
}
