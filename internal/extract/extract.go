// Package extract pulls plain text out of resume and job description files.
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"jaytaylor.com/html2text"
)

// ErrUnsupported is returned for file extensions the extractor does not handle.
var ErrUnsupported = errors.New("unsupported file format")

var (
	xmlTags      = regexp.MustCompile(`<[^>]+>`)
	inlineSpaces = regexp.MustCompile(`[ \t\r\f\v]+`)
)

type readerFunc func(e *Extractor, path string) (string, error)

var readers = map[string]readerFunc{
	".pdf":  (*Extractor).pdfText,
	".docx": (*Extractor).docxText,
	".txt":  (*Extractor).plainText,
	".md":   (*Extractor).plainText,
	".html": (*Extractor).htmlText,
	".htm":  (*Extractor).htmlText,
}

// SupportedExtensions lists the handled extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(readers))
	for ext := range readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether path has a handled extension.
func IsSupported(path string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extractor reads files into raw text. An empty result with a nil error means
// the file had no extractable text (a scanned PDF, for instance).
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Text dispatches on the file extension.
func (e *Extractor) Text(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	read, ok := readers[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	text, err := read(e, path)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		e.logger.Warn("no text extracted", zap.String("path", path), zap.String("hint", "file may require OCR"))
	}

	return text, nil
}

func (e *Extractor) pdfText(path string) (text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading pdf %s: %v", path, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf %s: %w", path, err)
	}

	parts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		content, err := pageText(r, i)
		if err != nil {
			e.logger.Error("failed to extract text from page",
				zap.String("path", path),
				zap.Int("page", i),
				zap.Error(err),
			)
			continue
		}
		if content != "" {
			parts = append(parts, content)
		}
	}

	return strings.Join(parts, "\n"), nil
}

func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", num, rec)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (e *Extractor) docxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening docx %s: %w", path, err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		break
	}
	if len(docXML) == 0 {
		return "", fmt.Errorf("no document.xml found in %s", path)
	}

	xml := string(docXML)
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	return collapse(xmlTags.ReplaceAllString(xml, " ")), nil
}

func (e *Extractor) plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *Extractor) htmlText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := html2text.FromString(string(data), html2text.Options{TextOnly: true})
	if err != nil {
		return "", fmt.Errorf("converting html %s: %w", path, err)
	}
	return text, nil
}

// collapse squeezes horizontal whitespace and drops blank lines, keeping line breaks.
func collapse(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")

	var lines []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(inlineSpaces.ReplaceAllString(l, " "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}
