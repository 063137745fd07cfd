package parsers

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/careerchat/components/document"
	"github.com/bububa/careerchat/components/document/parsers/docx"
	"github.com/bububa/careerchat/components/document/parsers/html"
	"github.com/bububa/careerchat/components/document/parsers/pdf"
	"github.com/bububa/careerchat/components/document/parsers/xlsx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeHTML = "text/html"
)

var textExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".csv":      {},
	".json":     {},
	".yaml":     {},
	".yml":      {},
}

// Detect returns the mime type of a document
func Detect(doc *document.Document) string {
	if _, ok := textExtensions[strings.ToLower(filepath.Ext(doc.Name()))]; ok {
		return "text/plain"
	}
	return mimetype.Detect(doc.Bytes()).String()
}

// ForMime returns the parser for a mime type. Unknown types are copied as is.
func ForMime(mime string) document.Parser {
	base, _, _ := strings.Cut(mime, ";")
	switch strings.ToLower(strings.TrimSpace(base)) {
	case MimePDF:
		return pdf.NewParser()
	case MimeDOCX:
		return new(docx.Parser)
	case MimeXLSX:
		return xlsx.NewParser()
	case MimeHTML, "application/xhtml+xml":
		return html.NewParser()
	}
	return new(document.TextParser)
}

// Parse extracts the text of a document
func Parse(ctx context.Context, doc *document.Document) (string, error) {
	buf := new(bytes.Buffer)
	if err := ForMime(Detect(doc)).Parse(ctx, doc.Reader(), buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
