package docx

import (
	"bytes"
	"context"
	"io"

	"github.com/fumiama/go-docx"

	"github.com/bububa/careerchat/components/document"
)

// Parser is a parser which parse docx paragraphs and tables to text
type Parser struct{}

var _ document.Parser = (*Parser)(nil)

// Parse try to parse a docx content from a bytes.Reader and write to an io.Writer
func (p *Parser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	doc, err := docx.Parse(reader, reader.Size())
	if err != nil {
		return err
	}
	var written int
	for _, it := range doc.Document.Body.Items {
		var content string
		switch t := it.(type) {
		case *docx.Paragraph:
			content = t.String()
		case *docx.Table:
			content = t.String()
		}
		if content == "" {
			continue
		}
		if written > 0 {
			if _, err := writer.Write([]byte{'\n', '\n'}); err != nil {
				return err
			}
		}
		if _, err := writer.Write([]byte(content)); err != nil {
			return err
		}
		written++
	}
	return nil
}
