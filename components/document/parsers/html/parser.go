package html

import (
	"bytes"
	"context"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/careerchat/components/document"
)

// DefaultBoilerplate is removed before conversion
const DefaultBoilerplate = "script, style, noscript, iframe, nav, footer, form"

// Parser is a parser which parse html content to markdown
type Parser struct {
	boilerplate string
	opts        []converter.ConvertOptionFunc
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

// WithBoilerplate set css selector of elements removed before conversion
func WithBoilerplate(selector string) Option {
	return func(p *Parser) {
		p.boilerplate = selector
	}
}

func WithConvertOptions(opts ...converter.ConvertOptionFunc) Option {
	return func(p *Parser) {
		p.opts = opts
	}
}

func NewParser(opts ...Option) *Parser {
	ret := &Parser{boilerplate: DefaultBoilerplate}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse try to parse a html content from a bytes.Reader into a markdown content then write to an io.Writer
func (p *Parser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return err
	}
	if p.boilerplate != "" {
		doc.Find(p.boilerplate).Remove()
	}
	html, err := doc.Html()
	if err != nil {
		return err
	}
	md, err := htmltomarkdown.ConvertString(html, p.opts...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(writer, md)
	return err
}
