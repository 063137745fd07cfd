package document

import (
	"bytes"
	"context"
	"io"
	"strings"
	"unicode"
)

type Parser interface {
	Parse(context.Context, *bytes.Reader, io.Writer) error
}

// TextParser copies text documents as is
type TextParser struct{}

var _ Parser = (*TextParser)(nil)

func (p *TextParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	_, err := io.Copy(writer, reader)
	return err
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
)

// EscapeMarkdown escapes characters breaking markdown tables and emphasis
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// StripUnprintable removes control characters, new lines are replaced by spaces
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case !unicode.IsPrint(r):
			return -1
		}
		return r
	}, s)
}
