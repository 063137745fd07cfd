package filereader

import (
	"context"
	"strings"

	"github.com/clipperhouse/uax29/words"

	"github.com/bububa/careerchat/components/document"
	"github.com/bububa/careerchat/components/document/parsers"
	"github.com/bububa/careerchat/tools"
)

// Input schema for the read_file tool
type Input struct {
	// Path of the file to read
	Path string `json:"path" jsonschema:"title=path,description=Path or uri of the file to read. Supports local paths and s3:// or http(s):// uris." validate:"required"`
}

func NewInput(path string) *Input {
	return &Input{Path: path}
}

// Output is the text content of the file
type Output struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
}

func (o Output) String() string {
	if o.Truncated {
		return o.Content + "\n[truncated]"
	}
	return o.Content
}

// Reader reads documents as text
type Reader struct {
	loader   *document.Loader
	maxWords int
}

type Option func(*Reader)

// WithLoader set document loader, a default filesystem loader is used if not set
func WithLoader(loader *document.Loader) Option {
	return func(r *Reader) {
		r.loader = loader
	}
}

// WithMaxWords truncates content to maxWords words, 0 means unlimited
func WithMaxWords(maxWords int) Option {
	return func(r *Reader) {
		r.maxWords = maxWords
	}
}

func NewReader(opts ...Option) *Reader {
	ret := new(Reader)
	for _, opt := range opts {
		opt(ret)
	}
	if ret.loader == nil {
		ret.loader = document.NewLoader()
	}
	return ret
}

// New returns the read_file tool
func New(reader *Reader, opts ...tools.Option) *tools.Typed[Input, Output] {
	opts = append([]tools.Option{
		tools.WithTitle("read_file"),
		tools.WithDescription("Read the text content of a file, such as a CV. PDF, DOCX, XLSX and HTML files are converted to text."),
	}, opts...)
	return tools.NewTyped[Input, Output](reader, opts...)
}

// Run reads the file of input path
func (r *Reader) Run(ctx context.Context, input *Input) (*Output, error) {
	doc, err := r.loader.Load(ctx, input.Path)
	if err != nil {
		return nil, err
	}
	content, err := parsers.Parse(ctx, doc)
	if err != nil {
		return nil, err
	}
	ret := &Output{Content: content}
	if r.maxWords > 0 {
		ret.Content, ret.Truncated = Truncate(content, r.maxWords)
	}
	return ret, nil
}

// Truncate cuts text after maxWords words, word boundaries follow unicode text segmentation
func Truncate(text string, maxWords int) (string, bool) {
	var (
		count  int
		offset int
	)
	scanner := words.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		token := scanner.Text()
		if strings.TrimSpace(token) != "" && isWord(token) {
			if count == maxWords {
				return strings.TrimRight(text[:offset], " \t\r\n"), true
			}
			count++
		}
		offset += len(token)
	}
	return text, false
}

func isWord(token string) bool {
	for _, r := range token {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127 {
			return true
		}
	}
	return false
}
