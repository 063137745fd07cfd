package document

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

var (
	ErrReading = errors.New("document is reading")
	// ErrUnsupportedScheme is returned when a document uri scheme has no source
	ErrUnsupportedScheme = errors.New("unsupported document scheme")
)

type ReadStatus = int32

const (
	Unread ReadStatus = iota
	Reading
	ReadCompleted
)

// Source loads a raw document
type Source interface {
	Load(ctx context.Context) (*Document, error)
}

// Document is a document container with metadata
type Document struct {
	buffer *bytes.Buffer
	Meta   map[string]string
}

// NewDocument returns a Document holding bs
func NewDocument(bs []byte, meta map[string]string) *Document {
	if meta == nil {
		meta = make(map[string]string)
	}
	return &Document{
		buffer: bytes.NewBuffer(bs),
		Meta:   meta,
	}
}

func (d *Document) Reader() *bytes.Reader {
	return bytes.NewReader(d.buffer.Bytes())
}

func (d *Document) Bytes() []byte {
	return d.buffer.Bytes()
}

// Name returns the document file name if known
func (d *Document) Name() string {
	for _, k := range []string{"filename", "key", "url"} {
		if v := d.Meta[k]; v != "" {
			return v
		}
	}
	return ""
}

// Loader resolves a document uri to a Source and loads it.
// Supported uris: filesystem path, file://, s3://bucket/key, http(s)://
// Http sources are kept per url so a page is fetched once per Loader.
type Loader struct {
	root       string
	s3Client   S3API
	httpClient *http.Client
	mu         sync.Mutex
	pages      map[string]*Http
}

type LoaderOption func(*Loader)

// WithRoot confines filesystem documents to root directory
func WithRoot(root string) LoaderOption {
	return func(l *Loader) {
		l.root = root
	}
}

func WithS3API(clt S3API) LoaderOption {
	return func(l *Loader) {
		l.s3Client = clt
	}
}

func WithLoaderHttpClient(clt *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = clt
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	ret := &Loader{pages: make(map[string]*Http)}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Source returns the Source of uri
func (l *Loader) Source(uri string) (Source, error) {
	idx := strings.Index(uri, "://")
	if idx < 0 {
		return NewFile(uri, WithFileRoot(l.root)), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return NewFile(u.Path, WithFileRoot(l.root)), nil
	case "s3":
		if l.s3Client == nil {
			return nil, errors.New("s3 client is not configured")
		}
		return NewS3(WithS3Bucket(u.Host), WithS3Key(strings.TrimPrefix(u.Path, "/")), WithS3Client(l.s3Client)), nil
	case "http", "https":
		return l.page(uri)
	}
	return nil, ErrUnsupportedScheme
}

func (l *Loader) page(uri string) (*Http, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if src, ok := l.pages[uri]; ok {
		return src, nil
	}
	src, err := NewHttp(WithHttpURL(uri), WithHttpClient(l.httpClient))
	if err != nil {
		return nil, err
	}
	l.pages[uri] = src
	return src, nil
}

// Load loads the document of uri
func (l *Loader) Load(ctx context.Context, uri string) (*Document, error) {
	src, err := l.Source(uri)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}
