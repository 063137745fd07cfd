package systemprompt

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// StaticProvider is a ContextProvider with fixed content
type StaticProvider struct {
	title string
	info  string
}

var _ ContextProvider = (*StaticProvider)(nil)

func NewStaticProvider(title string, info string) *StaticProvider {
	return &StaticProvider{title: title, info: info}
}

func (p StaticProvider) Title() string {
	return p.title
}

func (p StaticProvider) Info() string {
	return p.info
}

// FuncProvider is a ContextProvider which computes info on demand
type FuncProvider struct {
	title string
	fn    func() string
}

var _ ContextProvider = (*FuncProvider)(nil)

func NewFuncProvider(title string, fn func() string) *FuncProvider {
	return &FuncProvider{title: title, fn: fn}
}

func (p FuncProvider) Title() string {
	return p.title
}

func (p FuncProvider) Info() string {
	if p.fn == nil {
		return ""
	}
	return p.fn()
}
