package searxng

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/bububa/careerchat/schema"
	"github.com/bububa/careerchat/tools"
)

// ToolName is the title of the course search tool
const ToolName = "search_courses"

// ErrMissingBaseURL is returned when searching without a SearxNG instance
var ErrMissingBaseURL = errors.New("searxng base url is not configured")

type Category = string

const (
	EmptyCategory   Category = ""
	GeneralCategory Category = "general"
	ITCategory      Category = "it"
	VideosCategory  Category = "videos"
)

// Input Schema for searching online courses, certifications and learning resources using SearxNG.
type Input struct {
	// Queries list of search queries, one per skill gap.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of search queries such as skill names or course topics." validate:"required,min=1,dive,required"`
	// Category of the search queries.
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=it,enum=videos,default=general,description=Category of the search queries."`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	// URL The URL of the search result
	URL string `json:"url"`
	// Title The title of the search result
	Title string `json:"title"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty"`
	// Query The query used to obtain this search result
	Query string `json:"query,omitempty"`
	// Engine reporting the result
	Engine string `json:"engine,omitempty"`
	// PublishedDate of the result, if any
	PublishedDate string `json:"publishedDate,omitempty"`
}

// SearchResponse represents the entire response from the search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output is the list of courses found
type Output struct {
	Results []SearchResultItem `json:"results"`
}

func (s Output) String() string {
	return schema.Marshal(s)
}

type Config struct {
	language    string
	baseURL     string
	querySuffix string
	maxResults  int
	httpClient  *http.Client
}

// Search looks for courses on a SearxNG instance
type Search struct {
	Config
}

func NewSearch(opts ...Option) *Search {
	ret := new(Search)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	ret.baseURL = strings.TrimSuffix(ret.baseURL, "/")
	return ret
}

// New returns the search_courses tool
func New(search *Search, opts ...tools.Option) *tools.Typed[Input, Output] {
	opts = append([]tools.Option{
		tools.WithTitle(ToolName),
		tools.WithDescription("Search the web for online courses and certifications. Returns titles, URLs and short descriptions."),
	}, opts...)
	return tools.NewTyped[Input, Output](search, opts...)
}

// Run searches every query, results without url or title are dropped and duplicated urls are merged
func (t *Search) Run(ctx context.Context, input *Input) (*Output, error) {
	if t.baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	var results []SearchResultItem
	for _, query := range input.Queries {
		list, err := t.fetchSearchResults(ctx, query, input.Category)
		if err != nil {
			return nil, err
		}
		results = append(results, list...)
	}
	results = lo.Filter(results, func(v SearchResultItem, _ int) bool {
		return v.URL != "" && v.Title != ""
	})
	results = lo.UniqBy(results, func(v SearchResultItem) string { return v.URL })
	if len(results) > t.maxResults {
		results = results[:t.maxResults]
	}
	return &Output{Results: results}, nil
}

// fetchSearchResults queries the search engine and returns the parsed search results
func (t *Search) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	if t.querySuffix != "" {
		query = strings.TrimSpace(query + " " + t.querySuffix)
	}
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying search engine: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search engine: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
	}
	return searchResponse.Results, nil
}
