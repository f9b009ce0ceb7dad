package db

// Query is the input for a paged FT.SEARCH.
type Query struct {
	Index string
	// Query is a raw FT query string; "*" or empty matches everything.
	Query        string
	Offset       int
	Limit        int
	SortBy       string
	SortDesc     bool
	ReturnFields []string
	// NoContent returns keys only; Entries carry nil Fields.
	NoContent bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
