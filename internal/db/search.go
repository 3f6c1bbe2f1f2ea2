package db

// TagFilter restricts a search to documents whose TAG field equals the
// given value. Multiple filters are combined with AND.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Tags         []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// KeyQuery lists the keys of documents matching the tag filters, without
// their contents (FT.SEARCH NOCONTENT). Used for bulk deletion.
type KeyQuery struct {
	IndexName string
	Tags      []TagFilter
	Offset    int
	Limit     int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
