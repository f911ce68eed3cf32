package models

// SortOrder is a user-listing sort expressed over logical field names:
// popularity, name, createdAt, lastview.
type SortOrder struct {
	Field      string
	Descending bool
}

var sortKeys = map[string]SortOrder{
	"Popularity":  {Field: "popularity", Descending: true},
	"NameAtoZ":    {Field: "name"},
	"NameZtoA":    {Field: "name", Descending: true},
	"NewestAdded": {Field: "createdAt", Descending: true},
	"OldestAdded": {Field: "createdAt"},
	"LastViewed":  {Field: "lastview", Descending: true},
}

// DefaultSort is used when no key or an unknown key is given.
var DefaultSort = SortOrder{Field: "name"}

func SortFor(key string) SortOrder {
	if order, ok := sortKeys[key]; ok {
		return order
	}
	return DefaultSort
}

type UserSearch struct {
	Text    string
	Page    int
	PerPage int
	Sort    SortOrder
}

// Offset is the number of matching records skipped before the page starts.
func (s UserSearch) Offset() int {
	if s.Page < 1 {
		return 0
	}
	return (s.Page - 1) * s.PerPage
}
