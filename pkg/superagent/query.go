package superagent

import (
	"fmt"
	"net/url"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Query is an insertion-ordered set of scalar query parameters.
// The zero value and a nil *Query are both empty.
type Query struct {
	params *orderedmap.OrderedMap[string, any]
}

// NewQuery builds a query from alternating key/value pairs:
//
//	NewQuery("skip", 0, "take", 50)
//
// A trailing key without a value is ignored.
func NewQuery(pairs ...any) *Query {
	q := &Query{}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Set(fmt.Sprint(pairs[i]), pairs[i+1])
	}
	return q
}

// Set adds or replaces a parameter. Replacing keeps the original position.
func (q *Query) Set(key string, value any) *Query {
	if q.params == nil {
		q.params = orderedmap.New[string, any]()
	}
	q.params.Set(key, value)
	return q
}

// Get returns the raw value of a parameter.
func (q *Query) Get(key string) (any, bool) {
	if q == nil || q.params == nil {
		return nil, false
	}
	return q.params.Get(key)
}

// Len returns the number of parameters.
func (q *Query) Len() int {
	if q == nil || q.params == nil {
		return 0
	}
	return q.params.Len()
}

// Encode renders the parameters form-encoded, in insertion order.
func (q *Query) Encode() string {
	if q.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for pair := q.params.Oldest(); pair != nil; pair = pair.Next() {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(scalar(pair.Value)))
	}
	return sb.String()
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Pagination is the { take, skip } object accepted by list methods. A zero
// Take keeps the method's default page size.
type Pagination struct {
	Skip int
	Take int
}

var (
	agentsPage  = Pagination{Skip: 0, Take: 300}
	defaultPage = Pagination{Skip: 0, Take: 50}
)

func (p *Pagination) query(fallback Pagination) *Query {
	page := fallback
	if p != nil {
		page.Skip = p.Skip
		if p.Take > 0 {
			page.Take = p.Take
		}
	}
	return NewQuery("skip", page.Skip, "take", page.Take)
}
