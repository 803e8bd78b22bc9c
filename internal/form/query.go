package form

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters. Unlike url.Values it keeps
// insertion order, so food/gram pairs stay positionally matched.
type Query []Param

func (q *Query) Add(key, value string) {
	*q = append(*q, Param{Key: key, Value: value})
}

// Encode renders the query as key=value pairs joined by '&', in order.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Values returns the query as url.Values. Order between different keys is
// lost; order within a key is kept.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, p := range q {
		v.Add(p.Key, p.Value)
	}
	return v
}

// BuildQuery serializes rows for the calorie endpoint: productCount first,
// then one food/gram pair per row in display order. Food names are trimmed;
// grams are sent as entered.
func BuildQuery(rows []Row) Query {
	q := make(Query, 0, 1+2*len(rows))
	q.Add("productCount", strconv.Itoa(len(rows)))
	for _, r := range rows {
		q.Add("food", strings.TrimSpace(r.Food))
		q.Add("gram", r.Grams)
	}
	return q
}

// Query builds the submission query for the current rows.
func (c *Controller) Query() Query {
	return BuildQuery(c.rows)
}
