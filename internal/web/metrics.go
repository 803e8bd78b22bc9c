package web

import "sync"

// requestCounter counts handled requests per route pattern.
type requestCounter struct {
	mu      sync.Mutex
	total   int64
	byRoute map[string]int64
}

type requestCounts struct {
	Total   int64            `json:"total"`
	ByRoute map[string]int64 `json:"byRoute"`
}

func newRequestCounter() *requestCounter {
	return &requestCounter{byRoute: map[string]int64{}}
}

func (c *requestCounter) inc(route string) {
	c.mu.Lock()
	c.total++
	c.byRoute[route]++
	c.mu.Unlock()
}

func (c *requestCounter) snapshot() requestCounts {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := requestCounts{Total: c.total, ByRoute: make(map[string]int64, len(c.byRoute))}
	for k, v := range c.byRoute {
		out.ByRoute[k] = v
	}
	return out
}
