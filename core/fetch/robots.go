package fetch

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsGate caches robots.txt groups per host. Fetch errors and
// missing files are treated as allowed.
type robotsGate struct {
	mu     sync.Mutex
	agent  string
	groups map[string]*robotstxt.Group
	client *http.Client
}

func newRobotsGate(agent string) *robotsGate {
	return &robotsGate{
		agent:  agent,
		groups: make(map[string]*robotstxt.Group),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *robotsGate) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	group, cached := g.groups[u.Host]
	if !cached {
		group = g.fetchGroup(u)
		g.groups[u.Host] = group
	}
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (g *robotsGate) fetchGroup(u *url.URL) *robotstxt.Group {
	resp, err := g.client.Get(u.Scheme + "://" + u.Host + "/robots.txt")
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(g.agent)
}
