package browser

import (
	"sync"
	"testing"

	"github.com/chromedp/cdproto/network"
)

func docResponse(status int64) *network.EventResponseReceived {
	return &network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: status},
	}
}

func TestStatusCapture_FirstDocumentWins(t *testing.T) {
	var c statusCapture

	c.observe(&network.EventResponseReceived{
		Type:     network.ResourceTypeXHR,
		Response: &network.Response{Status: 500},
	})
	if got := c.get(); got != 0 {
		t.Errorf("non-document response captured: %d", got)
	}

	c.observe(docResponse(301))
	c.observe(docResponse(404))
	if got := c.get(); got != 301 {
		t.Errorf("got %d, want first document status 301", got)
	}
}

func TestStatusCapture_ConcurrentObserve(t *testing.T) {
	var c statusCapture
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.observe(docResponse(200))
			_ = c.get()
		}()
	}
	wg.Wait()
	if got := c.get(); got != 200 {
		t.Errorf("got %d, want 200", got)
	}
}
