package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishFeedUpdated("feed.xml")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: feed.updated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"feed.xml"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestPublishTermChange_ListingThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishTermChange(TermChange{Kind: "created", Path: "a.md"})
	b.PublishTermChange(TermChange{Kind: "updated", Path: "b.md"})
	b.PublishTermChange(TermChange{Kind: "deleted", Path: "es/a.md", Lang: "es"})
	b.PublishTermChange(TermChange{Kind: "chmod", Path: "c.md"})

	time.Sleep(50 * time.Millisecond)
	var termEvents, listing, listingES int
	for _, s := range drain(ch) {
		switch {
		case strings.Contains(s, "event: listing.updated") && strings.Contains(s, `"lang":"es"`):
			listingES++
		case strings.Contains(s, "event: listing.updated"):
			listing++
		case strings.Contains(s, "event: term."):
			termEvents++
		}
	}

	if termEvents != 3 {
		t.Errorf("term events = %d, want 3", termEvents)
	}
	if listing != 1 || listingES != 1 {
		t.Errorf("listing events = %d/%d, want 1 per partition", listing, listingES)
	}
}

func TestTermChangePayload(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishTermChange(TermChange{Kind: "deleted", Path: "pt/x.md", Lang: "pt"})
	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: term.deleted\ndata: ") || !strings.Contains(s, `{"path":"pt/x.md","lang":"pt"}`) {
			t.Errorf("payload = %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

// syncRecorder guards the recorder body so the test can read it while the
// handler goroutine is still writing.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (s *syncRecorder) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ResponseRecorder.Write(p)
}

func (s *syncRecorder) body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ResponseRecorder.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	b.keepAlive = 20 * time.Millisecond
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishTermChange(TermChange{Kind: "updated", Path: "x.md"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.Contains(body, "event: term.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if !strings.Contains(body, ": ping") {
		t.Errorf("handler output missing keep-alive: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]int{"i": i}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.PublishFeedUpdated("feed.xml")
	b.PublishTermChange(TermChange{Kind: "updated", Path: "x.md"})
}
