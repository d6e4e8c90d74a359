package resultcache

import (
	"fmt"
	"testing"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

func res(id string) model.Result {
	return model.Result{DatasetID: id, Summary: model.Summary{PointCount: 1}}
}

func TestGetAdd_RoundTrip(t *testing.T) {
	c := New(4)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	c.Add("k", res("a"))
	got, ok := c.Get("k")
	if !ok || got.DatasetID != "a" {
		t.Fatalf("get after add: ok=%v res=%+v", ok, got)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("stats hits=%d misses=%d want 1/1", hits, misses)
	}
}

func TestEviction_OldestGoesFirst(t *testing.T) {
	c := New(2)
	c.Add("a", res("a"))
	c.Add("b", res("b"))
	c.Add("c", res("c")) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected c present")
	}
	if c.Len() != 2 {
		t.Fatalf("len=%d want 2", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(32)
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				k := fmt.Sprintf("k-%d", i%16)
				c.Add(k, res(k))
				c.Get(k)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}
