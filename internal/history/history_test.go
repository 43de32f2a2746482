package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/raysh454/phishscan/internal/history"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
)

func openTestStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(filepath.Join(t.TempDir(), "history.db"), logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func result(id, target string, started time.Time, fp *model.FaviconFingerprint) *model.AnalysisResult {
	return &model.AnalysisResult{
		ID:         id,
		Target:     target,
		Heuristics: []string{"No HTTPS", "Contains suspicious word: login"},
		Favicon:    fp,
		Enrichment: []model.EnrichmentResult{
			model.Unavailable(model.ProviderShodan, "credential not configured"),
			model.Success(model.ProviderVirusTotal, []byte(`{"data":{"id":"u-1"}}`)),
		},
		StagesRun:   []model.State{model.StateReceived, model.StateAssembled},
		StartedAt:   started,
		CompletedAt: started.Add(150 * time.Millisecond),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := result("a-1", "http://login.example/", started, &model.FaviconFingerprint{SourceURL: "http://login.example/favicon.ico", ByteSize: 12, Hash: "-42"})

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "a-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Target != want.Target || len(got.Heuristics) != 2 || got.Favicon == nil || got.Favicon.Hash != "-42" {
		t.Errorf("round-tripped result differs: %+v", got)
	}
	if vt, ok := got.EnrichmentFor(model.ProviderVirusTotal); !ok || string(vt.Payload) != `{"data":{"id":"u-1"}}` {
		t.Errorf("payload not preserved: %+v", vt)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v", got.StartedAt)
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	_, err := openTestStore(t).Get(context.Background(), "nope")
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveDuplicate(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	r := result("dup", "http://example.com/", time.Now(), nil)
	if err := s.Save(context.Background(), r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(context.Background(), r); !errors.Is(err, history.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_SaveRejectsEmptyID(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	if err := s.Save(context.Background(), &model.AnalysisResult{}); err == nil {
		t.Fatal("expected error for result without id")
	}
	if err := s.Save(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestStore_List(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	shared := &model.FaviconFingerprint{Hash: "116323821"}
	fixtures := []*model.AnalysisResult{
		result("old", "http://a.example/", base, shared),
		result("mid", "http://b.example/", base.Add(time.Hour), nil),
		result("new", "http://c.example/", base.Add(2*time.Hour), shared),
	}
	for _, r := range fixtures {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save %s: %v", r.ID, err)
		}
	}

	all, err := s.List(ctx, history.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "new" || all[2].ID != "old" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].Findings != 2 || all[0].FaviconHash != "116323821" {
		t.Errorf("summary = %+v", all[0])
	}
	if all[1].FaviconHash != "" {
		t.Errorf("missing favicon should list empty hash, got %q", all[1].FaviconHash)
	}

	limited, _ := s.List(ctx, history.ListOptions{Limit: 1})
	if len(limited) != 1 || limited[0].ID != "new" {
		t.Errorf("limit 1 = %+v", limited)
	}

	byIcon, _ := s.List(ctx, history.ListOptions{FaviconHash: "116323821"})
	if len(byIcon) != 2 || byIcon[0].ID != "new" || byIcon[1].ID != "old" {
		t.Errorf("favicon filter = %+v", byIcon)
	}
}

func TestStore_ListEmpty(t *testing.T) {
	t.Parallel()
	got, err := openTestStore(t).List(context.Background(), history.ListOptions{Limit: 5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
