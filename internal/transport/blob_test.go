package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golf-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// blobServer mimics the anonymous key/value blob service: GET returns the
// stored document or 404, PUT stores the body verbatim.
func blobServer(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()
	var blobs sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.EscapedPath(), "/")
		switch r.Method {
		case http.MethodGet:
			v, ok := blobs.Load(key)
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(v.([]byte))
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			blobs.Store(key, body)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &blobs
}

func sampleCollection() *domain.RoundCollection {
	c := domain.NewRoundCollection()
	c.Rounds = append(c.Rounds, domain.Round{
		ID:           "abc",
		CourseName:   "Pebble Beach",
		DatePlayed:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Score:        90,
		CourseRating: 72.8,
		SlopeRating:  129,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	})
	return c
}

func TestBlobFetchAbsentKey(t *testing.T) {
	srv, _ := blobServer(t)
	store := NewBlobStore(srv.URL, zerolog.Nop())

	got, err := store.Fetch(context.Background(), "nobody-here")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != nil {
		t.Errorf("Fetch absent key = %+v, want nil", got)
	}
}

func TestBlobPutFetchRoundtrip(t *testing.T) {
	srv, _ := blobServer(t)
	store := NewBlobStore(srv.URL, zerolog.Nop())
	ctx := context.Background()

	want := sampleCollection()
	if err := store.Put(ctx, "club-123", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Fetch(ctx, "club-123")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got == nil || len(got.Rounds) != 1 || got.Rounds[0].ID != "abc" {
		t.Errorf("fetched = %+v, want the stored snapshot", got)
	}
}

func TestBlobKeyIsPathEscaped(t *testing.T) {
	srv, blobs := blobServer(t)
	store := NewBlobStore(srv.URL, zerolog.Nop())

	if err := store.Put(context.Background(), "club/123", sampleCollection()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := blobs.Load("club%2F123"); !ok {
		t.Error("slash in the sync key was not escaped in the blob path")
	}
}

func TestBlobServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	store := NewBlobStore(srv.URL, zerolog.Nop())
	ctx := context.Background()

	if _, err := store.Fetch(ctx, "club-123"); err == nil {
		t.Error("Fetch against a failing server should error")
	}
	if err := store.Put(ctx, "club-123", sampleCollection()); err == nil {
		t.Error("Put against a failing server should error")
	}
}

func TestBlobFetchRejectsMalformedPayload(t *testing.T) {
	srv, blobs := blobServer(t)
	blobs.Store("club-123", []byte("not json"))
	store := NewBlobStore(srv.URL, zerolog.Nop())

	if _, err := store.Fetch(context.Background(), "club-123"); err == nil {
		t.Error("Fetch of a malformed document should error")
	}
}

func TestBlobPayloadIsJSON(t *testing.T) {
	srv, blobs := blobServer(t)
	store := NewBlobStore(srv.URL, zerolog.Nop())

	if err := store.Put(context.Background(), "club-123", sampleCollection()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, ok := blobs.Load("club-123")
	if !ok {
		t.Fatal("nothing stored")
	}
	var c domain.RoundCollection
	if err := json.Unmarshal(raw.([]byte), &c); err != nil {
		t.Fatalf("stored payload is not valid JSON: %v", err)
	}
	if len(c.Rounds) != 1 {
		t.Errorf("stored rounds = %d, want 1", len(c.Rounds))
	}
}
