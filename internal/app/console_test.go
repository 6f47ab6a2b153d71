package app

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alpn-software/portfolio-client/internal/config"
	"github.com/alpn-software/portfolio-client/internal/logger"
	"github.com/alpn-software/portfolio-client/internal/storage"
	"github.com/alpn-software/portfolio-client/pkg/publicapi"
	"github.com/alpn-software/portfolio-client/pkg/publishers"
)

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	events []publishers.Event
}

func (p *recordingPublisher) ID() string   { return "rec" }
func (p *recordingPublisher) Type() string { return "stub" }

func (p *recordingPublisher) Publish(_ context.Context, evt publishers.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/public/contacts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":"contact-42"}`))
	})
	mux.HandleFunc("/api/v1/public/resume", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("format") {
		case "pdf":
			_, _ = w.Write([]byte(`{"data":"` + base64.StdEncoding.EncodeToString([]byte("%PDF")) + `"}`))
		case "json":
			_, _ = w.Write([]byte(`{"data":{"name":"Jane"}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Bad Request"}`))
		}
	})
	mux.HandleFunc("/api/v1/public/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConsole(t *testing.T, baseURL string, store storage.Store, pubs ...publishers.Publisher) *Console {
	t.Helper()
	cfg := &config.Config{APIBaseURL: baseURL}
	api := publicapi.New(publicapi.Config{BaseURL: baseURL})
	c := newConsole(cfg, &logger.NopLogger{}, api, store, publishers.NewFanout(pubs))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func openJournal(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewStore("bbolt", filepath.Join(t.TempDir(), "journal.db"), storage.Options{})
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	return store
}

func noJournal(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewStore("none", "", storage.Options{})
	if err != nil {
		t.Fatalf("open noop journal: %v", err)
	}
	return store
}

func TestSubmitContactJournalsAndPublishes(t *testing.T) {
	srv := newAPIServer(t)
	pub := &recordingPublisher{}
	c := newTestConsole(t, srv.URL+"/api/v1/public", openJournal(t), pub)
	c.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	sub, err := c.SubmitContact(context.Background(), publicapi.ContactData{
		"email":   "jane@example.com",
		"name":    "Jane",
		"message": "hello",
		"phone":   "555",
	})
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if sub.StatusCode != http.StatusCreated || sub.RequestID != "contact-42" || sub.ID == "" {
		t.Fatalf("unexpected submission %#v", sub)
	}
	if !sub.Succeeded() {
		t.Fatalf("expected submission to be marked successful")
	}

	history, err := c.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].ID != sub.ID || history[0].Email != "jane@example.com" {
		t.Fatalf("unexpected history %#v", history)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if evt := pub.events[0]; evt.Type != publishers.EventContactSubmitted || evt.Submission.ID != sub.ID {
		t.Fatalf("unexpected event %#v", evt)
	}
}

func TestSubmitContactReturnsAPIErrorUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Bad Request"}`))
	}))
	defer srv.Close()

	pub := &recordingPublisher{}
	c := newTestConsole(t, srv.URL, openJournal(t), pub)

	sub, err := c.SubmitContact(context.Background(), publicapi.ContactData{"email": "x@y.z"})
	var statusErr *publicapi.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if sub.Succeeded() || sub.Error == "" || sub.StatusCode != http.StatusBadRequest {
		t.Fatalf("failed submission not recorded as such: %#v", sub)
	}

	history, err := c.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Error == "" {
		t.Fatalf("failed attempt should be journaled: %#v", history)
	}
	if len(pub.events) != 1 {
		t.Fatalf("failed attempts are still announced, got %d events", len(pub.events))
	}
}

func TestSubmitContactIgnoresPublisherFailure(t *testing.T) {
	srv := newAPIServer(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := newTestConsole(t, srv.URL+"/api/v1/public", noJournal(t), pub)

	if _, err := c.SubmitContact(context.Background(), publicapi.ContactData{"email": "a@b.c"}); err != nil {
		t.Fatalf("publisher failure must not surface: %v", err)
	}
}

func TestFetchResumeDecodes(t *testing.T) {
	srv := newAPIServer(t)
	c := newTestConsole(t, srv.URL+"/api/v1/public", noJournal(t))

	res, err := c.FetchResume(context.Background(), ResumeRequest{Format: publicapi.FormatPDF, Decode: true})
	if err != nil {
		t.Fatalf("FetchResume pdf: %v", err)
	}
	if res.Resume == nil || string(res.Resume.PDF) != "%PDF" {
		t.Fatalf("unexpected pdf resume %#v", res.Resume)
	}

	res, err = c.FetchResume(context.Background(), ResumeRequest{Format: publicapi.FormatJSON})
	if err != nil {
		t.Fatalf("FetchResume json: %v", err)
	}
	if res.Resume != nil {
		t.Fatalf("resume should stay undecoded without Decode")
	}
	if string(res.Response.Body()) != `{"data":{"name":"Jane"}}` {
		t.Fatalf("unexpected body %q", res.Response.Body())
	}
}

func TestFetchResumeSurfacesBadFormat(t *testing.T) {
	srv := newAPIServer(t)
	c := newTestConsole(t, srv.URL+"/api/v1/public", noJournal(t))

	res, err := c.FetchResume(context.Background(), ResumeRequest{Format: "xml", Decode: true})
	var statusErr *publicapi.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if res.Response == nil || res.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("response should accompany the error")
	}
}

func TestHealth(t *testing.T) {
	srv := newAPIServer(t)
	c := newTestConsole(t, srv.URL+"/api/v1/public", noJournal(t))

	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if string(resp.Body()) != `{"status":"ok"}` {
		t.Fatalf("unexpected health body %q", resp.Body())
	}
}

func TestNewConsoleFromConfig(t *testing.T) {
	cfg := &config.Config{
		APIBaseURL:  "http://127.0.0.1:1",
		StorageType: "none",
	}
	c, err := NewConsole(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	defer c.Close()

	history, err := c.History()
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v %v", history, err)
	}
}

func TestNewConsoleRejectsBadPublishersFile(t *testing.T) {
	cfg := &config.Config{
		APIBaseURL:     "http://127.0.0.1:1",
		StorageType:    "none",
		PublishersFile: filepath.Join(t.TempDir(), "missing.yaml"),
	}
	if _, err := NewConsole(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}
}
