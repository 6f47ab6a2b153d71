package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alpn-software/portfolio-client/pkg/publicapi"
)

func TestSplitCommand(t *testing.T) {
	if _, _, err := splitCommand(nil); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, _, err := splitCommand([]string{"bogus"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for unknown command, got %v", err)
	}
	cmd, rest, err := splitCommand([]string{"cv", "--format", "json"})
	if err != nil || cmd.name != "cv" || len(rest) != 2 {
		t.Fatalf("unexpected split %q %v %v", cmd.name, rest, err)
	}
}

func TestParseContactFlagsKeepsUnsetFieldsAbsent(t *testing.T) {
	data, err := parseContactFlags([]string{"--email", "a@b.c", "--name="})
	if err != nil {
		t.Fatalf("parseContactFlags: %v", err)
	}
	if data[publicapi.FieldEmail] != "a@b.c" {
		t.Fatalf("email = %v", data[publicapi.FieldEmail])
	}
	if v, ok := data[publicapi.FieldName]; !ok || v != "" {
		t.Fatalf("explicit empty name should be kept, got %v (present=%v)", v, ok)
	}
	if _, ok := data[publicapi.FieldMessage]; ok {
		t.Fatalf("message should be absent")
	}
}

func TestParseCVFlags(t *testing.T) {
	opts, err := parseCVFlags(nil)
	if err != nil {
		t.Fatalf("parseCVFlags: %v", err)
	}
	if opts.format != publicapi.FormatPDF || opts.decode || opts.encoding != "json" {
		t.Fatalf("unexpected defaults %#v", opts)
	}
	if _, err := parseCVFlags([]string{"--encoding", "toml"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRenderResumeYAML(t *testing.T) {
	out, err := renderResume(publicapi.Resume{Format: publicapi.FormatJSON, Document: map[string]any{"name": "Jane"}}, "yaml")
	if err != nil {
		t.Fatalf("renderResume: %v", err)
	}
	if strings.TrimSpace(string(out)) != "name: Jane" {
		t.Fatalf("unexpected yaml %q", out)
	}
}

func setupEnv(t *testing.T, handler http.Handler) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("STORAGE_TYPE", "bbolt")
	t.Setenv("BBOLT_PATH", filepath.Join(t.TempDir(), "journal.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PUBLISHERS_FILE", "")
}

func TestRunCVDecodesPDFToFile(t *testing.T) {
	setupEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resume" || r.URL.Query().Get("format") != "pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"data":"`+base64.StdEncoding.EncodeToString([]byte("%PDF-1.7"))+`"}`)
	}))

	target := filepath.Join(t.TempDir(), "cv.pdf")
	var stdout bytes.Buffer
	if err := run([]string{"cv", "--decode", "-o", target}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "%PDF-1.7" {
		t.Fatalf("unexpected file content %q", got)
	}
	if !strings.Contains(stdout.String(), "wrote 8 bytes") {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
}

func TestRunContactThenHistory(t *testing.T) {
	setupEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":"c-1"}`)
	}))
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "journal.sqlite"))

	var stdout bytes.Buffer
	if err := run([]string{"contact", "--email", "a@b.c", "--message", "hi"}, &stdout); err != nil {
		t.Fatalf("run contact: %v", err)
	}
	if !strings.Contains(stdout.String(), "status 201, id c-1") {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}

	stdout.Reset()
	if err := run([]string{"history"}, &stdout); err != nil {
		t.Fatalf("run history: %v", err)
	}
	if !strings.Contains(stdout.String(), "email: a@b.c") || !strings.Contains(stdout.String(), "request_id: c-1") {
		t.Fatalf("unexpected history output %q", stdout.String())
	}
}

func TestRunSurfacesStatusError(t *testing.T) {
	setupEnv(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	err := run([]string{"health"}, io.Discard)
	var statusErr *publicapi.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
}
