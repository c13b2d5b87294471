package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-deposit/pkg/editor"
	"github.com/goliatone/go-deposit/pkg/logging"
	"github.com/goliatone/go-deposit/pkg/markup"
	"github.com/goliatone/go-deposit/pkg/session"
	"github.com/goliatone/go-deposit/pkg/transport"
)

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(editor.DefaultOptions(), cfg.EditorOptions()); diff != "" {
		t.Fatalf("editor options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(session.DefaultMessages(), cfg.SessionMessages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	timeout, err := cfg.Timeout()
	if err != nil || timeout != DefaultTimeout {
		t.Fatalf("timeout = %v, %v", timeout, err)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/deposit.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	timeout, err := cfg.Timeout()
	if err != nil || timeout != 5*time.Second {
		t.Fatalf("timeout = %v, %v", timeout, err)
	}

	want := editor.DefaultOptions()
	want.RemoveEmptyProperties = false
	want.Theme = theme.RendererConfig{Theme: "bootstrap4", Variant: "dark", Tokens: map[string]string{"prompt-prefix": ">"}}
	if diff := cmp.Diff(want, cfg.EditorOptions()); diff != "" {
		t.Fatalf("editor options mismatch (-want +got):\n%s", diff)
	}

	messages := cfg.SessionMessages()
	if messages.SaveSuccess != "Saved" || messages.DeleteSuccess != "Successfully deleted!" {
		t.Fatalf("messages = %+v", messages)
	}

	loader := cfg.LoaderOptions()
	if loader.BaseURL != "https://deposit.example.com" || loader.FileSystem == nil || !loader.AllowHTTPFallback {
		t.Fatalf("loader options = %+v", loader)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "transport:\n  retries: 3\n",
		"bad timeout":      "transport:\n  timeout: soon\n",
		"negative timeout": "transport:\n  timeout: -1s\n",
		"bad yaml":         "transport: [\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := Load("testdata/missing.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestTransportOptions(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg, err := Parse([]byte("transport:\n  base_url: " + srv.URL + "\n  headers:\n    Authorization: Bearer abc\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	client := transport.NewHTTPClient(cfg.TransportOptions(logging.Testing(t))...)
	result := transport.Get(context.Background(), client, "/api/1")
	resp, ok := result.Response()
	if !ok {
		t.Fatalf("request failed: %v", result.Failure())
	}
	if gotAuth != "Bearer abc" || gotPath != "/api/1" {
		t.Fatalf("request auth=%q path=%q", gotAuth, gotPath)
	}
	if diff := cmp.Diff(map[string]any{"ok": true}, resp.Data); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkupOptions(t *testing.T) {
	cfg, err := Load("testdata/deposit.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, err := markup.Parse(strings.NewReader(
		`<div id="records" action-endpoint="/api/1"></div>`+
			`<div class="deposit-region" data-id="a" data-schema="/s.json"><div class="jsondeposit-loading"></div></div>`,
	), cfg.MarkupOptions()...)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	regions := page.Regions()
	if len(regions) != 1 || !regions[0].Loading() {
		t.Fatalf("configured region class not honored: %d regions", len(regions))
	}
	sig, err := page.Session()
	if err != nil || sig.Args.URL != "/api/1" {
		t.Fatalf("session = %+v, %v", sig, err)
	}
}
