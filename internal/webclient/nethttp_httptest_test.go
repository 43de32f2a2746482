package webclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/phishscan/internal/guard"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/webclient"
)

func newClient(t *testing.T, cfg webclient.Config, httpClient *http.Client) *webclient.NetHTTPClient {
	t.Helper()
	client, err := webclient.NewNetHTTPClient(cfg, logging.NewNoopLogger(), httpClient)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ─── Do: real HTTP round-trip via httptest ──────────────────────────────

func TestNetHTTPClient_Do_GET_ReturnsBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "hello")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "response body")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Do(context.Background(), &webclient.Request{
		Method: "GET",
		URL:    ts.URL + "/test",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "response body" {
		t.Errorf("expected 'response body', got %q", resp.Body)
	}
	if resp.Headers.Get("X-Custom") != "hello" {
		t.Errorf("expected X-Custom header 'hello', got %q", resp.Headers.Get("X-Custom"))
	}
	if resp.FinalURL != ts.URL+"/test" {
		t.Errorf("FinalURL = %q, want %q", resp.FinalURL, ts.URL+"/test")
	}
}

func TestNetHTTPClient_Do_POST_SendsBody(t *testing.T) {
	t.Parallel()
	var receivedBody, receivedMethod string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Do(context.Background(), &webclient.Request{
		Method: "post",
		URL:    ts.URL + "/submit",
		Body:   []byte("payload"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if receivedMethod != "POST" {
		t.Errorf("expected POST, got %s", receivedMethod)
	}
	if receivedBody != "payload" {
		t.Errorf("expected body 'payload', got %q", receivedBody)
	}
	if resp.StatusCode != 201 {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestNetHTTPClient_Do_ForwardsHeaders(t *testing.T) {
	t.Parallel()
	var receivedKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedKey = r.Header.Get("x-apikey")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	hdrs := http.Header{}
	hdrs.Set("x-apikey", "test-token")

	if _, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL, Headers: hdrs}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if receivedKey != "test-token" {
		t.Errorf("expected x-apikey header forwarded, got %q", receivedKey)
	}
}

func TestNetHTTPClient_Do_SetsUserAgent(t *testing.T) {
	t.Parallel()
	var ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{UserAgent: "phishscan-test/1"}, ts.Client())
	if _, err := client.Get(context.Background(), ts.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ua != "phishscan-test/1" {
		t.Errorf("User-Agent = %q", ua)
	}

	defaults := newClient(t, webclient.Config{}, ts.Client())
	if _, err := defaults.Get(context.Background(), ts.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ua != webclient.DefaultUserAgent {
		t.Errorf("default User-Agent = %q, want %q", ua, webclient.DefaultUserAgent)
	}
}

func TestNetHTTPClient_Do_PropagatesStatusCode(t *testing.T) {
	t.Parallel()
	codes := []int{200, 301, 404, 500}

	for _, code := range codes {
		code := code
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(code)
			}))
			defer ts.Close()

			httpClient := ts.Client()
			httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			}
			client := newClient(t, webclient.Config{}, httpClient)

			resp, err := client.Do(context.Background(), &webclient.Request{Method: "GET", URL: ts.URL})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if resp.StatusCode != code {
				t.Errorf("expected %d, got %d", code, resp.StatusCode)
			}
		})
	}
}

func TestNetHTTPClient_Do_NilRequest_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{}, nil)

	if _, err := client.Do(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestNetHTTPClient_Do_ConnectionRefused_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{}, &http.Client{Timeout: 1 * time.Second})

	_, err := client.Do(context.Background(), &webclient.Request{
		Method: "GET",
		URL:    "http://127.0.0.1:1", // port 1 is unlikely to be open
	})
	if err == nil {
		t.Fatal("expected error for connection refused")
	}
}

func TestNetHTTPClient_Do_ContextCanceled_ReturnsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Do(ctx, &webclient.Request{Method: "GET", URL: ts.URL})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// ─── Redirects ─────────────────────────────────────────────────────────

func TestNetHTTPClient_Do_FollowsRedirect_ReportsFinalURL(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "landed")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newClient(t, webclient.Config{}, &http.Client{Timeout: time.Second})

	resp, err := client.Get(context.Background(), ts.URL+"/start")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.FinalURL != ts.URL+"/landing" {
		t.Errorf("FinalURL = %q, want %q", resp.FinalURL, ts.URL+"/landing")
	}
	if resp.Request.URL != ts.URL+"/start" {
		t.Errorf("Request.URL = %q, should stay the original", resp.Request.URL)
	}
}

func TestNetHTTPClient_Do_RedirectLimit(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{MaxRedirects: 2}, &http.Client{Timeout: time.Second})

	if _, err := client.Get(context.Background(), ts.URL+"/"); err == nil {
		t.Fatal("expected redirect loop to be cut off")
	}
}

// ─── Body cap ─────────────────────────────────────────────────────────

func TestNetHTTPClient_Do_LargeBody(t *testing.T) {
	t.Parallel()
	largeBody := strings.Repeat("X", 1<<20)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, largeBody)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resp.Body) != 1<<20 {
		t.Errorf("expected 1MiB body, got %d bytes", len(resp.Body))
	}
}

func TestNetHTTPClient_Do_BodyOverLimit(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("X", 65))
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{MaxBodyBytes: 64}, ts.Client())
	_, err := client.Get(context.Background(), ts.URL)
	if !errors.Is(err, webclient.ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}

	unlimited := newClient(t, webclient.Config{MaxBodyBytes: -1}, ts.Client())
	resp, err := unlimited.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resp.Body) != 65 {
		t.Errorf("expected 65 bytes, got %d", len(resp.Body))
	}
}

// ─── Dial control ─────────────────────────────────────────────────────

func TestNewWebClient_DialControlBlocksLoopback(t *testing.T) {
	t.Parallel()
	hit := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
	}))
	defer ts.Close()

	g := guard.New(guard.Config{EnforceOnDial: true}, nil, logging.NewNoopLogger())
	client, err := webclient.NewWebClient(webclient.Config{Timeout: time.Second, Control: g.DialControl}, logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	defer client.Close()

	if _, err := client.Get(context.Background(), ts.URL); err == nil {
		t.Fatal("expected loopback dial to be refused")
	}
	if hit {
		t.Error("request reached the loopback server")
	}
}

func TestNewWebClient_DialControlDisabled(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer ts.Close()

	g := guard.New(guard.Config{EnforceOnDial: false}, nil, logging.NewNoopLogger())
	client, err := webclient.NewWebClient(webclient.Config{Timeout: time.Second, Control: g.DialControl}, logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	defer client.Close()

	resp, err := client.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("body = %q", resp.Body)
	}
}
