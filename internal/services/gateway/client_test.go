package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/j-veylop/gateway-console/internal/metrics"
	"github.com/j-veylop/gateway-console/internal/models"
)

const testKey = "sk-admin-test"

// MockRoundTripper is a mock implementation of http.RoundTripper.
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

type fakeAdmin struct {
	mu       sync.Mutex
	toggled  []string
	created  []models.CreateProjectRequest
	requests []*http.Request
}

func (f *fakeAdmin) router(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.requests = append(f.requests, req.Clone(context.Background()))
			f.mu.Unlock()
			if req.Header.Get(AdminKeyHeader) != testKey {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/admin/stats", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_requests":42,"avg_latency_ms":12.5,"top_models":[{"name":"llama3","count":30},{"name":"mistral","count":12}]}`))
	})
	r.Get("/admin/projects", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"p1","name":"alpha","api_key":"sk-aaaaaaaaaaaaaaaaaaaa","allowed_models":["llama3"],"is_active":true},{"id":"p2","name":"beta","description":"b","api_key":"sk-bbbb","allowed_models":[],"is_active":false}]`))
	})
	r.Patch("/admin/projects/{id}/toggle", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if id == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.mu.Lock()
		f.toggled = append(f.toggled, id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/admin/projects", func(w http.ResponseWriter, req *http.Request) {
		var body models.CreateProjectRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func (f *fakeAdmin) snapshot() (requests []*http.Request, toggled []string, created []models.CreateProjectRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...),
		append([]string(nil), f.toggled...),
		append([]models.CreateProjectRequest(nil), f.created...)
}

func newTestClient(t *testing.T, key string) (*Client, *fakeAdmin, *metrics.Metrics) {
	t.Helper()
	admin := &fakeAdmin{}
	srv := httptest.NewServer(admin.router(t))
	t.Cleanup(srv.Close)

	m := metrics.New(nil)
	c := NewClient(Config{BaseURL: srv.URL + "/", AdminKey: key, Timeout: time.Second}, nil, m)
	return c, admin, m
}

func TestClient_FetchStats(t *testing.T) {
	c, admin, _ := newTestClient(t, testKey)

	stats, err := c.FetchStats(context.Background())
	if err != nil {
		t.Fatalf("FetchStats() error = %v", err)
	}
	if stats.TotalRequests != 42 || stats.AvgLatencyMs != 12.5 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(stats.TopModels) != 2 || stats.TopModels[0].Name != "llama3" {
		t.Errorf("unexpected top models: %+v", stats.TopModels)
	}

	requests, _, _ := admin.snapshot()
	req := requests[0]
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		t.Error("request id header missing")
	}
	if got := req.Header.Get("User-Agent"); got != defaultUserAgent {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestClient_FetchProjects(t *testing.T) {
	c, _, _ := newTestClient(t, testKey)

	projects, err := c.FetchProjects(context.Background())
	if err != nil {
		t.Fatalf("FetchProjects() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}
	if projects[0].ID != "p1" || projects[1].ID != "p2" {
		t.Errorf("backend order not kept: %s, %s", projects[0].ID, projects[1].ID)
	}
	if projects[1].Description == nil || *projects[1].Description != "b" {
		t.Errorf("description not decoded: %+v", projects[1])
	}
}

func TestClient_ToggleProject(t *testing.T) {
	c, admin, _ := newTestClient(t, testKey)

	if err := c.ToggleProject(context.Background(), "p1"); err != nil {
		t.Fatalf("ToggleProject() error = %v", err)
	}
	requests, toggled, _ := admin.snapshot()
	if len(toggled) != 1 || toggled[0] != "p1" {
		t.Errorf("toggled = %v", toggled)
	}
	if got := requests[0].Method; got != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", got)
	}

	err := c.ToggleProject(context.Background(), "")
	f, ok := AsFailure(err)
	if !ok || f.Kind != KindRequest {
		t.Errorf("empty id: got %v", err)
	}
}

func TestClient_CreateProject(t *testing.T) {
	c, admin, _ := newTestClient(t, testKey)

	err := c.CreateProject(context.Background(), "gamma", "", models.ParseAllowedModels("llama3, mistral"))
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	requests, _, created := admin.snapshot()
	if len(created) != 1 {
		t.Fatalf("created = %v", created)
	}
	got := created[0]
	if got.Name != "gamma" || got.Description != "" {
		t.Errorf("unexpected body: %+v", got)
	}
	if len(got.AllowedModels) != 2 || got.AllowedModels[0] != "llama3" || got.AllowedModels[1] != "mistral" {
		t.Errorf("allowed models = %v", got.AllowedModels)
	}
	if ct := requests[0].Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		call       func(c *Client) error
		wantKind   FailureKind
		wantStatus int
		wantUnauth bool
	}{
		{
			name:       "WrongKey",
			key:        "nope",
			call:       func(c *Client) error { _, err := c.FetchStats(context.Background()); return err },
			wantKind:   KindHTTP,
			wantStatus: http.StatusUnauthorized,
			wantUnauth: true,
		},
		{
			name:       "NotFound",
			key:        testKey,
			call:       func(c *Client) error { return c.ToggleProject(context.Background(), "missing") },
			wantKind:   KindHTTP,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Cancelled",
			key:  testKey,
			call: func(c *Client) error {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, err := c.FetchProjects(ctx)
				return err
			},
			wantKind: KindNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, m := newTestClient(t, tt.key)
			err := tt.call(c)

			f, ok := AsFailure(err)
			if !ok {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if f.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", f.Kind, tt.wantKind)
			}
			if f.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", f.StatusCode, tt.wantStatus)
			}
			if f.Unauthorized() != tt.wantUnauth {
				t.Errorf("Unauthorized() = %v", f.Unauthorized())
			}
			if f.RequestID == "" {
				t.Error("failure missing request id")
			}
			if got := testutil.ToFloat64(m.RequestFailures.WithLabelValues(f.Op, f.Kind.String())); got != 1 {
				t.Errorf("failure counter = %v, want 1", got)
			}
		})
	}
}

func TestClient_DecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "InvalidJSON", body: "not json"},
		{name: "WrongShape", body: `{"total_requests":"many"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpClient := &http.Client{Transport: &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					rec := httptest.NewRecorder()
					_, _ = rec.WriteString(tt.body)
					return rec.Result(), nil
				},
			}}
			c := NewClient(Config{BaseURL: "http://gateway.test", AdminKey: testKey}, httpClient, nil)

			_, err := c.FetchStats(context.Background())
			f, ok := AsFailure(err)
			if !ok || f.Kind != KindDecode {
				t.Fatalf("expected decode failure, got %v", err)
			}
			if f.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want 200", f.StatusCode)
			}
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	netErr := errors.New("connection refused")
	httpClient := &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			return nil, netErr
		},
	}}
	c := NewClient(Config{BaseURL: "http://gateway.test", AdminKey: testKey}, httpClient, nil)

	err := c.ToggleProject(context.Background(), "p1")
	f, ok := AsFailure(err)
	if !ok || f.Kind != KindNetwork {
		t.Fatalf("expected network failure, got %v", err)
	}
	if !errors.Is(err, netErr) {
		t.Error("failure should wrap the transport error")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Plain", errors.New("boom"), "boom"},
		{"Unauthorized", &Failure{Kind: KindHTTP, StatusCode: 403}, "admin key rejected by the gateway"},
		{"Status", &Failure{Kind: KindHTTP, StatusCode: 500}, "gateway returned status 500"},
		{"Decode", &Failure{Kind: KindDecode}, "gateway returned an unreadable response"},
		{"Network", &Failure{Kind: KindNetwork, Err: errors.New("x")}, "gateway unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
