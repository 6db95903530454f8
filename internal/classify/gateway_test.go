package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func moderationHandler(t *testing.T, flagged bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/moderations" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var req moderationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		resp := map[string]any{
			"results": []map[string]any{{
				"flagged":         flagged,
				"categories":      map[string]bool{"hate": flagged},
				"category_scores": map[string]float64{"hate": 0.97},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestGatewayClassifyFlagged(t *testing.T) {
	srv := httptest.NewServer(moderationHandler(t, true))
	defer srv.Close()

	g := NewGateway(srv.URL, "", "test-key", time.Second)
	res := g.Classify(context.Background(), "some hateful text")
	if !res.Available {
		t.Fatalf("expected available result, got %#v", res)
	}
	if !res.Flagged {
		t.Fatal("expected flagged verdict")
	}
	if !res.Categories["hate"] {
		t.Fatalf("expected hate category, got %v", res.Categories)
	}
}

func TestGatewayClassifyNoBackend(t *testing.T) {
	g := NewGateway("", "", "test-key", time.Second)
	res := g.Classify(context.Background(), "anything")
	if res.Available {
		t.Fatal("expected unavailable result with no backend")
	}
	if res.Flagged {
		t.Fatal("an unavailable result must never be flagged")
	}
}

func TestGatewayClassifyMissingCredentials(t *testing.T) {
	srv := httptest.NewServer(moderationHandler(t, false))
	defer srv.Close()

	g := NewGateway(srv.URL, "", "", time.Second)
	res := g.Classify(context.Background(), "anything")
	if res.Available {
		t.Fatal("expected unavailable result without credentials")
	}
}

func TestGatewayClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "", "test-key", time.Second)
	res := g.Classify(context.Background(), "anything")
	if res.Available {
		t.Fatal("expected unavailable result on server error")
	}
	if res.Reason == "" {
		t.Fatal("expected a reason explaining the failure")
	}
}

func TestGatewayClassifyFallsBackToSecondary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer primary.Close()
	secondary := httptest.NewServer(moderationHandler(t, false))
	defer secondary.Close()

	g := NewGateway(primary.URL, secondary.URL, "test-key", time.Second)
	res := g.Classify(context.Background(), "benign text")
	if !res.Available {
		t.Fatalf("expected the secondary to answer, got %#v", res)
	}
	if res.Flagged {
		t.Fatal("expected clean verdict from secondary")
	}
}

func TestGatewayClassifyBothBackendsDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer down.Close()

	g := NewGateway(down.URL, down.URL, "test-key", time.Second)
	res := g.Classify(context.Background(), "anything")
	if res.Available {
		t.Fatal("expected unavailable result when both backends fail")
	}
}
