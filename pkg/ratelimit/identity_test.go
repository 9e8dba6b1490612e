package ratelimit

import (
	"testing"
)

func TestRotator_Next_CyclesInOrder(t *testing.T) {
	pool := []string{"ua-a", "ua-b", "ua-c"}
	r := NewRotator(pool)

	// Rotation starts by advancing, so the first identity is pool[1].
	expected := []string{"ua-b", "ua-c", "ua-a", "ua-b"}
	for i, want := range expected {
		if got := r.Next().UserAgent; got != want {
			t.Errorf("Next() call %d = %q, want %q", i+1, got, want)
		}
	}
}

func TestRotator_DefaultPool(t *testing.T) {
	r := NewRotator(nil)
	if len(r.pool) != len(DefaultUserAgents) {
		t.Fatalf("default pool size = %d, want %d", len(r.pool), len(DefaultUserAgents))
	}
}

func TestRotator_BuildHeaders(t *testing.T) {
	tests := []struct {
		name        string
		randVal     float64
		wantReferer bool
	}{
		{name: "below referer probability", randVal: 0.1, wantReferer: true},
		{name: "above referer probability", randVal: 0.9, wantReferer: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRotator([]string{"test-agent"})
			r.SetRand(func() float64 { return tt.randVal })

			h := r.BuildHeaders()

			if got := h.Get("User-Agent"); got != "test-agent" {
				t.Errorf("User-Agent = %q, want %q", got, "test-agent")
			}
			if h.Get("Accept") == "" {
				t.Error("Accept header missing from template")
			}
			if h.Get("Accept-Language") == "" {
				t.Error("Accept-Language header missing")
			}

			hasReferer := h.Get("Referer") != ""
			if hasReferer != tt.wantReferer {
				t.Errorf("Referer present = %v, want %v", hasReferer, tt.wantReferer)
			}
			if tt.wantReferer && h.Get("Referer") != marketReferer {
				t.Errorf("Referer = %q, want %q", h.Get("Referer"), marketReferer)
			}
		})
	}
}

func TestRotator_BuildHeaders_LanguageChoice(t *testing.T) {
	r := NewRotator([]string{"test-agent"})
	r.SetRand(func() float64 { return 0.99 })

	h := r.BuildHeaders()
	got := h.Get("Accept-Language")

	found := false
	for _, lang := range acceptLanguages {
		if got == lang {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Accept-Language = %q, not in the known pool", got)
	}
}
