package utils

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTelemetryPostsEmbeds(t *testing.T) {
	var (
		mu       sync.Mutex
		received []discordgo.WebhookParams
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params discordgo.WebhookParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		mu.Lock()
		received = append(received, params)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tel := NewTelemetry(discardLogger(), srv.URL)
	tel.LogEvent("Tables Created Successfully")
	tel.LogWarn("slow query")
	tel.LogError(errors.New("failed to insert tracked game"))
	tel.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 3 {
		t.Fatalf("expected 3 webhook posts, got %d", len(received))
	}
	wantColors := []int{3066993, 15105570, 15158332}
	for i, params := range received {
		if len(params.Embeds) != 1 {
			t.Fatalf("post %d: expected one embed, got %d", i, len(params.Embeds))
		}
		if params.Embeds[0].Color != wantColors[i] {
			t.Errorf("post %d: color = %d, want %d", i, params.Embeds[0].Color, wantColors[i])
		}
	}
	if got := received[2].Embeds[0].Fields[1].Value; got != "failed to insert tracked game" {
		t.Errorf("error message = %q", got)
	}
}

func TestTelemetryWithoutWebhook(t *testing.T) {
	tel := NewTelemetry(discardLogger(), "")
	tel.LogEvent("event")
	tel.LogError(nil)
	tel.Close()
	tel.Close()

	var nilTel *Telemetry
	nilTel.LogEvent("ignored")
	nilTel.LogError(errors.New("ignored"))
	nilTel.Close()
}

func TestTelemetryIgnoresWebhookFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tel := NewTelemetry(discardLogger(), srv.URL)
	tel.LogError(errors.New("boom"))
	tel.Close()
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{strings.Repeat("a", 12), 10, "aaaaaaa..."},
		{strings.Repeat("é", 10), 10, strings.Repeat("é", 10)},
		{strings.Repeat("é", 12), 10, strings.Repeat("é", 7) + "..."},
		{"ab日本語の記録です", 8, "ab日本語..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) split a character: %q", tt.in, tt.max, got)
		}
	}
}
