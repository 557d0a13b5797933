package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minhyannv/assistente-go/pkg/config"
	"github.com/minhyannv/assistente-go/pkg/history"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature *float64 `json:"temperature"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.BaseURL = srv.URL + "/v1"
	cfg.Model = "test-model"
	return NewOpenAIClient(cfg)
}

func testHistory() []history.Message {
	return []history.Message{
		{Role: history.RoleSystem, Content: "system prompt"},
		{Role: history.RoleUser, Content: "Hello"},
	}
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer lm-studio" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"test-model","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hi there"}},{"index":1,"finish_reason":"stop","message":{"role":"assistant","content":"ignored"}}]}`))
	})

	res := client.Complete(context.Background(), testHistory())
	if !res.OK() {
		t.Fatalf("expected ok result, got %s: %v", res.Kind, res.Cause)
	}
	if res.Text() != "Hi there" {
		t.Fatalf("expected first choice content, got %q", res.Text())
	}

	if got.Model != "test-model" {
		t.Fatalf("expected model test-model, got %q", got.Model)
	}
	if got.Temperature == nil || *got.Temperature != 1.0 {
		t.Fatalf("expected temperature 1.0, got %v", got.Temperature)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected full history of 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[1].Role != "user" || got.Messages[1].Content != "Hello" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model not loaded","type":"server_error"}}`))
	})

	res := client.Complete(context.Background(), testHistory())
	if res.Kind != KindTransport {
		t.Fatalf("expected transport failure, got %s", res.Kind)
	}
	if !strings.HasPrefix(res.Text(), TransportErrorPrefix) {
		t.Fatalf("expected transport error marker, got %q", res.Text())
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request without retries, got %d", calls)
	}
}

func TestCompleteShapeFailureOnEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"test-model","choices":[]}`))
	})

	res := client.Complete(context.Background(), testHistory())
	if res.Kind != KindShape {
		t.Fatalf("expected shape failure, got %s", res.Kind)
	}
	if !strings.HasPrefix(res.Text(), ShapeErrorPrefix) {
		t.Fatalf("expected shape error marker, got %q", res.Text())
	}
}

func TestCompleteShapeFailureOnChoiceWithoutMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"test-model","choices":[{"index":0,"finish_reason":"stop"}]}`))
	})

	res := client.Complete(context.Background(), testHistory())
	if res.Kind != KindShape {
		t.Fatalf("expected shape failure, got %s with text %q", res.Kind, res.Text())
	}
	if !strings.HasPrefix(res.Text(), ShapeErrorPrefix) {
		t.Fatalf("expected shape error marker, got %q", res.Text())
	}
}

func TestCompleteShapeFailureOnUndecodableBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`not json at all`))
	})

	res := client.Complete(context.Background(), testHistory())
	if res.Kind != KindShape {
		t.Fatalf("expected shape failure for a 200 with a broken body, got %s: %q", res.Kind, res.Text())
	}
}

func TestCompleteUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.DefaultConfig()
	cfg.BaseURL = url + "/v1"
	res := NewOpenAIClient(cfg).Complete(context.Background(), testHistory())
	if res.Kind != KindTransport {
		t.Fatalf("expected transport failure, got %s", res.Kind)
	}
}

func TestToOpenAIMessagesRejectsInvalidRole(t *testing.T) {
	_, err := toOpenAIMessages([]history.Message{{Role: "tool", Content: "bad"}})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestResultText(t *testing.T) {
	cause := errors.New("connection refused")
	if got := TransportFailure(cause).Text(); got != "Erro ao comunicar com o modelo: connection refused" {
		t.Fatalf("unexpected transport text %q", got)
	}
	if got := ShapeFailure(cause).Text(); got != "Erro ao processar a resposta do modelo: connection refused" {
		t.Fatalf("unexpected shape text %q", got)
	}
	if got := Reply("ok").Text(); got != "ok" {
		t.Fatalf("unexpected reply text %q", got)
	}
}
