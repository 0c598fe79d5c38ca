package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"baselinedev/config"
	"baselinedev/model"
	"baselinedev/provider/testutil"
)

const openAIOK = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Container queries are Baseline."}, "finish_reason": "stop"}]
}`

func newOpenAIServer(t *testing.T, status int, body string, gotRequest *map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-openai-test" {
			t.Errorf("missing bearer token")
		}
		if gotRequest != nil {
			_ = json.NewDecoder(r.Body).Decode(gotRequest)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openAISecrets() *testutil.MemorySecretStore {
	return testutil.NewMemorySecretStore(map[string]string{config.KeyOpenAI: "sk-openai-test"})
}

func TestOpenAISendMessage(t *testing.T) {
	var got map[string]any
	srv := newOpenAIServer(t, http.StatusOK, openAIOK, &got)
	p := NewOpenAIProvider(srv.URL+"/v1", "", openAISecrets())

	reply, err := p.SendMessage(context.Background(), testutil.ConversationWithSystem("sys"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if reply != "Container queries are Baseline." {
		t.Errorf("reply = %q", reply)
	}
	if got["model"] != config.DefaultOpenAIModel {
		t.Errorf("model = %v", got["model"])
	}
	if msgs, _ := got["messages"].([]any); len(msgs) != 4 {
		t.Errorf("expected 4 messages, got %v", got["messages"])
	}
}

func TestOpenAIErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   model.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, model.KindAuthInvalid},
		{"rate limited", http.StatusTooManyRequests, model.KindRateLimited},
		{"bad request", http.StatusBadRequest, model.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOpenAIServer(t, tt.status, `{"error":{"message":"nope","type":"invalid_request_error"}}`, nil)
			p := NewOpenAIProvider(srv.URL+"/v1", "", openAISecrets())

			_, err := p.SendMessage(context.Background(), testutil.SingleUserMessage("hi"))
			if !model.IsKind(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestOpenAIMissingKey(t *testing.T) {
	p := NewOpenAIProvider("", "", nil)

	_, err := p.SendMessage(context.Background(), testutil.SingleUserMessage("hi"))
	if !model.IsKind(err, model.KindAuthInvalid) {
		t.Errorf("expected KindAuthInvalid, got %v", err)
	}
}

func TestValidateAPIKey(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusOK, openAIOK, nil)

	valid, err := ValidateAPIKey(context.Background(), "openai", "sk-openai-test", Settings{OpenAIBaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("ValidateAPIKey() error = %v", err)
	}
	if !valid {
		t.Error("expected key to validate")
	}

	if _, err := ValidateAPIKey(context.Background(), "ollama", "x", Settings{}); err == nil {
		t.Error("expected error for backend without API key")
	}
	if _, err := ValidateAPIKey(context.Background(), "claude", "", Settings{}); err == nil {
		t.Error("expected error for empty key")
	}
}
