package provider

import (
	"context"
	"errors"
	"testing"

	"baselinedev/config"
	"baselinedev/model"
	"baselinedev/provider/testutil"

	"google.golang.org/genai"
)

type stubGeminiModels struct {
	errs  map[string]error
	calls []string

	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (s *stubGeminiModels) GenerateContent(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls = append(s.calls, modelName)
	s.gotContents = contents
	s.gotConfig = cfg
	if err, ok := s.errs[modelName]; ok {
		return nil, err
	}
	return geminiTextResponse("reply from " + modelName), nil
}

func geminiTextResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  genai.RoleModel,
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func newStubGemini(stub *stubGeminiModels, modelName string, fallbacks ...string) *GeminiProvider {
	p := NewGeminiProvider("", modelName, testutil.NewMemorySecretStore(map[string]string{config.KeyGemini: "key"}))
	p.models = stub
	p.fallbacks = fallbacks
	return p
}

func TestGeminiFallbackChain(t *testing.T) {
	stub := &stubGeminiModels{errs: map[string]error{
		"x": errors.New("Error 404, Message: models/x is not found for API version v1beta"),
		"y": errors.New("model y not found"),
	}}
	p := newStubGemini(stub, "x", "y", "z", "w")

	reply, err := p.SendMessage(context.Background(), testutil.SingleUserMessage("hi"))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if reply != "reply from z" {
		t.Errorf("reply = %q", reply)
	}

	want := []string{"x", "y", "z"}
	if len(stub.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", stub.calls, want)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, stub.calls[i], want[i])
		}
	}
}

func TestGeminiAbortsOnOtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ErrorKind
	}{
		{"invalid key", errors.New("Error 400, Message: API key not valid, Status: INVALID_ARGUMENT, Details: API_KEY_INVALID"), model.KindAuthInvalid},
		{"rate limited", errors.New("RATE_LIMIT_EXCEEDED"), model.KindRateLimited},
		{"other", errors.New("Error 500, internal"), model.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGeminiModels{errs: map[string]error{"x": tt.err}}
			p := newStubGemini(stub, "x", "y")

			_, err := p.SendMessage(context.Background(), testutil.SingleUserMessage("hi"))
			if !model.IsKind(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
			if len(stub.calls) != 1 {
				t.Errorf("expected no further candidates, got calls %v", stub.calls)
			}
		})
	}
}

func TestGeminiAllCandidatesExhausted(t *testing.T) {
	notFound := errors.New("404 not found")
	stub := &stubGeminiModels{errs: map[string]error{"x": notFound, "y": notFound}}
	p := newStubGemini(stub, "x", "y", "x")

	_, err := p.SendMessage(context.Background(), testutil.SingleUserMessage("hi"))
	if !model.IsKind(err, model.KindNoCompatibleModel) {
		t.Fatalf("expected KindNoCompatibleModel, got %v", err)
	}
	if len(stub.calls) != 2 {
		t.Errorf("duplicate candidates must be skipped, calls = %v", stub.calls)
	}
}

func TestGeminiRequestShape(t *testing.T) {
	stub := &stubGeminiModels{}
	p := newStubGemini(stub, "x")

	messages := []model.Message{
		{Role: model.RoleSystem, Content: "Be brief."},
		{Role: model.RoleAssistant, Content: "Welcome!"},
		{Role: model.RoleUser, Content: "Is :has() Baseline?"},
	}
	if _, err := p.SendMessage(context.Background(), messages); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	// greeting pair + assistant history turn + active prompt
	if len(stub.gotContents) != 4 {
		t.Fatalf("expected 4 contents, got %d", len(stub.gotContents))
	}
	if stub.gotContents[0].Role != genai.RoleUser {
		t.Error("history must begin with a user turn")
	}
	last := stub.gotContents[3]
	if last.Role != genai.RoleUser || last.Parts[0].Text != "Is :has() Baseline?" {
		t.Errorf("unexpected active prompt %+v", last)
	}
	if stub.gotConfig == nil || stub.gotConfig.SystemInstruction.Parts[0].Text != "Be brief." {
		t.Error("system instruction not passed out-of-band")
	}
}

func TestGeminiMissingKey(t *testing.T) {
	p := NewGeminiProvider("", "", testutil.NewMemorySecretStore(nil))

	_, err := p.SendMessage(context.Background(), testutil.SingleUserMessage("hi"))
	if !model.IsKind(err, model.KindAuthInvalid) {
		t.Errorf("expected KindAuthInvalid, got %v", err)
	}
	if p.TestConnection(context.Background()) {
		t.Error("TestConnection() should be false without a key")
	}
}

func TestGeminiEmptyConversation(t *testing.T) {
	p := newStubGemini(&stubGeminiModels{}, "x")

	_, err := p.SendMessage(context.Background(), []model.Message{{Role: model.RoleSystem, Content: "only system"}})
	if err == nil {
		t.Error("expected error for conversation without turns")
	}
}

func TestGeminiCandidates(t *testing.T) {
	p := NewGeminiProvider("", "gemini-1.5-pro", nil)

	got := p.candidates()
	want := []string{"gemini-1.5-pro", "gemini-2.0-flash", "gemini-1.5-flash", "gemini-pro"}
	if len(got) != len(want) {
		t.Fatalf("candidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %s, want %s", i, got[i], want[i])
		}
	}
}
