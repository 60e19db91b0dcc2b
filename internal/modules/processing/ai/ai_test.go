package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks := Chunk(text, 1000, 200)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 900)

	assert.Nil(t, Chunk("   ", 1000, 200))
	assert.Equal(t, []string{"short"}, Chunk("short", 1000, 200))
}

func TestChunk_Overlap(t *testing.T) {
	text := "0123456789"
	assert.Equal(t, []string{"01234", "34567", "6789"}, Chunk(text, 5, 2))
}

func TestSelect(t *testing.T) {
	chunks := []string{
		"Anish enjoys hiking and photography.",
		"Anish studied computer science at university.",
		"He works on distributed systems in Go.",
		"Favorite food: ramen.",
	}
	got := Select(chunks, "Where did Anish study computer science?", 3)
	require.Len(t, got, 3)
	assert.Equal(t, chunks[1], got[0])
	assert.Equal(t, chunks[0], got[1])
	// Ties keep document order.
	assert.Equal(t, chunks[2], got[2])

	assert.Len(t, Select(chunks[:2], "anything", 3), 2)
}

type fakeGenerator struct {
	system, prompt string
	answer         string
	err            error
}

func (f *fakeGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	return f.answer, f.err
}

func TestAssistant_Answer(t *testing.T) {
	gen := &fakeGenerator{answer: "Go and Rust."}
	profile := "Skills: Go, Rust, Kubernetes.\n" + strings.Repeat("filler text ", 200)
	a := New(gen, "Anish Shah", profile, nil)

	got, err := a.Answer(context.Background(), []Message{
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello!"},
		{Role: "user", Content: "Which skills?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go and Rust.", got)
	assert.Contains(t, gen.system, "Anish Shah")
	assert.Contains(t, gen.system, `respond with exactly "No Data found"`)
	assert.Contains(t, gen.system, "Skills: Go, Rust, Kubernetes.")
	assert.Equal(t, "User: Hi\n\nAssistant: Hello!\n\nUser: Which skills?", gen.prompt)

	_, err = a.Answer(context.Background(), []Message{{Role: "assistant", Content: "x"}})
	assert.ErrorIs(t, err, ErrNoQuestion)
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.groq.com/openai/v1", normalizeOpenAIBaseURL("https://api.groq.com/openai/v1/"))
	assert.Equal(t, "https://api.openai.com/v1", normalizeOpenAIBaseURL("https://api.openai.com"))
	assert.Equal(t, "", normalizeOpenAIBaseURL(" "))
}

func TestBuildLanguageModel(t *testing.T) {
	_, err := buildLanguageModel(Provider{})
	assert.Error(t, err)
	_, err = buildLanguageModel(Provider{Type: "mystery", APIKey: "k"})
	assert.ErrorContains(t, err, "mystery")

	m, err := buildLanguageModel(Provider{APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, m)
	m, err = buildLanguageModel(Provider{Type: "Anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

type fakeAnswerer struct {
	answer string
	err    error
}

func (f fakeAnswerer) Answer(context.Context, []Message) (string, error) { return f.answer, f.err }

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai-chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		ans    fakeAnswerer
		body   string
		status int
		key    string
	}{
		{"ok", fakeAnswerer{answer: "hi"}, `{"messages":[{"role":"user","content":"q"}]}`, http.StatusOK, "response"},
		{"bad body", fakeAnswerer{}, `{}`, http.StatusBadRequest, "message"},
		{"no question", fakeAnswerer{err: ErrNoQuestion}, `{"messages":[]}`, http.StatusBadRequest, "message"},
		{"rate limited", fakeAnswerer{err: ErrRateLimited}, `{"messages":[{"role":"user","content":"q"}]}`, http.StatusTooManyRequests, "response"},
		{"failure", fakeAnswerer{err: errors.New("boom")}, `{"messages":[{"role":"user","content":"q"}]}`, http.StatusInternalServerError, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHandler(tc.ans, nil).RegisterRoutes(r.Group("/api"))
			w := post(r, tc.body)
			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body, tc.key)
		})
	}
}
