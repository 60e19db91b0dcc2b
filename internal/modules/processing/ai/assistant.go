// Package ai answers questions about the site author from a profile
// document.
package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const (
	ChunkSize    = 1000
	ChunkOverlap = 200
	TopChunks    = 3

	// NoData is the exact answer the model is told to give when the
	// profile does not cover the question.
	NoData = "No Data found"
)

var ErrNoQuestion = errors.New("ai: no user message")

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a completion for a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type Assistant struct {
	gen    Generator
	owner  string
	chunks []string
	logger *zap.Logger
}

// New splits profile into overlapping chunks. owner names the person the
// assistant speaks about.
func New(gen Generator, owner, profile string, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	if owner == "" {
		owner = "the site author"
	}
	return &Assistant{
		gen:    gen,
		owner:  owner,
		chunks: Chunk(profile, ChunkSize, ChunkOverlap),
		logger: logger.Named("ai"),
	}
}

// LoadProfile reads the profile document from path.
func LoadProfile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read profile: %w", err)
	}
	return string(data), nil
}

// Answer replies to the latest user message using the best matching
// profile chunks as the only context.
func (a *Assistant) Answer(ctx context.Context, messages []Message) (string, error) {
	question := latestQuestion(messages)
	if question == "" {
		return "", ErrNoQuestion
	}

	selected := Select(a.chunks, question, TopChunks)
	a.logger.Debug("answer", zap.Int("chunks", len(selected)), zap.Int("turns", len(messages)))
	return a.gen.Generate(ctx, systemPrompt(a.owner, strings.Join(selected, "\n\n")), transcript(messages))
}

func latestQuestion(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

func systemPrompt(owner, excerpt string) string {
	return fmt.Sprintf(`You are an AI assistant that answers questions about %[1]s based ONLY on the information in the profile document below.

Rules:
1. Only answer if the information is explicitly found in the provided context.
2. If the question cannot be answered from the context, respond with exactly "%[2]s".
3. Do not make up or infer information that is not directly stated in the document.
4. Keep answers concise and directly related to the question.
5. If only partial information is available, give what you can find and say that the information is limited.

Context from the profile document:
%[3]s`, owner, NoData, excerpt)
}

// transcript flattens the conversation into one prompt, latest turn last.
func transcript(messages []Message) string {
	if len(messages) == 1 {
		return strings.TrimSpace(messages[0].Content)
	}
	var b strings.Builder
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		role := "User"
		if m.Role == "assistant" {
			role = "Assistant"
		}
		b.WriteString(role + ": " + content + "\n\n")
	}
	return strings.TrimSpace(b.String())
}

// Chunk splits text into windows of at most size runes, each starting
// size-overlap runes after the previous one.
func Chunk(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 || size <= 0 {
		return nil
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Select returns up to k chunks ordered by how many distinct query terms
// they contain. Equal scores keep document order.
func Select(chunks []string, query string, k int) []string {
	terms := termSet(query)
	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		words := termSet(c)
		n := 0
		for t := range terms {
			if _, ok := words[t]; ok {
				n++
			}
		}
		ranked[i] = scored{idx: i, score: n}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]string, 0, min(k, len(ranked)))
	for _, r := range ranked[:min(k, len(ranked))] {
		out = append(out, chunks[r.idx])
	}
	return out
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "of": {}, "to": {}, "in": {},
	"on": {}, "and": {}, "or": {}, "for": {}, "what": {}, "who": {}, "does": {}, "do": {},
	"did": {}, "has": {}, "have": {}, "he": {}, "she": {}, "they": {}, "his": {}, "her": {},
	"their": {}, "with": {}, "at": {}, "by": {}, "it": {}, "about": {}, "tell": {}, "me": {},
}

func termSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
