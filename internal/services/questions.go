package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"serenity/internal/llm"
	"serenity/internal/models"
)

// ErrAINotConfigured is returned when no AI credential was configured.
var ErrAINotConfigured = errors.New("AI service not configured")

var errMalformedReply = errors.New("malformed AI reply")

// Question is one step of the guided reframing flow. Options is set for
// "choice" questions, Min and Max for "number" questions.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Min      *int     `json:"min,omitempty"`
	Max      *int     `json:"max,omitempty"`
}

type QuestionSet struct {
	Questions []Question `json:"questions"`
}

func intPtr(v int) *int { return &v }

// StaticQuestions returns the canonical six-question set. It is also the
// fallback for every failed AI generation.
func StaticQuestions() QuestionSet {
	return QuestionSet{Questions: []Question{
		{
			ID:       1,
			Question: "Is this thought based on facts or feelings?",
			Type:     "choice",
			Options:  []string{"Facts", "Feelings", "Both", "Not sure"},
		},
		{ID: 2, Question: "What evidence do I have that supports this thought?", Type: "text"},
		{ID: 3, Question: "What evidence do I have against this thought?", Type: "text"},
		{ID: 4, Question: "What would I tell a friend who had this thought?", Type: "text"},
		{
			ID:       5,
			Question: "How likely is it that this worst-case scenario will actually happen? (0-100%)",
			Type:     "number",
			Min:      intPtr(0),
			Max:      intPtr(100),
		},
		{ID: 6, Question: "What's a more balanced way to think about this situation?", Type: "text"},
	}}
}

const questionSystemPrompt = `You are a cognitive behavioral therapy (CBT) expert. Generate 6 personalized, therapeutic questions to help the user reframe their negative thought.

The questions should:
1. Follow CBT principles and techniques
2. Be specific to the user's negative thought
3. Help identify cognitive distortions
4. Guide toward balanced thinking
5. Be compassionate and non-judgmental
6. Include a mix of question types (text, choice, number scale)

Return ONLY a JSON object with this exact structure:
{
  "questions": [
    {
      "id": 1,
      "question": "Question text here",
      "type": "text|choice|number",
      "options": ["option1", "option2"] (only for choice type),
      "min": 0, "max": 100 (only for number type)
    }
  ]
}`

// ChatClient is the subset of llm.Client the generator needs.
type ChatClient interface {
	Chat(ctx context.Context, sessionID string, messages []llm.Message) (string, error)
}

type QuestionGenerator struct {
	chat   ChatClient
	logger *zap.Logger
}

// NewQuestionGenerator accepts a nil chat client; Generate then reports
// ErrAINotConfigured.
func NewQuestionGenerator(chat ChatClient, logger *zap.Logger) *QuestionGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionGenerator{chat: chat, logger: logger}
}

func (g *QuestionGenerator) Configured() bool { return g.chat != nil }

// Generate asks the model for questions tailored to negativeThought and
// returns its reply object unchanged, so the result is either that decoded
// object or the static QuestionSet. Apart from ErrAINotConfigured it never
// fails: any upstream or parse error is logged and the static set returned.
func (g *QuestionGenerator) Generate(ctx context.Context, negativeThought, userContext string) (any, error) {
	if !g.Configured() {
		return nil, ErrAINotConfigured
	}

	sessionID := "cbt-" + models.NewID()
	reply, err := g.request(ctx, sessionID, negativeThought, userContext)
	switch {
	case errors.Is(err, errMalformedReply):
		g.logger.Warn("failed to parse AI response, using fallback questions",
			zap.String("session_id", sessionID), zap.Error(err))
		return StaticQuestions(), nil
	case err != nil:
		g.logger.Error("error generating dynamic questions",
			zap.String("session_id", sessionID), zap.Error(err))
		return StaticQuestions(), nil
	}
	return reply, nil
}

func (g *QuestionGenerator) request(ctx context.Context, sessionID, negativeThought, userContext string) (map[string]any, error) {
	contextInfo := ""
	if userContext != "" {
		contextInfo = fmt.Sprintf(" (Context: %s)", userContext)
	}
	reply, err := g.chat.Chat(ctx, sessionID, []llm.Message{
		{Role: "system", Content: questionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Generate 6 personalized CBT questions for this negative thought: '%s'%s", negativeThought, contextInfo)},
	})
	if err != nil {
		return nil, err
	}
	return parseReply(reply)
}

// parseReply decodes the reply as a JSON object without checking its fields.
// Numbers keep their literal form. Only a missing or null "questions" key is
// rejected.
func parseReply(reply string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(stripCodeFence(reply)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedReply, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", errMalformedReply)
	}
	if obj["questions"] == nil {
		return nil, fmt.Errorf("%w: missing questions", errMalformedReply)
	}
	return obj, nil
}

// stripCodeFence unwraps a reply delivered as a ```json fenced block.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
