package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// ErrNotStarted is returned when asking an expert before Start.
var ErrNotStarted = errors.New("expert not started")

// maxRounds bounds the function calls made to answer one question.
const maxRounds = 8

// Expert is a chat with a model playing one role. Its Library holds the
// functions the model may call while answering.
type Expert struct {
	Name        string
	Description string
	ModelName   string
	Config      *genai.GenerateContentConfig
	Library     Library
	chat        *genai.Chat
}

// Start opens the chat. The history is kept until the expert is dropped.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("cannot start %s: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Ask sends parts and serves the function calls of the model until it
// answers with text.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (string, error) {
	if e.chat == nil {
		return "", fmt.Errorf("%s: %w", e.Name, ErrNotStarted)
	}
	for range maxRounds {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("%s: %w", e.Name, err)
		}
		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			answer := strings.TrimSpace(resp.Text())
			if answer == "" {
				return "", fmt.Errorf("no response from expert %s", e.Name)
			}
			return answer, nil
		}
		if len(e.Library) == 0 {
			return "", fmt.Errorf("expert %s called %s but has no functions", e.Name, calls[0].Name)
		}
		parts = make([]*genai.Part, len(calls))
		for i, c := range calls {
			log.WithFields(log.Fields{"expert": e.Name, "function": c.Name}).Debug("function call")
			parts[i] = &genai.Part{FunctionResponse: e.Library.Call(ctx, c)}
		}
	}
	return "", fmt.Errorf("expert %s did not answer after %d function calls", e.Name, maxRounds)
}

// Advise sends prompt and returns the answer. It makes an Expert a
// flagship.Advisor.
func (e *Expert) Advise(ctx context.Context, prompt string) (string, error) {
	return e.Ask(ctx, &genai.Part{Text: prompt})
}

// Declaration presents the expert to a facilitator, as a function taking a
// question.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {Type: genai.TypeString, Description: "The question to ask the expert."},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{Type: genai.TypeString, Description: "The expert's answer."},
	}
}

// Call asks the expert the question of a facilitator.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	question, ok := args["question"].(string)
	if !ok {
		return failure(id, e.Name, fmt.Errorf("invalid type got %T, expected string", args["question"]))
	}
	answer, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return failure(id, e.Name, err)
	}
	log.WithField("expert", e.Name).Debugf("%q: %q", question, answer)
	return success(id, e.Name, answer)
}
