// Package agent connects the shop to Gemini: a one-shot advisor and an
// interactive session where a facilitator dispatches questions to experts.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const prompt = "advise> "

// Session is the interactive chat with the shop assistant.
type Session struct {
	Facilitator *Expert
	Experts     []*Expert
	// Render formats an answer before it is printed. Answers are printed
	// as is when nil.
	Render func(markdown string) string

	out io.Writer
	in  *bufio.Scanner
}

// NewSession creates a chat reading questions from r and writing answers to
// w. Answers are rendered as markdown for a dark terminal.
func NewSession(w io.Writer, r io.Reader, model string, experts ...*Expert) *Session {
	return &Session{
		Facilitator: newFacilitator(model, experts...),
		Experts:     experts,
		Render:      Markdown("dark"),
		out:         w,
		in:          bufio.NewScanner(r),
	}
}

// Markdown returns a renderer of markdown for a glamour style ("dark",
// "light"...). Text that fails to render is returned unchanged.
func Markdown(style string) func(string) string {
	return func(md string) string {
		out, err := glamour.Render(md, style)
		if err != nil {
			log.WithError(err).Debug("cannot render answer")
			return md
		}
		return out
	}
}

// Start opens the chats of the experts, then the facilitator's.
func (s *Session) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range s.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return s.Facilitator.Start(ctx, client)
}

// next returns the next question: queued ones first, then lines typed by
// the user. ok is false when the user is done.
func (s *Session) next(queue *[]string) (question string, ok bool, err error) {
	for {
		fmt.Fprint(s.out, prompt)
		if len(*queue) > 0 {
			question, *queue = strings.TrimSpace((*queue)[0]), (*queue)[1:]
			fmt.Fprintln(s.out, question)
		} else if s.in.Scan() {
			question = strings.TrimSpace(s.in.Text())
		} else {
			return "", false, s.in.Err()
		}
		switch question {
		case "":
			continue
		case "bye", "exit", "quit":
			return "", false, nil
		}
		return question, true, nil
	}
}

// Run chats until the user says bye or closes the input. queued questions
// are asked first, as if typed by the user.
func (s *Session) Run(ctx context.Context, client *genai.Client, queued ...string) error {
	if s.Facilitator.chat == nil {
		if err := s.Start(ctx, client); err != nil {
			return err
		}
	}
	fmt.Fprintln(s.out, "Ask about your stock, sales and debtors. Type 'bye' to exit.")

	for {
		question, ok, err := s.next(&queued)
		if err != nil || !ok {
			return err
		}
		answer, err := s.Facilitator.Ask(ctx, &genai.Part{Text: question})
		if err != nil {
			return err
		}
		if s.Render != nil {
			answer = s.Render(answer)
		}
		fmt.Fprintln(s.out, answer)
	}
}
