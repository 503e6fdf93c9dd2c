// Package agent runs the interactive chat session that connects a Gemini
// model to the budget tools.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"

	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/tools"
)

const systemInstruction = `You are a personal-finance assistant operating on
the user's YNAB budget through the provided functions. Resolve accounts,
payees and categories by name with the listing functions before editing.
Prefer staging edits and asking the user to review over applying directly.
Amounts are in the budget's currency.`

// Agent is the assistant driving one chat session.
type Agent struct {
	w        io.Writer
	r        *bufio.Reader
	registry *tools.Registry
	model    string
	log      logging.Logger
	chat     *genai.Chat
}

// New creates an Agent reading user input from r and writing to w.
func New(w io.Writer, r io.Reader, registry *tools.Registry, model string, log logging.Logger) *Agent {
	return &Agent{
		w:        w,
		r:        bufio.NewReader(r),
		registry: registry,
		model:    model,
		log:      log,
	}
}

// Start creates the chat session with the tool declarations attached.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Tools: []*genai.Tool{
			{FunctionDeclarations: a.registry.Declarations()},
		},
	}
	chat, err := client.Chats.Create(ctx, a.model, config, nil)
	if err != nil {
		return fmt.Errorf("creating chat session: %w", err)
	}
	a.chat = chat
	return nil
}

const prompt = "ynab> "

// Run starts the interactive REPL. Initial prompts are consumed before
// reading from the user; "bye" or EOF ends the session.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Connected to your budget. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		content, err := a.ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		for _, part := range content.Parts {
			if part.Text != "" {
				fmt.Fprintln(a.w, part.Text)
			}
		}
	}
}

// ask sends parts to the model and keeps dispatching function calls
// through the registry until the model produces text.
func (a *Agent) ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	resp, err := a.chat.Send(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from model")
	}
	content := resp.Candidates[0].Content
	if responses := a.dispatchCalls(ctx, content); len(responses) > 0 {
		return a.ask(ctx, responses...)
	}
	return content, nil
}

// dispatchCalls runs every function call in content through the registry.
// The model may request several functions in one turn; each call is
// dispatched and the responses go back together, in call order.
func (a *Agent) dispatchCalls(ctx context.Context, content *genai.Content) []*genai.Part {
	var responses []*genai.Part
	for _, part := range content.Parts {
		if part.FunctionCall == nil {
			continue
		}
		a.log.Debug("model requested function", logging.F("name", part.FunctionCall.Name))
		result := a.registry.Dispatch(ctx, part.FunctionCall)
		responses = append(responses, &genai.Part{FunctionResponse: result})
	}
	return responses
}
