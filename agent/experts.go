package agent

import (
	"context"
	"os"
	"time"

	"github.com/etnz/flagship"
	"github.com/etnz/flagship/docs"
	"github.com/etnz/flagship/renderer"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used by every expert.
const DefaultModel = "gemini-2.5-flash"

// APIKeyEnv is the environment variable holding the Gemini API key.
const APIKeyEnv = "GEMINI_API_KEY"

// NewClient creates a Gemini client. An empty apiKey is read from APIKeyEnv.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewGemini returns a started Consultant, ready to serve as a flagship.Advisor.
func NewGemini(ctx context.Context, client *genai.Client, model string) (*Expert, error) {
	e := NewConsultant(model)
	if err := e.Start(ctx, client); err != nil {
		return nil, err
	}
	return e, nil
}

func withDefault(model string) string {
	if model == "" {
		return DefaultModel
	}
	return model
}

// newFacilitator returns the expert talking to the user. It dispatches
// questions to experts and reads the user manual.
func newFacilitator(model string, experts ...*Expert) *Expert {
	lib := append(NewLibrary(experts), manual())
	return &Expert{
		Name:      "Facilitator",
		ModelName: withDefault(model),
		Config: &genai.GenerateContentConfig{
			Tools: lib.Tools(),
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You assist the owner of a small shop reselling used iPhone and Samsung phones.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They keep context of your previous questions.

			Figures about the shop (stock, sales, debts, cash) must come from the Bookkeeper,
			never guess them. Ask the Consultant for business advice and market prices.
			Read the Manual to explain how to do something with the fsh command.
			Answer in the language of the user, shortly.
		`}}},
		},
		Library: lib,
	}
}

// NewConsultant returns an expert in phone resale with Google Search grounding.
func NewConsultant(model string) *Expert {
	return &Expert{
		Name: "Consultant",
		Description: `This is a business consultant for second-hand phone shops.
		It knows current market prices of used phones and how to manage stock, installments and debts.`,
		ModelName: withDefault(model),
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a business consultant for small shops reselling used phones.
			You use Google Search to ground prices and market trends.
			Your advice is concrete, short and applicable by a single shop owner.
			Answer as plain text.
			`}}},
		},
	}
}

// Source returns the current state of the shop.
type Source func(ctx context.Context) (flagship.State, error)

// NewBookkeeper returns an expert reading the shop books from source.
func NewBookkeeper(model string, source Source) *Expert {
	lib := NewLibrary(BookkeeperFunctions(source))
	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper. It reads the shop books:
		devices in stock, sales, debtors, cash balance and exchange rates.`,
		ModelName: withDefault(model),
		Config: &genai.GenerateContentConfig{
			Tools: lib.Tools(),
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You keep the books of a phone resale shop.
				Use the Tools to read the figures, and answer with the exact amounts.
				Amounts are in US dollars.
			`}}},
		},
		Library: lib,
	}
}

// Func implements a simple Function
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// report declares a function without parameters returning a markdown report of the state.
func report(source Source, name, description string, render func(flagship.State) string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown report."},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			st, err := source(ctx)
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, render(st))
		},
	}
}

// BookkeeperFunctions are the functions the Bookkeeper can call.
func BookkeeperFunctions(source Source) []Function {
	return []Function{
		report(source, "Dashboard", "Headline figures: total assets, cash, stock value, debt, profit and exchange rates.",
			func(st flagship.State) string { return renderer.DashboardMarkdown(flagship.Summarize(st)) }),
		report(source, "Debtors", "Customers who still owe money, with amounts and due dates.",
			func(st flagship.State) string { return renderer.RenderDebtors(renderer.NewDebtors(st, time.Now())) }),
		report(source, "Sales", "The 50 most recent sales.",
			func(st flagship.State) string { return renderer.RenderSales(renderer.NewSales(st, 50)) }),
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Stock",
				Description: "Devices in stock, optionally filtered by model or IMEI.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {Type: genai.TypeString, Description: "Part of a model name or IMEI. Empty lists every device."},
					},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the devices."},
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				query, _ := args["query"].(string)
				st, err := source(ctx)
				if err != nil {
					return failure(id, "Stock", err)
				}
				return success(id, "Stock", renderer.RenderInventory(renderer.NewInventory(st, query)))
			},
		},
	}
}

// manual reads the user documentation of fsh.
func manual() *Func {
	const name = "Manual"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "The user manual of the fsh command: how to add devices, sell, record payments, back up, configure.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic": {Type: genai.TypeString, Description: "A topic name, or empty for the list of topics."},
				},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "The markdown of the topic."},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			topic, _ := args["topic"].(string)
			if topic == "" {
				topic = docs.Readme
			}
			content, err := docs.Topic(topic)
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, content)
		},
	}
}
