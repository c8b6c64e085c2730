package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Function is a tool a model can call: an expert, or a report of the books.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Library is the set of functions offered to a model, in declaration order.
type Library []Function

// NewLibrary collects functions of any concrete type.
func NewLibrary[T Function](functions []T) Library {
	lib := make(Library, len(functions))
	for i, f := range functions {
		lib[i] = f
	}
	return lib
}

// Declarations returns what the model needs to know to call the library.
func (l Library) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, len(l))
	for i, f := range l {
		decls[i] = f.Declaration()
	}
	return decls
}

// Tools wraps the declarations in a model configuration tool list.
func (l Library) Tools() []*genai.Tool {
	return []*genai.Tool{{FunctionDeclarations: l.Declarations()}}
}

// Call runs the function named by call. Failures are reported in the
// response, for the model to read.
func (l Library) Call(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	for _, f := range l {
		if f.Declaration().Name == call.Name {
			return f.Call(ctx, call.ID, call.Args)
		}
	}
	return failure(call.ID, call.Name, fmt.Errorf("unknown function %s", call.Name))
}

func success(id, name string, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"output": output}}
}

func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}
