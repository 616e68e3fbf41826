// Package testschema is a small executable schema for tests, written by hand instead of generated.
package testschema

import (
	"bytes"
	"context"
	"fmt"
	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"net/http"
	"sync"
)

const SDL = `
type Query {
	ping: String!
	echo(text: String!): String!
	header(name: String!): String
	greeting: String!
	fail: String
}

type Mutation {
	setGreeting(text: String!): String!
}
`

var schema = gqlparser.MustLoadSchema(&ast.Source{Name: "testschema.graphql", Input: SDL})

type headerKey struct{}

// RequestContext makes request headers available to the header field
func RequestContext(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, headerKey{}, r.Header)
}

type Schema struct {
	m        sync.Mutex
	greeting string
}

var _ graphql.ExecutableSchema = &Schema{}

func New() *Schema {
	return &Schema{greeting: "hello"}
}

func (s *Schema) Schema() *ast.Schema {
	return schema
}

func (s *Schema) Complexity(typeName, fieldName string, childComplexity int, args map[string]interface{}) (int, bool) {
	return 0, false
}

// Exec answers like generated code does: fields are written in selection
// order and a "selectedFields" extension counts the top level fields.
func (s *Schema) Exec(ctx context.Context) graphql.ResponseHandler {
	first := true

	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		oc := graphql.GetOperationContext(ctx)

		typ := "Query"
		if oc.Operation.Operation == ast.Mutation {
			typ = "Mutation"
		}

		fields := graphql.CollectFields(oc, oc.Operation.SelectionSet, []string{typ})
		out := graphql.NewFieldSet(fields)
		var errs gqlerror.List

		for i, f := range fields {
			args := f.ArgumentMap(oc.Variables)

			switch f.Name {
			case "__typename":
				out.Values[i] = graphql.MarshalString(typ)
			case "ping":
				out.Values[i] = graphql.MarshalString("pong")
			case "echo":
				out.Values[i] = graphql.MarshalString(fmt.Sprint(args["text"]))
			case "header":
				h, _ := ctx.Value(headerKey{}).(http.Header)
				if v := h.Get(fmt.Sprint(args["name"])); v != "" {
					out.Values[i] = graphql.MarshalString(v)
				} else {
					out.Values[i] = graphql.Null
				}
			case "greeting":
				s.m.Lock()
				out.Values[i] = graphql.MarshalString(s.greeting)
				s.m.Unlock()
			case "setGreeting":
				s.m.Lock()
				s.greeting = fmt.Sprint(args["text"])
				out.Values[i] = graphql.MarshalString(s.greeting)
				s.m.Unlock()
			case "fail":
				out.Values[i] = graphql.Null
				errs = append(errs, &gqlerror.Error{Message: "fail always fails"})
			default:
				out.Values[i] = graphql.Null
				errs = append(errs, gqlerror.Errorf("unknown field %s", f.Name))
			}
		}

		graphql.RegisterExtension(ctx, "selectedFields", len(fields))

		var buf bytes.Buffer
		out.MarshalGQL(&buf)

		return &graphql.Response{
			Data:   buf.Bytes(),
			Errors: errs,
		}
	}
}
