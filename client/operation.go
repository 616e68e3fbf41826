package client

import (
	"bytes"
	"github.com/infiotinc/gqltest/client/transport"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

var (
	ErrInvalidOperation   = errors.New("either `query` or `mutation` must be passed, but not both")
	ErrAmbiguousOperation = errors.Wrap(ErrInvalidOperation, "both query and mutation given")
	ErrMissingOperation   = errors.Wrap(ErrInvalidOperation, "no query or mutation given")
)

// Body is an operation given either as text or as a parsed document
type Body struct {
	text string
	doc  *ast.QueryDocument
}

func Text(s string) Body {
	return Body{text: s}
}

func Doc(doc *ast.QueryDocument) Body {
	return Body{doc: doc}
}

// Parse parses src into a document, without validating it against any schema
func Parse(src string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: src})
	if err != nil {
		return nil, errors.Wrap(err, "parse query")
	}

	return doc, nil
}

func MustParse(src string) *ast.QueryDocument {
	doc, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return doc
}

func (b Body) IsZero() bool {
	return b.text == "" && b.doc == nil
}

// String returns the text as given, or the printed document
func (b Body) String() string {
	if b.doc == nil {
		return b.text
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(b.doc)

	return buf.String()
}

// Params is what callers pass to Query and Mutate.
// Exactly one of Query and Mutation must be set.
type Params struct {
	Query         Body
	Mutation      Body
	Variables     map[string]interface{}
	OperationName string
	Extensions    map[string]interface{}
}

// Operation is a validated Params
type Operation struct {
	Kind          transport.Operation
	Body          Body
	Variables     map[string]interface{}
	OperationName string
	Extensions    map[string]interface{}
}

func NewOperation(p Params) (Operation, error) {
	hasQuery, hasMutation := !p.Query.IsZero(), !p.Mutation.IsZero()

	op := Operation{
		Variables:     p.Variables,
		OperationName: p.OperationName,
		Extensions:    p.Extensions,
	}

	switch {
	case hasQuery && hasMutation:
		return Operation{}, ErrAmbiguousOperation
	case hasQuery:
		op.Kind, op.Body = transport.Query, p.Query
	case hasMutation:
		op.Kind, op.Body = transport.Mutation, p.Mutation
	default:
		return Operation{}, ErrMissingOperation
	}

	return op, nil
}

func (o Operation) Request() transport.OperationRequest {
	return transport.OperationRequest{
		Query:         o.Body.String(),
		OperationName: o.OperationName,
		Variables:     o.Variables,
		Extensions:    o.Extensions,
	}
}
