package transport

import (
	"context"
	"encoding/json"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"net/http"
)

type Operation string

const (
	Query    Operation = "query"
	Mutation Operation = "mutation"
)

// OperationRequest is the payload a GraphQL server expects on POST
type OperationRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Extensions    map[string]interface{} `json:"extensions,omitempty"`
}

type OperationResponse struct {
	Data       json.RawMessage            `json:"data,omitempty"`
	Errors     gqlerror.List              `json:"errors,omitempty"`
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

func (r OperationResponse) UnmarshalData(t interface{}) error {
	if r.Data == nil {
		return nil
	}

	return json.Unmarshal(r.Data, t)
}

func (r OperationResponse) UnmarshalExtension(name string, t interface{}) error {
	if r.Extensions == nil {
		return nil
	}

	ex, ok := r.Extensions[name]
	if !ok {
		return nil
	}

	return json.Unmarshal(ex, t)
}

// Options describes a single injected request.
// Zero fields are left to the injector defaults.
type Options struct {
	URL    string `yaml:"url"`
	Method string `yaml:"method"`
	// Payload is sent as is when it is a []byte or a string, and JSON encoded otherwise.
	// An io.Reader is refused: options are reused by every operation of a client.
	Payload    interface{}       `yaml:"payload"`
	Headers    map[string]string `yaml:"headers"`
	Query      map[string]string `yaml:"query"`
	Cookies    map[string]string `yaml:"cookies"`
	RemoteAddr string            `yaml:"remoteAddr"`
	Authority  string            `yaml:"authority"`
	// RequestOptions run last, on the fully built request
	RequestOptions []HttpRequestOption `yaml:"-"`
}

type HttpRequestOption func(req *http.Request)

// Merge returns a copy of o where every non-zero field of override wins.
// Maps and RequestOptions are replaced, not merged.
func (o Options) Merge(override Options) Options {
	if override.URL != "" {
		o.URL = override.URL
	}
	if override.Method != "" {
		o.Method = override.Method
	}
	if override.Payload != nil {
		o.Payload = override.Payload
	}
	if override.Headers != nil {
		o.Headers = override.Headers
	}
	if override.Query != nil {
		o.Query = override.Query
	}
	if override.Cookies != nil {
		o.Cookies = override.Cookies
	}
	if override.RemoteAddr != "" {
		o.RemoteAddr = override.RemoteAddr
	}
	if override.Authority != "" {
		o.Authority = override.Authority
	}
	if override.RequestOptions != nil {
		o.RequestOptions = override.RequestOptions
	}

	return o
}

// Response is the synthetic response of an injected request
type Response struct {
	StatusCode    int
	StatusMessage string
	Header        http.Header
	Cookies       []*http.Cookie
	Body          []byte
}

func (r *Response) String() string {
	return string(r.Body)
}

func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Operation decodes the body as a GraphQL response envelope
func (r *Response) Operation() (OperationResponse, error) {
	var opres OperationResponse
	err := json.Unmarshal(r.Body, &opres)

	return opres, err
}

type Injector interface {
	Inject(ctx context.Context, opts Options) (*Response, error)
}

type Func func(context.Context, Options) (*Response, error)

func (f Func) Inject(ctx context.Context, opts Options) (*Response, error) {
	return f(ctx, opts)
}
