package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// Recorder is an Injector that keeps every Options it receives.
// Respond is used when set, otherwise Response is returned (an empty 200 when nil).
type Recorder struct {
	Response *Response
	Respond  func(ctx context.Context, opts Options) (*Response, error)

	m     sync.Mutex
	calls []Options
}

func (r *Recorder) Inject(ctx context.Context, opts Options) (*Response, error) {
	r.m.Lock()
	r.calls = append(r.calls, opts)
	r.m.Unlock()

	if r.Respond != nil {
		return r.Respond(ctx, opts)
	}

	if r.Response != nil {
		return r.Response, nil
	}

	return &Response{
		StatusCode:    http.StatusOK,
		StatusMessage: http.StatusText(http.StatusOK),
		Header:        http.Header{},
	}, nil
}

func (r *Recorder) Calls() []Options {
	r.m.Lock()
	defer r.m.Unlock()

	return append([]Options(nil), r.calls...)
}

func (r *Recorder) Last() (Options, bool) {
	r.m.Lock()
	defer r.m.Unlock()

	if len(r.calls) == 0 {
		return Options{}, false
	}

	return r.calls[len(r.calls)-1], true
}

// NewMockResponse builds a 200 response carrying a GraphQL envelope with data
func NewMockResponse(data interface{}, errs interface{}) *Response {
	envelope := map[string]interface{}{"data": data}
	if errs != nil {
		envelope["errors"] = errs
	}

	b, _ := json.Marshal(envelope)

	return &Response{
		StatusCode:    http.StatusOK,
		StatusMessage: http.StatusText(http.StatusOK),
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          b,
	}
}
