// Package server exposes a gqlgen executable schema as a server a test client can start and inject into.
package server

import (
	"context"
	"encoding/json"
	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"net/http"
	"sync"
)

const DefaultPath = "/graphql"

var ErrNotStarted = errors.New("server not started")

type Option func(s *Server)

// WithPath sets where operations are accepted, DefaultPath otherwise
func WithPath(path string) Option {
	return func(s *Server) {
		s.path = path
	}
}

func WithIntrospection() Option {
	return func(s *Server) {
		s.introspection = true
	}
}

// WithRequestContext derives the context resolvers see from the incoming request
func WithRequestContext(f func(ctx context.Context, r *http.Request) context.Context) Option {
	return func(s *Server) {
		s.requestContext = f
	}
}

func WithPlayground(path string) Option {
	return func(s *Server) {
		s.playgroundPath = path
	}
}

// WithStartHook runs f on Start, the server stays inactive if it fails
func WithStartHook(f func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.onStart = f
	}
}

type Server struct {
	schema graphql.ExecutableSchema

	path           string
	playgroundPath string
	introspection  bool
	requestContext func(ctx context.Context, r *http.Request) context.Context
	onStart        func(ctx context.Context) error

	m       sync.RWMutex
	started bool
}

func New(es graphql.ExecutableSchema, opts ...Option) *Server {
	s := &Server{
		schema: es,
		path:   DefaultPath,
	}
	for _, f := range opts {
		f(s)
	}

	return s
}

func (s *Server) Path() string {
	return s.path
}

// Handler builds a new handler. It answers 503 on the GraphQL path until Start succeeds.
func (s *Server) Handler() (http.Handler, error) {
	if s.schema == nil {
		return nil, errors.New("no executable schema")
	}

	srv := handler.New(s.schema)
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	if s.introspection {
		srv.Use(extension.Introspection{})
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, s.gate(s.withRequestContext(srv)))
	if s.playgroundPath != "" {
		mux.Handle(s.playgroundPath, playground.Handler("GraphQL playground", s.path))
	}

	return mux, nil
}

func (s *Server) Start(ctx context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.started {
		return nil
	}

	if s.onStart != nil {
		if err := s.onStart(ctx); err != nil {
			return errors.Wrap(err, "start hook")
		}
	}

	s.started = true

	return nil
}

func (s *Server) Started() bool {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.started
}

func (s *Server) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Started() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"errors": gqlerror.List{gqlerror.Errorf("%s", ErrNotStarted)},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRequestContext(next http.Handler) http.Handler {
	if s.requestContext == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(s.requestContext(r.Context(), r)))
	})
}
