package client

import (
	"context"
	"fmt"
	"github.com/infiotinc/gqltest/client/transport"
	"github.com/pkg/errors"
	"net/http"
	"os"
	"strconv"
)

// Server is a GraphQL server reachable through an http.Handler
type Server interface {
	Handler() (http.Handler, error)
	// Path is where the server accepts POSTed operations
	Path() string
}

// Starter is implemented by servers that must be started before serving traffic
type Starter interface {
	Start(ctx context.Context) error
}

type Config struct {
	Server Server
	// RequestOptions are applied to every operation, see Client.SetOptions
	RequestOptions transport.Options
}

type Client struct {
	injector transport.Injector
	path     string
	state    *State

	log bool // set the "GQLTEST_LOG" env to true to enable
}

// New starts cfg.Server when it is a Starter, then registers its handler on
// an in-process transport.App. The server is always started before the first
// operation can reach it.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Server == nil {
		return nil, errors.New("no server given")
	}

	h, err := cfg.Server.Handler()
	if err != nil {
		return nil, errors.Wrap(err, "create handler")
	}

	if s, ok := cfg.Server.(Starter); ok {
		if err := s.Start(ctx); err != nil {
			return nil, errors.Wrap(err, "start server")
		}
	}

	app := transport.NewApp()
	if err := app.Register(h); err != nil {
		return nil, errors.Wrap(err, "register handler")
	}

	return NewWithInjector(app, cfg.Server.Path(), cfg.RequestOptions), nil
}

// NewWithInjector builds a Client sending operations to path through inj
func NewWithInjector(inj transport.Injector, path string, opts transport.Options) *Client {
	c := &Client{
		injector: inj,
		path:     path,
		state:    NewState(opts),
	}
	c.log, _ = strconv.ParseBool(os.Getenv("GQLTEST_LOG"))

	return c
}

// State returns the options cell shared by Query, Mutate and SetOptions
func (c *Client) State() *State {
	return c.state
}

func (c *Client) do(ctx context.Context, p Params) (*transport.Response, error) {
	op, err := NewOperation(p)
	if err != nil {
		return nil, err
	}

	opts := transport.Options{
		URL:     c.path,
		Method:  http.MethodPost,
		Payload: op.Request(),
	}.Merge(c.state.Options())

	c.printLog(string(op.Kind), opts.Method, opts.URL)

	return c.injector.Inject(ctx, opts)
}

// Query runs an operation against the server.
// Query and Mutate are interchangeable, the kind is taken from p.
func (c *Client) Query(ctx context.Context, p Params) (*transport.Response, error) {
	return c.do(ctx, p)
}

// Mutate runs an operation against the server
func (c *Client) Mutate(ctx context.Context, p Params) (*transport.Response, error) {
	return c.do(ctx, p)
}

type OptionsUpdate struct {
	// RequestOptions replace the current options when not nil
	RequestOptions *transport.Options
}

// SetOptions changes the options of the following operations
func (c *Client) SetOptions(u OptionsUpdate) {
	if u.RequestOptions != nil {
		c.state.Set(*u.RequestOptions)
	}
}

func (c *Client) printLog(typ string, rest ...interface{}) {
	if c.log {
		fmt.Printf("# %-20v: ", typ)
		fmt.Println(rest...)
	}
}
