package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"sync"
)

const (
	defaultAuthority  = "localhost:80"
	defaultRemoteAddr = "127.0.0.1:80"
)

var (
	ErrNoHandler         = errors.New("no handler registered")
	ErrAlreadyRegistered = errors.New("a handler is already registered")
	ErrReaderPayload     = errors.New("io.Reader payloads cannot be reused, use []byte or string")
)

// App serves injected requests through a registered http.Handler, without a listener.
// The zero value is ready to use.
type App struct {
	handler http.Handler

	initOnce sync.Once
	log      bool // set the "GQLTEST_LOG" env to true to enable
}

func NewApp() *App {
	return &App{}
}

func (a *App) initStruct() {
	a.initOnce.Do(func() {
		a.log, _ = strconv.ParseBool(os.Getenv("GQLTEST_LOG"))
	})
}

func (a *App) Register(h http.Handler) error {
	a.initStruct()

	if h == nil {
		return errors.New("register: nil handler")
	}

	if a.handler != nil {
		return ErrAlreadyRegistered
	}

	a.handler = h
	a.printLog("REGISTER", fmt.Sprintf("%T", h))

	return nil
}

func (a *App) Inject(ctx context.Context, opts Options) (*Response, error) {
	a.initStruct()

	if a.handler == nil {
		return nil, ErrNoHandler
	}

	req, err := NewRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	a.printLog("INJECT", req.Method, req.URL.String())

	rec := httptest.NewRecorder()
	if err := serve(a.handler, rec, req); err != nil {
		return nil, err
	}

	res := rec.Result()
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	a.printLog("RESPONSE", res.StatusCode, string(body))

	return &Response{
		StatusCode:    res.StatusCode,
		StatusMessage: http.StatusText(res.StatusCode),
		Header:        res.Header,
		Cookies:       res.Cookies(),
		Body:          body,
	}, nil
}

func serve(h http.Handler, w http.ResponseWriter, req *http.Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panic: %v", r)
		}
	}()

	h.ServeHTTP(w, req)

	return nil
}

// NewRequest builds the http.Request an injection of opts would serve
func NewRequest(ctx context.Context, opts Options) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	authority := opts.Authority
	if authority == "" {
		authority = defaultAuthority
	}

	path := opts.URL
	if path == "" {
		path = "/"
	}

	u, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse url %q", path)
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		u.Host = authority
	}

	if len(opts.Query) > 0 {
		q := u.Query()
		for k, v := range opts.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	body, isJSON, err := encodePayload(opts.Payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	req.RemoteAddr = opts.RemoteAddr
	if req.RemoteAddr == "" {
		req.RemoteAddr = defaultRemoteAddr
	}

	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	if isJSON && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for name, value := range opts.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	for _, ro := range opts.RequestOptions {
		ro(req)
	}

	return req, nil
}

func encodePayload(payload interface{}) (io.Reader, bool, error) {
	switch p := payload.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return bytes.NewReader(p), false, nil
	case string:
		return bytes.NewReader([]byte(p)), false, nil
	case io.Reader:
		return nil, false, ErrReaderPayload
	}

	b, err := json.Marshal(normalize(payload))
	if err != nil {
		return nil, false, errors.Wrap(err, "encode payload")
	}

	return bytes.NewReader(b), true, nil
}

func (a *App) printLog(typ string, rest ...interface{}) {
	if a.log {
		fmt.Printf("# %-20v: ", typ)
		fmt.Println(rest...)
	}
}
