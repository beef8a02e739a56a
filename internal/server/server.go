package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/drakos74/fft-filter/internal/api"
	"github.com/rs/zerolog/log"
)

type Action string

type Method string

const (
	Data Action = "data"
	Api  Action = "api"

	GET  Method = "GET"
	POST Method = "POST"
)

type Handler func(r *http.Request) ([]byte, int, error)

type Route struct {
	Action Action
	Path   string
	Method Method
	Exec   Handler
}

type Server struct {
	name     string
	addr     string
	debug    bool
	block    api.Block
	routes   []Route
	handlers map[string]http.Handler
}

func NewServer(name string, addr string) *Server {
	return &Server{
		name:     name,
		addr:     addr,
		block:    api.NewBlock(),
		routes:   make([]Route, 0),
		handlers: make(map[string]http.Handler),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	return s
}

// Mount serves the given handler on the path as is.
func (s *Server) Mount(path string, handler http.Handler) *Server {
	s.handlers[path] = handler
	return s
}

func (s *Server) handle(route Route) func(w http.ResponseWriter, r *http.Request) {
	request := fmt.Sprintf("%s request : /%s/%s", route.Method, route.Action, route.Path)
	return func(w http.ResponseWriter, r *http.Request) {
		if s.debug {
			s.block.Action <- api.NewSignal(request).Create()
			defer func() {
				s.block.ReAction <- api.NewSignal(request).Create()
			}()
		}
		requestMethod := Method(r.Method)
		switch requestMethod {
		case route.Method:
			b, code, err := route.Exec(r)
			if err != nil {
				s.error(w, code, err)
			} else {
				s.code(w, b, code)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// Handler creates the http handler for all routes.
// Routes sharing the same path are dispatched on the request method.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	byPath := make(map[string][]Route)
	paths := make([]string, 0)
	for _, route := range s.routes {
		p := fmt.Sprintf("/%s", route.Action)
		if route.Path != "" {
			p = fmt.Sprintf("/%s/%s", route.Action, route.Path)
		}
		if _, ok := byPath[p]; !ok {
			paths = append(paths, p)
		}
		byPath[p] = append(byPath[p], route)
	}
	for _, p := range paths {
		handlers := make(map[Method]http.HandlerFunc)
		for _, route := range byPath[p] {
			handlers[route.Method] = s.handle(route)
		}
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			if h, ok := handlers[Method(r.Method)]; ok {
				h(w, r)
				return
			}
			w.WriteHeader(http.StatusMethodNotAllowed)
		})
	}
	for p, h := range s.handlers {
		mux.Handle(p, h)
	}
	return mux
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.debug {
		go func() {
			for action := range s.block.Action {
				log.Debug().
					Time("time", action.Time).
					Str("action", action.Name).
					Msg("started execution")
				reaction := <-s.block.ReAction
				log.Debug().
					Time("time", action.Time).
					Float64("duration", time.Since(action.Time).Seconds()).
					Str("reaction", reaction.Name).
					Msg("completed execution")
			}
		}()
	}

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdown, cnl := context.WithTimeout(context.Background(), 5*time.Second)
		defer cnl()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Str("server", s.name).Msg("could not shut down server")
		}
	}()

	log.Info().Str("server", s.name).Str("addr", s.addr).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) code(w http.ResponseWriter, b []byte, code int) {
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	s.respond(w, b)
}

func (s *Server) respond(w http.ResponseWriter, b []byte) {
	_, err := w.Write(b)
	if err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, code int, err error) {
	log.Error().Err(err).Msg("error for http request")
	if code == 0 || code == http.StatusOK {
		code = http.StatusInternalServerError
	}
	s.code(w, []byte(err.Error()), code)
}

func Live() Route {
	return Route{
		Action: Data,
		Method: GET,
		Exec: func(r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, http.StatusOK, nil
		},
	}
}

func JsonRead(r *http.Request, debug bool, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if debug {
		log.Info().
			Str("url", fmt.Sprintf("%+v", r.URL)).
			Str("request", r.RequestURI).
			Str("remote-address", r.RemoteAddr).
			Str("method", r.Method).
			Str("body", string(body)).
			Msg("received payload")
	}
	if len(body) > 0 {
		err = json.Unmarshal(body, v)
		if err != nil {
			return err
		}
	}
	return nil
}
