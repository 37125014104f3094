package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gorilla/mux"
)

const (
	DefaultServerAddress = ":8080"

	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

type (
	ServerOption      func(*ServerImpl)
	HandlerMiddleware func(http.Handler) http.Handler
)

type HandlerRegistry interface {
	Register(handler Handler)
}

type Server interface {
	Listener(context.Context) error
	HandlerRegistry
	http.Handler
}

type ServerImpl struct {
	Impl       *http.Server
	router     *mux.Router
	errorCodes map[int]func(error) bool
}

func NewServer(
	address string,
	opts ...ServerOption,
) *ServerImpl {
	router := withHandlerMetadata(mux.NewRouter())
	srv := &ServerImpl{
		Impl: &http.Server{
			Addr:              address,
			Handler:           router,
			ReadTimeout:       defaultReadTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
		},
		router:     router,
		errorCodes: make(map[int]func(error) bool),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

func (s *ServerImpl) Listener(ctx context.Context) error {
	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		err := s.Impl.Shutdown(shutdownCtx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}

	serverDoneChan := make(chan error, 1)
	go func() {
		err := s.Impl.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serverDoneChan <- err
	}()

	var err error
	select {
	case err = <-serverDoneChan:
	case <-ctx.Done():
		err = shutdown()
	}
	if err != nil {
		return fmt.Errorf("http listener %s: %w", s.Impl.Addr, err)
	}

	return nil
}

func (s *ServerImpl) Register(handler Handler) {
	s.router.
		Name(getRouteName(handler.Method(), handler.Path())).
		Methods(handler.Method()).
		Path(handler.Path()).
		Handler(httpHandlerWrapper(handler.HTTPHandler(), s.mapErrorCode))
}

func (s *ServerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *ServerImpl) mapErrorCode(err error) (int, bool) {
	for code, predicate := range s.errorCodes {
		if predicate(err) {
			return code, true
		}
	}

	return 0, false
}

func getRouteName(method, path string) string {
	path = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Latin, r) || unicode.IsDigit(r) {
			return r
		}

		if r == '{' || r == '}' {
			return -1
		}

		return '_'
	}, strings.Trim(path, "/"))
	return fmt.Sprintf("%s_%s", strings.ToUpper(method), path)
}

func getRoutePath(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.URL.Path
	}

	tpl, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}

	return tpl
}
