package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

const HealthPath = "/healthz"

func WithHealthCheck(customHandlerFunc HandlerFunc) ServerOption {
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(struct {
			Status string `json:"status"`
		}{
			Status: "OK",
		})
	}

	return func(srv *ServerImpl) {
		if customHandlerFunc != nil {
			handler = httpHandlerWrapper(customHandlerFunc, srv.mapErrorCode)
		}

		srv.router.
			Name(getRouteName(http.MethodGet, HealthPath)).
			Methods(http.MethodGet).
			Path(HealthPath).
			HandlerFunc(handler)
	}
}

// WithRawHandler registers a plain net/http handler, e.g. a metrics exporter
func WithRawHandler(method, path string, handler http.Handler) ServerOption {
	return func(srv *ServerImpl) {
		srv.router.
			Name(getRouteName(method, path)).
			Methods(method).
			Path(path).
			Handler(handler)
	}
}

func WithErrorMapping(statusCodes map[int][]error) ServerOption {
	statusCodePredicates := make(map[int]func(error) bool, len(statusCodes))
	for statusCode, errs := range statusCodes {
		statusCodePredicates[statusCode] = func(err error) bool {
			for _, expected := range errs {
				if errors.Is(err, expected) {
					return true
				}
			}
			return false
		}
	}

	return WithErrorMappingPredicate(statusCodePredicates)
}

func WithErrorMappingPredicate(statusCodesPredicates map[int]func(error) bool) ServerOption {
	return func(srv *ServerImpl) {
		for code, predicate := range statusCodesPredicates {
			srv.errorCodes[code] = predicate
		}
	}
}

func WithMW(mw HandlerMiddleware) ServerOption {
	return func(srv *ServerImpl) {
		srv.router.Use(mux.MiddlewareFunc(mw))
	}
}

func WithCORSHandler() ServerOption {
	return func(srv *ServerImpl) {
		srv.router.Use(mux.CORSMethodMiddleware(srv.router))
	}
}
