package http

import (
	"net/http"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/api"
	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
)

type stateHandler struct {
	stateReader api.StateReader
}

func NewStateHandler(stateReader api.StateReader) pkghttp.Handler {
	return stateHandler{stateReader: stateReader}
}

func (h stateHandler) Method() string {
	return http.MethodGet
}

func (h stateHandler) Path() string {
	return "/state"
}

func (h stateHandler) HTTPHandler() pkghttp.HandlerFunc {
	return func(w pkghttp.ResponseWriter, _ *http.Request) error {
		w.SetJSONBody(h.stateReader.Snapshot())
		return nil
	}
}
