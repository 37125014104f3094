package http

import (
	"fmt"
	"net/http"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/api"
	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
)

type countHandler struct {
	stateReader api.StateReader
}

func NewCountHandler(stateReader api.StateReader) pkghttp.Handler {
	return countHandler{stateReader: stateReader}
}

func (h countHandler) Method() string {
	return http.MethodGet
}

func (h countHandler) Path() string {
	return "/count"
}

func (h countHandler) HTTPHandler() pkghttp.HandlerFunc {
	return func(w pkghttp.ResponseWriter, _ *http.Request) error {
		snapshot := h.stateReader.Snapshot()
		w.SetBody(pkghttp.ContentTypeText, []byte(fmt.Sprintf("The count is %d", snapshot.Count)))
		return nil
	}
}
