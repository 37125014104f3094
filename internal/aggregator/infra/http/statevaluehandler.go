package http

import (
	"fmt"
	"net/http"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/api"
	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
)

type stateValueHandler struct {
	stateReader api.StateReader
}

func NewStateValueHandler(stateReader api.StateReader) pkghttp.Handler {
	return stateValueHandler{stateReader: stateReader}
}

func (h stateValueHandler) Method() string {
	return http.MethodGet
}

func (h stateValueHandler) Path() string {
	return "/state/{key:.+}"
}

func (h stateValueHandler) HTTPHandler() pkghttp.HandlerFunc {
	return func(w pkghttp.ResponseWriter, r *http.Request) (err error) {
		key, err := pkghttp.Parse(pkghttp.PathParameter[string]("key"), r, err)
		if err != nil {
			return err
		}

		value, ok := h.stateReader.Snapshot().Value(key)
		if !ok {
			return fmt.Errorf("%w: %s", api.ErrKeyNotFound, key)
		}

		w.SetJSONBody(stateValueOut{Key: key, Value: value})
		return nil
	}
}

type stateValueOut struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
