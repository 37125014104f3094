package http

import (
	"net/http"

	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
)

type healthcheckHandler struct{}

func NewHealthcheckHandler() pkghttp.Handler {
	return healthcheckHandler{}
}

func (h healthcheckHandler) Method() string {
	return http.MethodGet
}

func (h healthcheckHandler) Path() string {
	return "/healthcheck"
}

func (h healthcheckHandler) HTTPHandler() pkghttp.HandlerFunc {
	return func(pkghttp.ResponseWriter, *http.Request) error {
		return nil
	}
}
