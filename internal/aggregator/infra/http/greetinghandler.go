package http

import (
	"net/http"

	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
)

const greetingPage = "<h1>Hello, World!</h1>"

type greetingHandler struct{}

func NewGreetingHandler() pkghttp.Handler {
	return greetingHandler{}
}

func (h greetingHandler) Method() string {
	return http.MethodGet
}

func (h greetingHandler) Path() string {
	return "/"
}

func (h greetingHandler) HTTPHandler() pkghttp.HandlerFunc {
	return func(w pkghttp.ResponseWriter, _ *http.Request) error {
		w.SetBody(pkghttp.ContentTypeHTML, []byte(greetingPage))
		return nil
	}
}
