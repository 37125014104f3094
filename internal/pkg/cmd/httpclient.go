package cmd

import (
	"fmt"

	"github.com/klwxsrx/state-aggregator/pkg/env"
	"github.com/klwxsrx/state-aggregator/pkg/http"
	"github.com/klwxsrx/state-aggregator/pkg/strings"
)

type HTTPClientFactory struct {
	opts []http.ClientOption
}

func NewHTTPClientFactory(
	opts ...http.ClientOption,
) HTTPClientFactory {
	return HTTPClientFactory{
		opts: opts,
	}
}

// MustInitClient reads the destination base url from <DESTINATION>_SERVICE_URL
func (f HTTPClientFactory) MustInitClient(dest http.Destination, extraOpts ...http.ClientOption) http.Client {
	hostEnv := fmt.Sprintf("%s_SERVICE_URL", strings.ToScreamingSnakeCase(string(dest)))
	host := env.Must(env.Parse[string](hostEnv))

	opts := make([]http.ClientOption, 0, len(f.opts)+len(extraOpts)+1)
	opts = append(opts, http.WithClientDestination(string(dest), host))
	opts = append(opts, f.opts...)
	opts = append(opts, extraOpts...)
	return http.NewClient(opts...)
}
