package util

import (
	"net/http"
	"net/url"
	"time"
)

// ProxyFunc picks the configured proxy for a request's scheme and defers to
// the environment (HTTP_PROXY, HTTPS_PROXY, NO_PROXY) otherwise.
func ProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if req.URL.Scheme == "http" && httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// NewHTTPClient builds a client with the given timeout and proxy settings.
// Redirects stop after maxRedirects when it is positive.
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy string, maxRedirects int) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = ProxyFunc(httpProxy, httpsProxy)

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	if maxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		}
	}
	return client
}
