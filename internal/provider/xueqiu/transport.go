package xueqiu

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// baseTransportConfig returns the HTTP transport shared by one client. Pages
// are fetched one after another against the same host, so a single idle
// connection is kept.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: time.Minute,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          1,
		MaxIdleConnsPerHost:   1,
		// Accept-Encoding is set explicitly, decompression happens in decodeBody.
		DisableCompression: true,
	}
}

// newHTTPClient creates the resty client used for kline requests.
func newHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	hc := &http.Client{
		Transport: baseTransportConfig(),
		Timeout:   timeout,
	}
	return resty.NewWithClient(hc).SetBaseURL(baseURL)
}
