package xueqiu

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"kline-data/internal/model"
	"kline-data/internal/provider"
)

const (
	// Name identifies this source on the command line and in logs.
	Name = "xueqiu"

	// DefaultBaseURL is the quote host serving the kline endpoint.
	DefaultBaseURL = "https://stock.xueqiu.com"

	// DefaultUserAgent is sent when the config does not name one.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

	klinePath = "/v5/stock/chart/kline.json"

	// Responses are a few hundred rows; anything this large is not a kline page.
	maxBodyBytes = 32 << 20
)

// Config holds what a Client needs to talk to the upstream.
type Config struct {
	BaseURL   string
	Cookie    string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches kline pages. It implements provider.PageFetcher.
type Client struct {
	http   *resty.Client
	cookie string
	ua     string
	logger *slog.Logger
}

var _ provider.PageFetcher = (*Client)(nil)

// NewClient constructs a Client. The cookie is sent verbatim on every request.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   newHTTPClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout),
		cookie: cfg.Cookie,
		ua:     cfg.UserAgent,
		logger: logger.With("source", Name),
	}
}

// Name returns the source name.
func (c *Client) Name() string { return Name }

// headers returns the browser-like request headers for symbol.
func (c *Client) headers(symbol string) map[string]string {
	return map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Encoding": "gzip, deflate, br",
		"Accept-Language": "en,zh-CN;q=0.9,zh;q=0.8",
		"Connection":      "keep-alive",
		"Cookie":          c.cookie,
		"User-Agent":      c.ua,
		"Origin":          "https://xueqiu.com",
		"Referer":         "https://xueqiu.com/S/" + symbol,
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-site",
	}
}

// queryParams builds the kline query for one window.
func queryParams(w provider.Window) map[string]string {
	return map[string]string{
		"symbol": w.Symbol,
		"begin":  strconv.FormatInt(w.Anchor.UnixMilli(), 10),
		"period": string(w.Period),
		"type":   string(w.Direction()),
		"count":  strconv.Itoa(w.Count),
	}
}

// FetchPage runs one GET against the kline endpoint. Every failure is
// returned as a *provider.TransportError.
func (c *Client) FetchPage(ctx context.Context, w provider.Window) (model.Page, error) {
	c.logger.Debug("kline request", "symbol", w.Symbol, "begin", w.Anchor.UnixMilli(), "period", w.Period,
		"type", w.Direction(), "size", w.Size())

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeaders(c.headers(w.Symbol)).
		SetQueryParams(queryParams(w)).
		Get(klinePath)
	if err != nil {
		return model.Page{}, c.fail(0, "request", err)
	}
	body := resp.RawBody()
	if body == nil {
		return model.Page{}, c.fail(resp.StatusCode(), "empty body", nil)
	}
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return model.Page{}, c.fail(resp.StatusCode(), resp.Status(), nil)
	}

	r, err := decodeBody(body, resp.Header().Get("Content-Encoding"))
	if err != nil {
		return model.Page{}, c.fail(resp.StatusCode(), "decode body", err)
	}
	defer r.Close()
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return model.Page{}, c.fail(resp.StatusCode(), "read body", err)
	}

	var result KlineResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return model.Page{}, c.fail(resp.StatusCode(), "parse JSON", err)
	}
	if result.ErrorCode != 0 {
		msg := fmt.Sprintf("error_code %d", result.ErrorCode)
		if result.ErrorDescription != "" {
			msg += ": " + result.ErrorDescription
		}
		return model.Page{}, c.fail(resp.StatusCode(), msg, nil)
	}
	page, err := result.ToPage()
	if err != nil {
		return model.Page{}, c.fail(resp.StatusCode(), "malformed page", err)
	}
	if n := result.TextCells(); n > 0 {
		c.logger.Debug("non-numeric cells stored as NaN", "symbol", w.Symbol, "cells", n)
	}
	return page, nil
}

func (c *Client) fail(status int, msg string, err error) error {
	return &provider.TransportError{Source: Name, StatusCode: status, Message: msg, Err: err}
}

// decodeBody wraps r according to the Content-Encoding response header.
func decodeBody(r io.Reader, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return io.NopCloser(r), nil
	case "gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case "deflate":
		return newDeflateReader(r)
	case "br":
		return io.NopCloser(brotli.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// newDeflateReader reads zlib-wrapped data, or raw DEFLATE when the stream
// does not start with a zlib header.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	if hdr, err := br.Peek(2); err == nil && isZlibHeader(hdr) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// isZlibHeader checks CM=8 and the FCHECK multiple of 31 (RFC 1950).
func isZlibHeader(b []byte) bool {
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}
