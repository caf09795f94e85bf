package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/logging"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3001/api"

// maxBodySize bounds how much of a response is read.
const maxBodySize = 4 << 20

type Client interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, email, password string) (*AuthResponse, error)

	GetLandingPageBySlug(ctx context.Context, slug string) (*LandingPage, error)

	GetCurrentCreator(ctx context.Context) (*Creator, error)
	GetCreator(ctx context.Context, creatorID string) (*Creator, error)

	CreatePaymentLink(ctx context.Context, in PaymentLinkInput) (*PaymentLink, error)
	GetPaymentLinks(ctx context.Context, creatorID string, f PaymentLinkFilter) (*PaymentLinkList, error)
	UpdatePaymentLink(ctx context.Context, linkID string, in PaymentLinkInput) (*PaymentLink, error)
	PublishPaymentLink(ctx context.Context, linkID string, published bool) (*PaymentLink, error)
	GetPaymentLinkDetails(ctx context.Context, slug string) (*PaymentLink, error)

	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error)
	CreateCryptoPayment(ctx context.Context, req CryptoPaymentRequest) (*CryptoPayment, error)
	GetCryptoPaymentStatus(ctx context.Context, paymentID string) (*CryptoPaymentStatus, error)
}

// TokenSource yields the bearer token for a request; "" sends none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for baseURL. A nil httpClient gets a
// 30 second timeout; a nil tokens sends unauthenticated requests.
func NewHTTPClient(baseURL string, httpClient *http.Client, tokens TokenSource, logger logging.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		logger:  logger.With("module", "api"),
	}
}

// do sends one request and returns the raw JSON body. A 204 or empty body
// yields nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	tooLarge := len(raw) > maxBodySize
	if tooLarge {
		raw = raw[:maxBodySize]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug(ctx, "api call failed", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: friendlyMessage(resp.StatusCode), Body: string(raw)}
	}

	if tooLarge {
		return nil, fmt.Errorf("%s %s: %w (over %d bytes)", method, path, ErrResponseTooLarge, maxBodySize)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err != nil || !strings.HasSuffix(mt, "json") {
		return nil, &ParseError{Endpoint: method + " " + path, Reason: "response is not JSON"}
	}
	return raw, nil
}

type validator interface {
	validate() error
}

// decode unmarshals raw into out and validates it. When field is set and
// present in the object, only that member is decoded.
func decode(endpoint string, raw []byte, field string, out validator) error {
	if raw == nil {
		return &ParseError{Endpoint: endpoint, Reason: "empty response"}
	}

	src := raw
	if field != "" {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(raw, &env); err != nil {
			return &ParseError{Endpoint: endpoint, Reason: err.Error()}
		}
		if inner, ok := env[field]; ok && string(inner) != "null" {
			src = inner
		}
	}

	if err := json.Unmarshal(src, out); err != nil {
		return &ParseError{Endpoint: endpoint, Reason: err.Error()}
	}
	if err := out.validate(); err != nil {
		return &ParseError{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}

func (c *HTTPClient) GetLandingPageBySlug(ctx context.Context, slug string) (*LandingPage, error) {
	path := "/landing-pages/slug/" + url.PathEscape(slug)
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var p LandingPage
	if err := decode("GET "+path, raw, "landingPage", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetCurrentCreator(ctx context.Context) (*Creator, error) {
	return c.getCreator(ctx, "/creators/me")
}

func (c *HTTPClient) GetCreator(ctx context.Context, creatorID string) (*Creator, error) {
	return c.getCreator(ctx, "/creators/"+url.PathEscape(creatorID))
}

func (c *HTTPClient) getCreator(ctx context.Context, path string) (*Creator, error) {
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var cr Creator
	if err := decode("GET "+path, raw, "creator", &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *HTTPClient) CreatePaymentLink(ctx context.Context, in PaymentLinkInput) (*PaymentLink, error) {
	return c.paymentLinkCall(ctx, http.MethodPost, "/payment-links", in)
}

func (c *HTTPClient) UpdatePaymentLink(ctx context.Context, linkID string, in PaymentLinkInput) (*PaymentLink, error) {
	return c.paymentLinkCall(ctx, http.MethodPut, "/payment-links/"+url.PathEscape(linkID), in)
}

func (c *HTTPClient) PublishPaymentLink(ctx context.Context, linkID string, published bool) (*PaymentLink, error) {
	body := map[string]bool{"isPublished": published}
	return c.paymentLinkCall(ctx, http.MethodPost, "/payment-links/"+url.PathEscape(linkID)+"/publish", body)
}

func (c *HTTPClient) GetPaymentLinkDetails(ctx context.Context, slug string) (*PaymentLink, error) {
	return c.paymentLinkCall(ctx, http.MethodGet, "/payments/link/"+url.PathEscape(slug), nil)
}

func (c *HTTPClient) paymentLinkCall(ctx context.Context, method, path string, body any) (*PaymentLink, error) {
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var l PaymentLink
	if err := decode(method+" "+path, raw, "paymentLink", &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) GetPaymentLinks(ctx context.Context, creatorID string, f PaymentLinkFilter) (*PaymentLinkList, error) {
	q := url.Values{}
	if f.Published != nil {
		q.Set("published", strconv.FormatBool(*f.Published))
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	path := "/creators/" + url.PathEscape(creatorID) + "/payment-links"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env struct {
		PaymentLinks []PaymentLink `json:"paymentLinks"`
		Total        *int          `json:"total"`
	}
	list := &PaymentLinkList{}
	endpoint := "GET " + path
	if raw == nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "empty response"}
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: err.Error()}
	}
	list.Links = env.PaymentLinks
	list.Total = len(env.PaymentLinks)
	if env.Total != nil {
		list.Total = *env.Total
	}
	if err := list.validate(); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: err.Error()}
	}
	return list, nil
}

func (c *HTTPClient) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error) {
	const path = "/payments/initiate"
	raw, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	var p PaymentInitiation
	if err := decode("POST "+path, raw, "", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateCryptoPayment(ctx context.Context, req CryptoPaymentRequest) (*CryptoPayment, error) {
	const path = "/crypto/create-payment"
	raw, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}
	var p CryptoPayment
	if err := decode("POST "+path, raw, "", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetCryptoPaymentStatus(ctx context.Context, paymentID string) (*CryptoPaymentStatus, error) {
	path := "/crypto/payment-status/" + url.PathEscape(paymentID)
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var s CryptoPaymentStatus
	if err := decode("GET "+path, raw, "", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
