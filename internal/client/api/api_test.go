package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, query, auth, body string
}

// newServer answers every request with status and body, recording it.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*rec = recorded{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization"), string(b)}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newClient(srv *httptest.Server, token string) *HTTPClient {
	return NewHTTPClient(srv.URL+"/api/", srv.Client(), TokenFunc(func() string { return token }), logging.Discard())
}

func TestAuth_ResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantToken string
		wantUser  AuthUser
	}{
		{
			name:      "flat",
			body:      `{"token":"t1","user":{"id":"u1","email":"a@x.io","name":"A"}}`,
			wantToken: "t1",
			wantUser:  AuthUser{ID: "u1", Email: "a@x.io", Extra: map[string]any{"name": "A"}},
		},
		{
			name:      "access token and profile",
			body:      `{"accessToken":"t2","profile":{"id":7,"email":"b@x.io"}}`,
			wantToken: "t2",
			wantUser:  AuthUser{ID: "7", Email: "b@x.io", Extra: map[string]any{}},
		},
		{
			name:      "nested data",
			body:      `{"data":{"token":"t3","user":{"id":"u3"}},"email":"c@x.io"}`,
			wantToken: "t3",
			wantUser:  AuthUser{ID: "u3", Email: "c@x.io", Extra: map[string]any{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newServer(t, http.StatusOK, tt.body)
			res, err := newClient(srv, "").Login(context.Background(), "a@x.io", "pw")
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, res.Token)
			assert.Equal(t, tt.wantUser, res.User)

			assert.Equal(t, http.MethodPost, rec.method)
			assert.Equal(t, "/api/auth/login", rec.path)
			assert.Empty(t, rec.auth)
			assert.JSONEq(t, `{"email":"a@x.io","password":"pw"}`, rec.body)
		})
	}
}

func TestAuth_ClaimsFillMissingUser(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-9",
		"email": "jwt@x.io",
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]any{"token": token})
	srv, rec := newServer(t, http.StatusCreated, string(body))

	res, err := newClient(srv, "").Register(context.Background(), "jwt@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/register", rec.path)
	assert.Equal(t, "user-9", res.User.ID)
	assert.Equal(t, "jwt@x.io", res.User.Email)
}

func TestAuth_MissingToken(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"user":{"email":"a@x.io"}}`)

	_, err := newClient(srv, "").Login(context.Background(), "a@x.io", "pw")
	require.ErrorIs(t, err, ErrParse)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "POST /auth/login", pe.Endpoint)
}

func TestAPIError_FriendlyMessages(t *testing.T) {
	tests := []struct {
		status int
		msg    string
		is     error
	}{
		{http.StatusUnauthorized, "You are not authorized. Please sign in.", common.ErrUnauthorized},
		{http.StatusNotFound, "Requested resource was not found", common.ErrNotFound},
		{http.StatusInternalServerError, "Something went wrong on the server", nil},
		{http.StatusTeapot, "I'm a teapot", nil},
	}
	for _, tt := range tests {
		srv, _ := newServer(t, tt.status, `{"message":"raw backend detail"}`)
		_, err := newClient(srv, "tok").GetCurrentCreator(context.Background())

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.status, apiErr.Status)
		assert.Equal(t, tt.msg, apiErr.Error())
		assert.Equal(t, `{"message":"raw backend detail"}`, apiErr.Body)
		if tt.is != nil {
			assert.ErrorIs(t, err, tt.is)
		}
	}
}

func TestCreators(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"success":true,"creator":{"id":"c1","name":"Ada","socialLinks":["x"]}}`)
	c := newClient(srv, "tok")

	me, err := c.GetCurrentCreator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Creator{ID: "c1", Name: "Ada", SocialLinks: []string{"x"}}, me)
	assert.Equal(t, "Bearer tok", rec.auth)
	assert.Equal(t, "/api/creators/me", rec.path)

	bare, rec2 := newServer(t, http.StatusOK, `{"id":"c2","bio":"hi"}`)
	cr, err := newClient(bare, "tok").GetCreator(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, "c2", cr.ID)
	assert.Equal(t, "/api/creators/c2", rec2.path)

	bad, _ := newServer(t, http.StatusOK, `{"creator":{"name":"no id"}}`)
	_, err = newClient(bad, "").GetCreator(context.Background(), "x")
	require.ErrorIs(t, err, ErrParse)
}

func TestLandingPage(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"success":true,"landingPage":{"id":"l1","slug":"my page","title":"T","isPublished":true}}`)

	p, err := newClient(srv, "").GetLandingPageBySlug(context.Background(), "my page")
	require.NoError(t, err)
	assert.Equal(t, &LandingPage{ID: "l1", Slug: "my page", Title: "T", IsPublished: true}, p)
	assert.Equal(t, "/api/landing-pages/slug/my page", rec.path)
}

func TestPaymentLinks_CreateUpdatePublish(t *testing.T) {
	link := `{"success":true,"paymentLink":{"id":"pl1","slug":"tip-me","type":"tip","title":"Tip","price":5,"currency":"USD","image_url":"https://img","isPublished":false}}`
	srv, rec := newServer(t, http.StatusOK, link)
	c := newClient(srv, "tok")
	ctx := context.Background()

	title := "Tip"
	typ := LinkTip
	price := 5.0
	got, err := c.CreatePaymentLink(ctx, PaymentLinkInput{Type: &typ, Title: &title, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "https://img", got.ImageURL)
	assert.Equal(t, LinkTip, got.Type)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/payment-links", rec.path)
	assert.JSONEq(t, `{"type":"tip","title":"Tip","price":5}`, rec.body)

	_, err = c.UpdatePaymentLink(ctx, "pl1", PaymentLinkInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/payment-links/pl1", rec.path)

	_, err = c.PublishPaymentLink(ctx, "pl1", true)
	require.NoError(t, err)
	assert.Equal(t, "/api/payment-links/pl1/publish", rec.path)
	assert.JSONEq(t, `{"isPublished":true}`, rec.body)

	_, err = c.GetPaymentLinkDetails(ctx, "tip-me")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/payments/link/tip-me", rec.path)
}

func TestPaymentLinks_Validation(t *testing.T) {
	for _, body := range []string{
		`{"paymentLink":{"id":"x","type":"bribe","price":1}}`,
		`{"paymentLink":{"id":"x","type":"tip","price":-1}}`,
		`{"paymentLink":{"type":"tip"}}`,
		`[]`,
	} {
		srv, _ := newServer(t, http.StatusOK, body)
		_, err := newClient(srv, "").GetPaymentLinkDetails(context.Background(), "s")
		require.ErrorIs(t, err, ErrParse, body)
	}
}

func TestGetPaymentLinks(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"success":true,"paymentLinks":[
		{"id":"a","slug":"a","type":"rental","title":"A","price":3,"currency":"USD","isPublished":true},
		{"id":"b","slug":"b","type":"rental","title":"B","price":4,"currency":"USD","imageUrl":"https://b","isPublished":true}
	],"total":10}`)

	published := true
	list, err := newClient(srv, "").GetPaymentLinks(context.Background(), "c1", PaymentLinkFilter{Published: &published, Type: LinkRental})
	require.NoError(t, err)
	assert.Equal(t, "/api/creators/c1/payment-links", rec.path)
	assert.Equal(t, "published=true&type=rental", rec.query)
	require.Len(t, list.Links, 2)
	assert.Equal(t, 10, list.Total)
	assert.Equal(t, "https://b", list.Links[1].ImageURL)

	noTotal, _ := newServer(t, http.StatusOK, `{"paymentLinks":[]}`)
	list, err = newClient(noTotal, "").GetPaymentLinks(context.Background(), "c1", PaymentLinkFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestInitiatePayment(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"success":true,"payment_url":"https://pay","reference":"r1","transaction_id":"tx"}`)

	res, err := newClient(srv, "").InitiatePayment(context.Background(), PaymentRequest{
		PaymentLinkID: "pl1", CustomerEmail: "a@x.io", CustomerName: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay", res.PaymentURL)
	assert.Equal(t, "tx", res.TransactionID)
	assert.JSONEq(t, `{"paymentLinkId":"pl1","customerEmail":"a@x.io","customerName":"A"}`, rec.body)

	empty, _ := newServer(t, http.StatusOK, `{"success":false}`)
	_, err = newClient(empty, "").InitiatePayment(context.Background(), PaymentRequest{})
	require.ErrorIs(t, err, ErrParse)
}

func TestCryptoPayments(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"success":true,"payment_url":"u","payment_id":"p1","pay_address":"addr","pay_amount":0.01,"pay_currency":"btc","order_id":"o","reference":"r"}`)
	c := newClient(srv, "")

	p, err := c.CreateCryptoPayment(context.Background(), CryptoPaymentRequest{PaymentLinkID: "pl", PayCurrency: "btc"})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.PaymentID)
	assert.InDelta(t, 0.01, p.PayAmount, 1e-9)
	assert.Equal(t, "/api/crypto/create-payment", rec.path)

	st, rec2 := newServer(t, http.StatusOK, `{"success":true,"status":"confirmed","payment":{"id":"p1"}}`)
	s, err := newClient(st, "").GetCryptoPaymentStatus(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", s.Status)
	assert.JSONEq(t, `{"id":"p1"}`, string(s.Payment))
	assert.Equal(t, "/api/crypto/payment-status/p1", rec2.path)

	bad, _ := newServer(t, http.StatusOK, `{"success":true}`)
	_, err = newClient(bad, "").GetCryptoPaymentStatus(context.Background(), "p1")
	require.ErrorIs(t, err, ErrParse)
}

func TestNonJSONAndEmptyBodies(t *testing.T) {
	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html></html>")
	}))
	defer html.Close()
	_, err := newClient(html, "").GetCurrentCreator(context.Background())
	require.ErrorIs(t, err, ErrParse)

	noContent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer noContent.Close()
	_, err = newClient(noContent, "").PublishPaymentLink(context.Background(), "x", false)
	require.ErrorIs(t, err, ErrParse)
}

func TestOversizedBody(t *testing.T) {
	padding := strings.Repeat(" ", maxBodySize)

	big, _ := newServer(t, http.StatusOK, `{"id":"c1"}`+padding)
	_, err := newClient(big, "").GetCreator(context.Background(), "c1")
	require.ErrorIs(t, err, ErrResponseTooLarge)
	assert.NotErrorIs(t, err, ErrParse)

	exact, _ := newServer(t, http.StatusOK, `{"id":"c1"}`+padding[:maxBodySize-len(`{"id":"c1"}`)])
	cr, err := newClient(exact, "").GetCreator(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", cr.ID)

	failed, _ := newServer(t, http.StatusInternalServerError, padding+"x")
	_, err = newClient(failed, "").GetCreator(context.Background(), "c1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Len(t, apiErr.Body, maxBodySize)
}

func TestDefaults(t *testing.T) {
	c := NewHTTPClient("", nil, nil, logging.Discard())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.NotNil(t, c.http)
	assert.Empty(t, c.tokens.Token())
}
