package api

import (
	"encoding/json"
	"fmt"
	"slices"
)

// AuthUser is the account returned by the auth endpoints. Extra keeps any
// other profile fields.
type AuthUser struct {
	ID    string
	Email string
	Extra map[string]any
}

type AuthResponse struct {
	Token string
	User  AuthUser
}

func (r *AuthResponse) validate() error {
	if r.Token == "" {
		return fmt.Errorf("auth token missing from response")
	}
	return nil
}

type Creator struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	SocialLinks  []string `json:"socialLinks,omitempty"`
	JaraPageSlug string   `json:"jaraPageSlug,omitempty"`
}

func (c *Creator) validate() error {
	if c.ID == "" {
		return fmt.Errorf("creator id missing")
	}
	return nil
}

type LandingPage struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsPublished bool   `json:"isPublished"`
}

func (p *LandingPage) validate() error {
	if p.ID == "" || p.Slug == "" {
		return fmt.Errorf("landing page id or slug missing")
	}
	return nil
}

// PaymentLinkType is the kind of purchase a link offers.
type PaymentLinkType string

const (
	LinkTip        PaymentLinkType = "tip"
	LinkMembership PaymentLinkType = "membership"
	LinkPayPerView PaymentLinkType = "pay_per_view"
	LinkRental     PaymentLinkType = "rental"
	LinkTicket     PaymentLinkType = "ticket"
	LinkProduct    PaymentLinkType = "product"
)

var linkTypes = []PaymentLinkType{LinkTip, LinkMembership, LinkPayPerView, LinkRental, LinkTicket, LinkProduct}

func (t PaymentLinkType) Valid() bool {
	return slices.Contains(linkTypes, t)
}

type PaymentLink struct {
	ID                string          `json:"id"`
	Slug              string          `json:"slug"`
	Type              PaymentLinkType `json:"type"`
	Title             string          `json:"title"`
	Description       string          `json:"description,omitempty"`
	Price             float64         `json:"price"`
	Currency          string          `json:"currency"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	IsPublished       bool            `json:"isPublished"`
	TotalRevenue      float64         `json:"totalRevenue,omitempty"`
	TotalTransactions int             `json:"totalTransactions,omitempty"`
	CreatorID         string          `json:"creatorId,omitempty"`
}

// UnmarshalJSON accepts the image under either image_url or imageUrl.
func (l *PaymentLink) UnmarshalJSON(b []byte) error {
	type plain PaymentLink
	var aux struct {
		plain
		SnakeImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*l = PaymentLink(aux.plain)
	if l.ImageURL == "" {
		l.ImageURL = aux.SnakeImageURL
	}
	return nil
}

func (l *PaymentLink) validate() error {
	if l.ID == "" {
		return fmt.Errorf("payment link id missing")
	}
	if !l.Type.Valid() {
		return fmt.Errorf("payment link %s has unknown type %q", l.ID, l.Type)
	}
	if l.Price < 0 {
		return fmt.Errorf("payment link %s has negative price", l.ID)
	}
	return nil
}

// PaymentLinkInput is the body of create and update calls. Nil fields are
// left out.
type PaymentLinkInput struct {
	Type        *PaymentLinkType `json:"type,omitempty"`
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *float64         `json:"price,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
	IsPublished *bool            `json:"isPublished,omitempty"`
}

// PaymentLinkFilter narrows GetPaymentLinks. Zero values do not filter.
type PaymentLinkFilter struct {
	Published *bool
	Type      PaymentLinkType
}

type PaymentLinkList struct {
	Links []PaymentLink
	Total int
}

func (l *PaymentLinkList) validate() error {
	for i := range l.Links {
		if err := l.Links[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

type PaymentRequest struct {
	PaymentLinkID    string `json:"paymentLinkId"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerName     string `json:"customerName"`
	CustomerCurrency string `json:"customerCurrency,omitempty"`
	RedirectURL      string `json:"redirectUrl,omitempty"`
}

type PaymentInitiation struct {
	Success       bool         `json:"success"`
	PaymentURL    string       `json:"payment_url,omitempty"`
	Reference     string       `json:"reference,omitempty"`
	TransactionID string       `json:"transaction_id,omitempty"`
	PaymentLink   *PaymentLink `json:"paymentLink,omitempty"`
}

func (p *PaymentInitiation) validate() error {
	if p.PaymentURL == "" && p.Reference == "" {
		return fmt.Errorf("neither payment_url nor reference present")
	}
	return nil
}

type CryptoPaymentRequest struct {
	PaymentLinkID    string `json:"paymentLinkId"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerName     string `json:"customerName"`
	PayCurrency      string `json:"payCurrency"`
	IPNCallbackURL   string `json:"ipnCallbackUrl,omitempty"`
	SuccessURL       string `json:"successUrl,omitempty"`
	CancelURL        string `json:"cancelUrl,omitempty"`
	OrderID          string `json:"orderId,omitempty"`
	OrderDescription string `json:"orderDescription,omitempty"`
}

type CryptoPayment struct {
	Success     bool    `json:"success"`
	PaymentURL  string  `json:"payment_url"`
	PaymentID   string  `json:"payment_id"`
	PayAddress  string  `json:"pay_address"`
	PayAmount   float64 `json:"pay_amount"`
	PayCurrency string  `json:"pay_currency"`
	OrderID     string  `json:"order_id"`
	Reference   string  `json:"reference"`
}

func (p *CryptoPayment) validate() error {
	if p.PaymentID == "" {
		return fmt.Errorf("payment_id missing")
	}
	if p.PayAddress == "" && p.PaymentURL == "" {
		return fmt.Errorf("payment %s has neither pay_address nor payment_url", p.PaymentID)
	}
	return nil
}

type CryptoPaymentStatus struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Payment json.RawMessage `json:"payment,omitempty"`
}

func (s *CryptoPaymentStatus) validate() error {
	if s.Status == "" {
		return fmt.Errorf("status missing")
	}
	return nil
}
