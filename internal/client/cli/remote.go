package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/jara/internal/client/api"
)

const remoteUsage = `Usage: api <command>
  creator [id]               show a creator (default: the signed-in one)
  page <slug>                show a landing page
  links <creatorId> [published|draft] [type]
  link <slug>                show a payment link
  new-link                   create a payment link
  update <linkId>            edit a payment link
  publish <linkId> [off]     publish or unpublish a link
  pay <linkId>               start a card payment
  crypto <linkId> <currency> start a crypto payment
  crypto-status <paymentId>  check a crypto payment`

var errUsage = errors.New("invalid arguments, see 'api'")

// Remote dispatches the api subcommands to the collaborator API client.
func (a *App) Remote(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, remoteUsage)
		return nil
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "creator":
		var (
			c   *api.Creator
			err error
		)
		if len(args) > 0 {
			c, err = a.api.GetCreator(ctx, args[0])
		} else {
			c, err = a.api.GetCurrentCreator(ctx)
		}
		if err != nil {
			return err
		}
		a.printCreator(c)

	case "page":
		if len(args) != 1 {
			return errUsage
		}
		p, err := a.api.GetLandingPageBySlug(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (%s) published=%t\n%s\n", p.Title, p.Slug, p.IsPublished, p.Description)

	case "links":
		if len(args) == 0 {
			return errUsage
		}
		f, err := parseLinkFilter(args[1:])
		if err != nil {
			return err
		}
		list, err := a.api.GetPaymentLinks(ctx, args[0], f)
		if err != nil {
			return err
		}
		a.printLinks(list.Links)
		fmt.Fprintf(a.out, "Total: %d\n", list.Total)

	case "link":
		if len(args) != 1 {
			return errUsage
		}
		l, err := a.api.GetPaymentLinkDetails(ctx, args[0])
		if err != nil {
			return err
		}
		a.printLinks([]api.PaymentLink{*l})

	case "new-link":
		in, err := a.readLinkInput(true)
		if err != nil {
			return err
		}
		l, err := a.api.CreatePaymentLink(ctx, in)
		if err != nil {
			return err
		}
		a.printLinks([]api.PaymentLink{*l})

	case "update":
		if len(args) != 1 {
			return errUsage
		}
		in, err := a.readLinkInput(false)
		if err != nil {
			return err
		}
		l, err := a.api.UpdatePaymentLink(ctx, args[0], in)
		if err != nil {
			return err
		}
		a.printLinks([]api.PaymentLink{*l})

	case "publish":
		if len(args) == 0 || len(args) > 2 {
			return errUsage
		}
		publish := !(len(args) == 2 && args[1] == "off")
		l, err := a.api.PublishPaymentLink(ctx, args[0], publish)
		if err != nil {
			return err
		}
		a.printLinks([]api.PaymentLink{*l})

	case "pay":
		if len(args) != 1 {
			return errUsage
		}
		email, name, err := a.readCustomer()
		if err != nil {
			return err
		}
		res, err := a.api.InitiatePayment(ctx, api.PaymentRequest{PaymentLinkID: args[0], CustomerEmail: email, CustomerName: name})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Payment URL:", res.PaymentURL)
		fmt.Fprintln(a.out, "Reference:  ", res.Reference)

	case "crypto":
		if len(args) != 2 {
			return errUsage
		}
		email, name, err := a.readCustomer()
		if err != nil {
			return err
		}
		res, err := a.api.CreateCryptoPayment(ctx, api.CryptoPaymentRequest{
			PaymentLinkID: args[0],
			CustomerEmail: email,
			CustomerName:  name,
			PayCurrency:   args[1],
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Payment %s: send %v %s to %s\n", res.PaymentID, res.PayAmount, res.PayCurrency, res.PayAddress)
		if res.PaymentURL != "" {
			fmt.Fprintln(a.out, "Or pay at", res.PaymentURL)
		}

	case "crypto-status":
		if len(args) != 1 {
			return errUsage
		}
		st, err := a.api.GetCryptoPaymentStatus(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Status:", st.Status)

	default:
		fmt.Fprintln(a.out, remoteUsage)
		return errUsage
	}
	return nil
}

func parseLinkFilter(args []string) (api.PaymentLinkFilter, error) {
	var f api.PaymentLinkFilter
	for _, arg := range args {
		switch arg {
		case "published":
			v := true
			f.Published = &v
		case "draft":
			v := false
			f.Published = &v
		default:
			t := api.PaymentLinkType(arg)
			if !t.Valid() {
				return f, fmt.Errorf("unknown link type %q", arg)
			}
			f.Type = t
		}
	}
	return f, nil
}

// readLinkInput prompts for payment link fields. Empty answers leave a
// field unset; with required, type, title and price must be given.
func (a *App) readLinkInput(required bool) (api.PaymentLinkInput, error) {
	var in api.PaymentLinkInput

	typ, err := GetSimpleText(a.reader, "Type (tip, membership, pay_per_view, rental, ticket, product)", a.out)
	if err != nil {
		return in, err
	}
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return in, err
	}
	price, err := GetSimpleText(a.reader, "Price", a.out)
	if err != nil {
		return in, err
	}
	currency, err := GetSimpleText(a.reader, "Currency", a.out)
	if err != nil {
		return in, err
	}

	if typ != "" {
		t := api.PaymentLinkType(typ)
		if !t.Valid() {
			return in, fmt.Errorf("unknown link type %q", typ)
		}
		in.Type = &t
	}
	if title != "" {
		in.Title = &title
	}
	if price != "" {
		v, err := strconv.ParseFloat(price, 64)
		if err != nil || v < 0 {
			return in, fmt.Errorf("invalid price %q", price)
		}
		in.Price = &v
	}
	if currency != "" {
		c := strings.ToUpper(currency)
		in.Currency = &c
	}

	if required && (in.Type == nil || in.Title == nil || in.Price == nil) {
		return in, errors.New("type, title and price are required")
	}
	return in, nil
}

func (a *App) readCustomer() (string, string, error) {
	email, err := GetSimpleText(a.reader, "Customer email", a.out)
	if err != nil {
		return "", "", err
	}
	name, err := GetSimpleText(a.reader, "Customer name", a.out)
	if err != nil {
		return "", "", err
	}
	if email == "" {
		return "", "", errEmptyEmail
	}
	return email, name, nil
}

func (a *App) printCreator(c *api.Creator) {
	fmt.Fprintln(a.out, "ID:  ", c.ID)
	if c.Name != "" {
		fmt.Fprintln(a.out, "Name:", c.Name)
	}
	if c.Bio != "" {
		fmt.Fprintln(a.out, "Bio: ", c.Bio)
	}
	if c.JaraPageSlug != "" {
		fmt.Fprintln(a.out, "Page:", c.JaraPageSlug)
	}
	for _, l := range c.SocialLinks {
		fmt.Fprintln(a.out, "Link:", l)
	}
}

func (a *App) printLinks(links []api.PaymentLink) {
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		published := "no"
		if l.IsPublished {
			published = "yes"
		}
		rows = append(rows, []string{
			l.ID,
			l.Slug,
			string(l.Type),
			l.Title,
			strconv.FormatFloat(l.Price, 'f', 2, 64) + " " + l.Currency,
			published,
		})
	}
	fmt.Fprintln(a.out, renderTable(
		[]string{"ID", "Slug", "Type", "Title", "Price", "Published"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
}
