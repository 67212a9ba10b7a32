// Package checkout formats orders into pre-filled messaging deep links. The
// storefront has no payment gateway: the shopper sends the message and the
// seller confirms availability by hand.
package checkout

import (
	"fmt"
	"strings"

	"github.com/sari-store/storefront/internal/domain/cart"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

const (
	// ConfirmationRequest closes every single-product message
	ConfirmationRequest = "I want to buy this. Please confirm availability."
	// CartHeader opens every cart message
	CartHeader = "Hello! I would like to order:"
	// PriceOnRequest replaces a missing price
	PriceOnRequest = "on request"
	currencySymbol = "₹"
)

// BuildSingleProductMessage formats an enquiry for one product:
//
//	<title>
//	Price: ₹<price>
//
//	Image: <cover image>
//
//	I want to buy this. Please confirm availability.
//
// The image line and its separator are omitted when the product has no image.
func BuildSingleProductMessage(p catalog.Product) string {
	var b strings.Builder
	b.WriteString(p.DisplayTitle())
	b.WriteString("\n")
	b.WriteString(priceLine(p.Price))
	b.WriteString("\n\n")
	if cover := p.CoverImage(); cover != "" {
		b.WriteString("Image: ")
		b.WriteString(cover)
		b.WriteString("\n\n")
	}
	b.WriteString(ConfirmationRequest)
	return b.String()
}

// BuildCartMessage formats the whole cart: one "<title> x <qty> = ₹<amount>"
// line per item, then a "Product:/Link:" block per item.
func BuildCartMessage(c *cart.Cart) string {
	lines := c.Lines()

	var b strings.Builder
	b.WriteString(CartHeader)
	if len(lines) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "\n%s x %d = %s", lineTitle(l), l.Quantity, lineAmount(l))
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "\n\nProduct: %s", lineTitle(l))
		if cover := l.CoverImage(); cover != "" {
			fmt.Fprintf(&b, "\nLink: %s", cover)
		}
	}
	return b.String()
}

func priceLine(price string) string {
	price = strings.TrimSpace(price)
	if price == "" {
		return "Price: " + PriceOnRequest
	}
	return "Price: " + currencySymbol + price
}

func lineTitle(l cart.Line) string {
	if t := strings.TrimSpace(l.Title); t != "" {
		return t
	}
	return catalog.PlaceholderTitle
}

// lineAmount multiplies the snapshot price by the quantity. Prices that do not
// parse are shown as stored.
func lineAmount(l cart.Line) string {
	price := strings.TrimSpace(l.Price)
	if price == "" {
		return PriceOnRequest
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return currencySymbol + price
	}
	return currencySymbol + d.Mul(decimal.NewFromInt(int64(l.Quantity))).String()
}
