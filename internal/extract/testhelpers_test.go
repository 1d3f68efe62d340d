package extract

import (
	"fmt"
	"strings"
)

type cardSpec struct {
	title    *string
	price    *string
	image    *string
	noLazy   bool
	extraTag string
}

func str(s string) *string { return &s }

func validCard(title, price, image string) cardSpec {
	return cardSpec{title: str(title), price: str(price), image: str(image)}
}

func (c cardSpec) html() string {
	var b strings.Builder
	b.WriteString(`<li class="product type-product">`)
	if c.image != nil {
		if c.noLazy {
			fmt.Fprintf(&b, `<div class="mf-product-thumbnail"><a href="#"><img src="%s"></a></div>`, *c.image)
		} else {
			fmt.Fprintf(&b, `<div class="mf-product-thumbnail"><a href="#"><img src="data:image/svg+xml," data-lazy-src="%s"></a></div>`, *c.image)
		}
	}
	if c.title != nil {
		fmt.Fprintf(&b, `<h2 class="woo-loop-product__title"><a href="#">%s</a></h2>`, *c.title)
	}
	if c.price != nil {
		fmt.Fprintf(&b, `<span class="price"><span class="woocommerce-Price-amount amount"><bdi>%s</bdi></span></span>`, *c.price)
	}
	b.WriteString(c.extraTag)
	b.WriteString(`</li>`)
	return b.String()
}

func listingPage(cards ...cardSpec) []byte {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><ul class="products columns-4">`)
	for _, c := range cards {
		b.WriteString(c.html())
	}
	b.WriteString(`</ul></body></html>`)
	return []byte(b.String())
}

func rupees(amount string) string {
	return `<span class="woocommerce-Price-currencySymbol">₹</span>` + amount
}
