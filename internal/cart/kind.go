package cart

import "partsstore/internal/domain"

// Kind names a store and decides who may use it.
type Kind struct {
	Name      string
	Available func(domain.Principal) bool
}

// CartKind is the checkout cart; it needs a signed-in user.
var CartKind = Kind{
	Name:      "cart",
	Available: func(p domain.Principal) bool { return p.Authenticated },
}

// QuoteKind collects items for a quote request; anyone may use it.
var QuoteKind = Kind{
	Name:      "quote",
	Available: func(domain.Principal) bool { return true },
}

