// Package search resolves the find/find_all query-parameter grammar shared by
// the item and merchant lookup endpoints. Every caller goes through the same
// validation sequence so the two result modes cannot drift apart.
package search

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/davenolan/littleshop-backend/pkg/errors"
)

const (
	ParamName     = "name"
	ParamMinPrice = "min_price"
	ParamMaxPrice = "max_price"
)

// Mode says which predicate family a validated query resolved to.
type Mode int

const (
	// ModeName matches a case-insensitive name fragment, ordered by name ASC.
	ModeName Mode = iota
	// ModePrice matches an inclusive price range, ordered by unit price ASC.
	ModePrice
)

// Query is a validated search request. Exactly one of the two predicate
// families is populated: Name, or one/both price bounds.
type Query struct {
	Name     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Mode reports the predicate family the query resolved to.
func (q Query) Mode() Mode {
	if q.Name != "" {
		return ModeName
	}
	return ModePrice
}

// ParseItemQuery validates the full grammar: name fragment or price bounds,
// mutually exclusive. The checks run in a fixed order and stop at the first
// failure so find and find_all produce identical errors.
func ParseItemQuery(values url.Values) (Query, error) {
	name, hasName := param(values, ParamName)
	minRaw, hasMin := param(values, ParamMinPrice)
	maxRaw, hasMax := param(values, ParamMaxPrice)

	if !hasName && !hasMin && !hasMax {
		return Query{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one search parameter is required")
	}

	if hasName && (hasMin || hasMax) {
		return Query{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot send both name and price parameters")
	}

	for _, p := range []struct {
		present bool
		field   string
		value   string
	}{
		{hasName, ParamName, name},
		{hasMin, ParamMinPrice, minRaw},
		{hasMax, ParamMaxPrice, maxRaw},
	} {
		if p.present && p.value == "" {
			return Query{}, blankParam(p.field)
		}
	}

	q := Query{Name: name}

	if hasMin {
		bound, err := parseBound(ParamMinPrice, minRaw)
		if err != nil {
			return Query{}, err
		}
		q.MinPrice = bound
	}
	if hasMax {
		bound, err := parseBound(ParamMaxPrice, maxRaw)
		if err != nil {
			return Query{}, err
		}
		q.MaxPrice = bound
	}

	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return Query{}, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot be greater than max price")
	}

	return q, nil
}

// ParseMerchantQuery validates the merchant grammar, which only supports the
// name fragment. Price bounds are rejected outright.
func ParseMerchantQuery(values url.Values) (Query, error) {
	if _, hasMin := param(values, ParamMinPrice); hasMin {
		return Query{}, priceUnsupported(ParamMinPrice)
	}
	if _, hasMax := param(values, ParamMaxPrice); hasMax {
		return Query{}, priceUnsupported(ParamMaxPrice)
	}

	name, hasName := param(values, ParamName)
	if !hasName {
		return Query{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one search parameter is required")
	}
	if name == "" {
		return Query{}, blankParam(ParamName)
	}

	return Query{Name: name}, nil
}

func param(values url.Values, key string) (string, bool) {
	if _, ok := values[key]; !ok {
		return "", false
	}
	return values.Get(key), true
}

func parseBound(field, raw string) (*decimal.Decimal, error) {
	bound, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a number", field)).
			WithDetails(map[string]any{"field": field})
	}
	if bound.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be less than 0", field)).
			WithDetails(map[string]any{"field": field})
	}
	return &bound, nil
}

func blankParam(field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be empty", field)).
		WithDetails(map[string]any{"field": field})
}

func priceUnsupported(field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "price parameters are not supported for merchant search").
		WithDetails(map[string]any{"field": field})
}
