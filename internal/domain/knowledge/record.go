// Package knowledge holds the internal knowledge records and the read-only snapshot
// they are served from.
package knowledge

import (
	"maps"
	"slices"
	"strings"
)

// Kind identifies the variant of a knowledge record.
type Kind string

// Record kinds.
const (
	KindCustomer Kind = "customer"
	KindProduct  Kind = "product"
	KindPolicy   Kind = "policy"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindCustomer || k == KindProduct || k == KindPolicy
}

// Record is a single internal knowledge entry. Implemented by Customer, Product and Policy.
type Record interface {
	Kind() Kind
	Key() string
}

// Customer is a structured customer account record.
type Customer struct {
	ID              string `json:"customer_id" yaml:"customer_id"`
	Name            string `json:"name" yaml:"name"`
	AccountType     string `json:"account_type" yaml:"account_type"`
	Balance         string `json:"balance" yaml:"balance"`
	Status          string `json:"status" yaml:"status"`
	LastTransaction string `json:"last_transaction" yaml:"last_transaction"`
	Contact         string `json:"contact" yaml:"contact"`

	// Extra holds values of undeclared fields. They are matched but never rendered.
	Extra map[string]string `json:"-" yaml:"-"`
}

// Kind implements Record.
func (Customer) Kind() Kind { return KindCustomer }

// Key implements Record.
func (c Customer) Key() string { return c.ID }

// FieldValues returns every field value: declared fields in declaration order, then
// extra fields ordered by name.
func (c Customer) FieldValues() []string {
	vals := []string{c.ID, c.Name, c.AccountType, c.Balance, c.Status, c.LastTransaction, c.Contact}
	for _, k := range slices.Sorted(maps.Keys(c.Extra)) {
		vals = append(vals, c.Extra[k])
	}
	return vals
}

// Fields returns the customer as a flat field map keyed by the JSON field names.
func (c Customer) Fields() map[string]string {
	m := map[string]string{
		"customer_id":      c.ID,
		"name":             c.Name,
		"account_type":     c.AccountType,
		"balance":          c.Balance,
		"status":           c.Status,
		"last_transaction": c.LastTransaction,
		"contact":          c.Contact,
	}
	for k, v := range c.Extra {
		if _, declared := m[k]; !declared {
			m[k] = v
		}
	}
	return m
}

// CustomerFromFields builds a Customer from a flat field map. Unknown fields land in
// Extra; fallbackID is used when the map has no customer_id.
func CustomerFromFields(fields map[string]string, fallbackID string) Customer {
	c := Customer{
		ID:              fields["customer_id"],
		Name:            fields["name"],
		AccountType:     fields["account_type"],
		Balance:         fields["balance"],
		Status:          fields["status"],
		LastTransaction: fields["last_transaction"],
		Contact:         fields["contact"],
	}
	for k, v := range fields {
		if isCustomerField(k) {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[k] = v
	}
	if c.ID == "" {
		c.ID = fallbackID
	}
	return c
}

func isCustomerField(name string) bool {
	switch name {
	case "customer_id", "name", "account_type", "balance", "status", "last_transaction", "contact":
		return true
	}
	return false
}

// Product is a free-text product document tagged with a category.
type Product struct {
	ID       string
	Title    string
	Category string
	RawText  string
}

// Kind implements Record.
func (Product) Kind() Kind { return KindProduct }

// Key implements Record.
func (p Product) Key() string { return p.ID }

// Policy is a keyed policy text.
type Policy struct {
	Name string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// Kind implements Record.
func (Policy) Kind() Kind { return KindPolicy }

// Key implements Record.
func (p Policy) Key() string { return p.Name }

// ParseProduct builds a Product from a markdown document.
// The category is the first non-empty line after a "## Category" heading and the title
// is the first non-empty line that is not a heading. Both are lower-cased and trimmed.
func ParseProduct(id, raw string) Product {
	p := Product{ID: id, RawText: raw}

	lines := strings.Split(raw, "\n")
	inCategory := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			inCategory = strings.HasPrefix(strings.ToLower(trimmed), "## category")
			continue
		}
		if p.Title == "" {
			p.Title = strings.ToLower(trimmed)
		}
		if inCategory && p.Category == "" {
			p.Category = strings.ToLower(trimmed)
			inCategory = false
		}
	}
	return p
}
