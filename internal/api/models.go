package api

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Customer represents a single customer record as served by the backend.
//
// The backend owns these records; anything the client holds is a transient
// cached copy that can always be reconciled by refetching. TotalSpent is a
// DecimalField on the backend and may arrive as either a JSON string or a
// JSON number depending on serializer settings; decimal.Decimal accepts both.
type Customer struct {
	ID          int64           `json:"id,omitempty"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Company     string          `json:"company"`
	Source      string          `json:"source"`
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	IsActive    bool            `json:"is_active"`
}

// IsNew reports whether the customer has not yet been assigned an identifier
// by the backend.
func (c Customer) IsNew() bool {
	return c.ID == 0
}

// DisplayName returns a non-empty label for list rendering.
func (c Customer) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return "(unnamed)"
}

// CustomerPage is the paginated list envelope returned by the customers list
// endpoint: a total count, opaque cursor URLs for the adjacent pages (nil when
// no such page exists), and the records for the current page.
type CustomerPage struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []Customer `json:"results"`
}

// HasNext reports whether a next-page cursor is present.
func (p *CustomerPage) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// HasPrevious reports whether a previous-page cursor is present.
func (p *CustomerPage) HasPrevious() bool {
	return p.Previous != nil && *p.Previous != ""
}

// ReplaceOrPrepend merges an authoritative record into a cached customer
// slice: if a customer with the same identifier exists it is replaced in
// place, otherwise the record is prepended. The input slice is not modified.
func ReplaceOrPrepend(customers []Customer, record Customer) []Customer {
	for i, c := range customers {
		if c.ID == record.ID {
			out := make([]Customer, len(customers))
			copy(out, customers)
			out[i] = record
			return out
		}
	}
	out := make([]Customer, 0, len(customers)+1)
	out = append(out, record)
	out = append(out, customers...)
	return out
}

// ChangeAction identifies the kind of mutation carried by a ChangeEvent.
type ChangeAction string

const (
	ChangeCreated ChangeAction = "created"
	ChangeUpdated ChangeAction = "updated"
)

// ChangeEvent is a single customer mutation delivered over the change feed.
type ChangeEvent struct {
	Action   ChangeAction `json:"action"`
	Customer Customer     `json:"customer"`
}
