package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type TicketType string

const (
	TicketTypeStandard  TicketType = "STANDARD"
	TicketTypeVIP       TicketType = "VIP"
	TicketTypePremium   TicketType = "PREMIUM"
	TicketTypeEarlyBird TicketType = "EARLY_BIRD"
)

var ticketTypes = []TicketType{
	TicketTypeStandard,
	TicketTypeVIP,
	TicketTypePremium,
	TicketTypeEarlyBird,
}

// ParseTicketType accepts the known ticket type names, ignoring case.
func ParseTicketType(s string) (TicketType, error) {
	candidate := TicketType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range ticketTypes {
		if t == candidate {
			return t, nil
		}
	}
	return "", ErrInvalidTicketType
}

// Valid reports whether t is one of the canonical ticket type names.
func (t TicketType) Valid() bool {
	for _, known := range ticketTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t *TicketType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidTicketType
	}
	parsed, err := ParseTicketType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Ticket is an admission credential. Once Used is set it never goes back.
type Ticket struct {
	ID          string
	EventID     string
	OrderID     string
	UserID      string
	Type        TicketType
	Price       float64
	Number      string
	Used        bool
	PurchasedAt time.Time
	UsedAt      *time.Time
}
