package domain

import (
	"strings"
	"time"
)

// EventDefinition holds the fields of an event that organizers may replace.
type EventDefinition struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	VenueID     string
	OrganizerID string
	Categories  []string
	ImageURL    string
	TotalSeats  int
	BasePrice   float64
}

// Validate checks the definition before it is used to create or redefine an event.
func (d EventDefinition) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEventTitleRequired
	}
	if d.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	if !ValidPrice(d.BasePrice) {
		return ErrInvalidBasePrice
	}
	if !d.StartsAt.IsZero() && !d.EndsAt.IsZero() && d.EndsAt.Before(d.StartsAt) {
		return ErrInvalidEventSchedule
	}
	return nil
}

// Event is a sellable occurrence with a fixed seat pool.
//
// AvailableSeats stays within [0, TotalSeats]; the difference is the number of
// seats held by completed orders.
type Event struct {
	ID             string
	Title          string
	Description    string
	StartsAt       time.Time
	EndsAt         time.Time
	VenueID        string
	OrganizerID    string
	Categories     []string
	ImageURL       string
	TotalSeats     int
	AvailableSeats int
	Published      bool
	BasePrice      float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewEvent builds an unpublished event with every seat available.
func NewEvent(id string, def EventDefinition, now time.Time) Event {
	e := Event{
		ID:        id,
		CreatedAt: now,
	}
	e.apply(def, now)
	e.AvailableSeats = def.TotalSeats
	return e
}

// SoldSeats reports how many seats are currently held by orders.
func (e Event) SoldSeats() int {
	return e.TotalSeats - e.AvailableSeats
}

// Redefine replaces the mutable fields and recomputes availability so that
// seats already sold stay sold.
func (e *Event) Redefine(def EventDefinition, now time.Time) {
	sold := e.SoldSeats()
	e.apply(def, now)
	e.AvailableSeats = max(0, def.TotalSeats-sold)
}

func (e *Event) apply(def EventDefinition, now time.Time) {
	e.Title = strings.TrimSpace(def.Title)
	e.Description = def.Description
	e.StartsAt = def.StartsAt
	e.EndsAt = def.EndsAt
	e.VenueID = def.VenueID
	e.OrganizerID = def.OrganizerID
	e.Categories = append([]string(nil), def.Categories...)
	e.ImageURL = def.ImageURL
	e.TotalSeats = def.TotalSeats
	e.BasePrice = def.BasePrice
	e.UpdatedAt = now
}

// Availability is the seat snapshot of one event.
type Availability struct {
	EventID        string
	TotalSeats     int
	AvailableSeats int
}

// EventSearch narrows an event listing. The first non-empty field wins:
// Title, then Category, then VenueID. An empty search lists upcoming events.
type EventSearch struct {
	Title    string
	Category string
	VenueID  string
}
