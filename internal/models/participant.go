package models

import (
	"strings"
	"time"
)

// Profile roles. Only dealer-type roles appear in show detail aggregation.
const (
	RoleAttendee      = "attendee"
	RoleDealer        = "dealer"
	RoleMVPDealer     = "mvp_dealer"
	RoleShowOrganizer = "show_organizer"
)

// Participation states. Detail aggregation only includes registered and
// confirmed participants.
const (
	ParticipationRegistered = "registered"
	ParticipationConfirmed  = "confirmed"
	ParticipationCancelled  = "cancelled"
)

// UserProfile holds the public-facing profile for a user.
type UserProfile struct {
	UserID       int64   `json:"user_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	DisplayName  string  `json:"display_name,omitempty"`
	Role         string  `json:"role"`
	FacebookURL  *string `json:"facebook_url,omitempty"`
	InstagramURL *string `json:"instagram_url,omitempty"`
	WebsiteURL   *string `json:"website_url,omitempty"`
}

// ResolvedName prefers an explicit non-blank display name, otherwise the
// trimmed concatenation of first and last name.
func (p *UserProfile) ResolvedName() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// ShowParticipant is a dealer's registration for a show with booth metadata.
type ShowParticipant struct {
	UserProfile
	ShowID         int64     `json:"show_id"`
	Status         string    `json:"status"`
	BoothLocation  string    `json:"booth_location,omitempty"`
	CardTypes      []string  `json:"card_types,omitempty"`
	Specialty      string    `json:"specialty,omitempty"`
	PriceRange     string    `json:"price_range,omitempty"`
	NotableItems   string    `json:"notable_items,omitempty"`
	PaymentMethods []string  `json:"payment_methods,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// ShowDetails is the denormalized document returned by detail lookup.
type ShowDetails struct {
	Show          Show              `json:"show"`
	Organizer     *UserProfile      `json:"organizer,omitempty"`
	Dealers       []ShowParticipant `json:"participating_dealers"`
	FavoriteCount int               `json:"favorite_count"`
}
