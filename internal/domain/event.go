package domain

import "time"

// EventColumns is the declared column order used by every sink's bulk transfer
var EventColumns = []string{
	"time",
	"user_id",
	"session_id",
	"event_type",
	"event_data",
	"page_url",
	"referrer",
	"device_type",
	"browser",
	"os",
	"country",
	"city",
	"ip_address",
}

// Event represents a single synthetic analytics event
type Event struct {
	Time       time.Time `ch:"time" json:"time"`
	UserID     string    `ch:"user_id" json:"user_id"`
	SessionID  string    `ch:"session_id" json:"session_id"`
	EventType  EventType `ch:"event_type" json:"event_type"`
	Payload    Payload   `ch:"-" json:"event_data"`
	PageURL    string    `ch:"page_url" json:"page_url"`
	Referrer   string    `ch:"referrer" json:"referrer,omitempty"`
	DeviceType string    `ch:"device_type" json:"device_type"`
	Browser    string    `ch:"browser" json:"browser"`
	OS         string    `ch:"os" json:"os"`
	Country    string    `ch:"country" json:"country"`
	City       string    `ch:"city" json:"city"`
	IPAddress  string    `ch:"ip_address" json:"ip_address"`
}

// HasReferrer reports whether the event came from a referring page
func (e *Event) HasReferrer() bool {
	return e.Referrer != ""
}

// User is a member of the synthetic population
type User struct {
	ID                 string
	Country            string
	ActivityMultiplier float64
}

// Session is a browsing session owned by a user. Geography is copied from the user at creation.
type Session struct {
	ID           string
	UserID       string
	Start        time.Time
	DeviceType   string
	Browser      string
	Country      string
	City         string
	IPAddress    string
	EventsInHint int
}
