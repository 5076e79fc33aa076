package generator

import (
	"fmt"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

// Geography is a country together with the cities sessions may be placed in
type Geography struct {
	Country string
	Cities  []string
}

var geographyWeights = []Choice[Geography]{
	{Geography{"US", []string{"New York", "Los Angeles", "Chicago", "Houston", "Seattle", "Austin"}}, 35},
	{Geography{"IN", []string{"Mumbai", "Bangalore", "Delhi", "Hyderabad"}}, 12},
	{Geography{"GB", []string{"London", "Manchester", "Edinburgh", "Bristol"}}, 10},
	{Geography{"DE", []string{"Berlin", "Munich", "Hamburg", "Frankfurt"}}, 9},
	{Geography{"FR", []string{"Paris", "Lyon", "Marseille"}}, 7},
	{Geography{"BR", []string{"Sao Paulo", "Rio de Janeiro", "Brasilia"}}, 6},
	{Geography{"JP", []string{"Tokyo", "Osaka", "Yokohama"}}, 6},
	{Geography{"CA", []string{"Toronto", "Vancouver", "Montreal"}}, 5},
	{Geography{"AU", []string{"Sydney", "Melbourne", "Brisbane"}}, 4},
	{Geography{"NL", []string{"Amsterdam", "Rotterdam", "Utrecht"}}, 3},
	{Geography{"ET", []string{"Addis Ababa", "Bahir Dar"}}, 2},
	{Geography{"SG", []string{"Singapore"}}, 1},
}

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

var deviceWeights = []Choice[string]{
	{DeviceDesktop, 55},
	{DeviceMobile, 38},
	{DeviceTablet, 7},
}

var browserWeights = []Choice[string]{
	{"Chrome", 63},
	{"Safari", 20},
	{"Edge", 7},
	{"Firefox", 6},
	{"Samsung Internet", 3},
	{"Opera", 1},
}

var osWeights = map[string][]Choice[string]{
	DeviceDesktop: {{"Windows", 70}, {"macOS", 25}, {"Linux", 5}},
	DeviceMobile:  {{"iOS", 55}, {"Android", 45}},
	DeviceTablet:  {{"iOS", 60}, {"Android", 40}},
}

var eventTypeWeights = []Choice[domain.EventType]{
	{domain.EventPageView, 45},
	{domain.EventClick, 25},
	{domain.EventScroll, 10},
	{domain.EventFormSubmit, 6},
	{domain.EventSearch, 6},
	{domain.EventVideoPlay, 5},
	{domain.EventDownload, 3},
}

var referrers = []string{
	"https://www.google.com/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
	"https://www.facebook.com/",
	"https://t.co/",
	"https://www.linkedin.com/",
	"https://news.ycombinator.com/",
	"https://newsletter.example.com/",
}

var pages = []string{
	"https://shop.example.com/",
	"https://shop.example.com/products",
	"https://shop.example.com/products/laptops",
	"https://shop.example.com/products/phones",
	"https://shop.example.com/products/accessories",
	"https://shop.example.com/cart",
	"https://shop.example.com/checkout",
	"https://shop.example.com/pricing",
	"https://shop.example.com/blog",
	"https://shop.example.com/blog/release-notes",
	"https://shop.example.com/support",
	"https://shop.example.com/account",
}

var buttonIDs = []string{"cta_signup", "add_to_cart", "checkout", "nav_menu", "share", "subscribe", "play", "filter"}

var formIDs = []string{"signup", "login", "contact", "newsletter", "checkout", "feedback"}

// Tables holds the samplers built once from the fixed weight tables
type Tables struct {
	Geographies      *Weighted[Geography]
	Devices          *Weighted[string]
	Browsers         *Weighted[string]
	EventTypes       *Weighted[domain.EventType]
	OperatingSystems map[string]*Weighted[string]

	cities map[string][]string
}

// DefaultTables builds every sampler the generators use
func DefaultTables() (*Tables, error) {
	t := &Tables{
		OperatingSystems: make(map[string]*Weighted[string], len(osWeights)),
		cities:           make(map[string][]string, len(geographyWeights)),
	}

	var err error
	if t.Geographies, err = NewWeighted(geographyWeights); err != nil {
		return nil, fmt.Errorf("geography table: %w", err)
	}
	if t.Devices, err = NewWeighted(deviceWeights); err != nil {
		return nil, fmt.Errorf("device table: %w", err)
	}
	if t.Browsers, err = NewWeighted(browserWeights); err != nil {
		return nil, fmt.Errorf("browser table: %w", err)
	}
	if t.EventTypes, err = NewWeighted(eventTypeWeights); err != nil {
		return nil, fmt.Errorf("event type table: %w", err)
	}
	for device, choices := range osWeights {
		w, err := NewWeighted(choices)
		if err != nil {
			return nil, fmt.Errorf("os table for %s: %w", device, err)
		}
		t.OperatingSystems[device] = w
	}
	for _, g := range geographyWeights {
		t.cities[g.Item.Country] = g.Item.Cities
	}

	return t, nil
}

// Cities returns the city list of a country, nil if the country is unknown
func (t *Tables) Cities(country string) []string {
	return t.cities[country]
}
