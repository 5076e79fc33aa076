package domain

import "encoding/json"

// EventType is the categorical kind of an event
type EventType string

const (
	EventPageView   EventType = "page_view"
	EventClick      EventType = "click"
	EventFormSubmit EventType = "form_submit"
	EventVideoPlay  EventType = "video_play"
	EventDownload   EventType = "download"
	EventSearch     EventType = "search"
	EventScroll     EventType = "scroll"
)

// Payload is the type-dependent document attached to an event.
// The set of implementations is closed to this package.
type Payload interface {
	payload()
}

// EmptyPayload carries no fields. Page views and unknown types use it.
type EmptyPayload struct{}

// ClickPayload is attached to click events
type ClickPayload struct {
	ButtonID string  `json:"button_id"`
	Value    float64 `json:"value"`
}

// FormPayload is attached to form_submit events
type FormPayload struct {
	FormID  string `json:"form_id"`
	Fields  int    `json:"fields"`
	Success bool   `json:"success"`
}

// VideoPayload is attached to video_play events
type VideoPayload struct {
	VideoID         string `json:"video_id"`
	DurationSeconds int    `json:"duration_seconds"`
	WatchedSeconds  int    `json:"watched_seconds"`
}

// DownloadPayload is attached to download events
type DownloadPayload struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
}

// SearchPayload is attached to search events
type SearchPayload struct {
	Query   string `json:"query"`
	Results int    `json:"results"`
}

func (EmptyPayload) payload()    {}
func (ClickPayload) payload()    {}
func (FormPayload) payload()     {}
func (VideoPayload) payload()    {}
func (DownloadPayload) payload() {}
func (SearchPayload) payload()   {}

// PayloadJSON encodes the payload as a JSON object, "{}" for a nil or empty payload
func PayloadJSON(p Payload) (string, error) {
	if p == nil {
		return "{}", nil
	}
	if _, ok := p.(EmptyPayload); ok {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PayloadFields lists the JSON keys each event type's payload always carries
func PayloadFields(t EventType) []string {
	switch t {
	case EventClick:
		return []string{"button_id", "value"}
	case EventFormSubmit:
		return []string{"form_id", "fields", "success"}
	case EventVideoPlay:
		return []string{"video_id", "duration_seconds", "watched_seconds"}
	case EventDownload:
		return []string{"file_name", "size_bytes"}
	case EventSearch:
		return []string{"query", "results"}
	default:
		return nil
	}
}
