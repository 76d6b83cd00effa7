package core

import "time"

// Signal is one trading recommendation as delivered by the signals feed.
// All display fields arrive pre-formatted by the server.
type Signal struct {
	ID         string `json:"id"`
	Coin       string `json:"coin"`
	Pair       string `json:"pair"`
	Price      string `json:"price"`
	ImageURL   string `json:"image_url"`
	ScoreValue int    `json:"score_value"`
	ScoreColor string `json:"score_color"`
	StatusText string `json:"status_text"`
	Entry      string `json:"entry"`
	Targets    string `json:"targets"`
	StopLoss   string `json:"stop_loss"`
	TimeAgo    string `json:"time_ago"`
}

// Equal reports whether two signals carry the same values.
func (s Signal) Equal(o Signal) bool {
	return s == o
}

// SignalResponse is the envelope returned by the signals endpoint.
type SignalResponse struct {
	Status string   `json:"status"`
	Data   []Signal `json:"data"`
}

// Notification is a push message delivered for a subscribed topic.
type Notification struct {
	ID         string    `json:"id,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// IsValid checks that both title and body are present
func (n Notification) IsValid() bool {
	return n.Title != "" && n.Body != ""
}
