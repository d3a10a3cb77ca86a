package status

import "time"

type Health struct {
	Service   string    `json:"service"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Port      string    `json:"port"`
	PeerURL   string    `json:"peerUrl"`
}

// CallResult is returned by /call when the peer answered with usable data.
type CallResult struct {
	Service      string         `json:"service"`
	Message      string         `json:"message"`
	Timestamp    time.Time      `json:"timestamp"`
	PeerResponse map[string]any `json:"peerResponse"`
	CalledURL    string         `json:"calledUrl"`
	Port         string         `json:"port"`
}

// CallFailure is returned by /call when the peer could not be queried.
type CallFailure struct {
	Service      string    `json:"service"`
	Error        string    `json:"error"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	AttemptedURL string    `json:"attemptedUrl"`
	Port         string    `json:"port"`
}
