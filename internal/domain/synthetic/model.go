package synthetic

import "time"

const (
	NumberRange = 1000
	SuffixRange = 100
)

type Data struct {
	Service      string    `json:"service"`
	RandomNumber int       `json:"randomNumber"`
	RandomString string    `json:"randomString"`
	Timestamp    time.Time `json:"timestamp"`
	DataType     string    `json:"dataType"`
	Port         string    `json:"port"`
	UUID         string    `json:"uuid,omitempty"`
}
