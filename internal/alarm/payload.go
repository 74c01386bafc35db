package alarm

import (
	"encoding/json"
	"errors"
)

// Enumerated decode failures. These never escape the package: DecodePayload
// collapses all of them into a nil result, but keeping them distinct makes
// the failure causes inspectable in tests.
var (
	errPayloadEmpty      = errors.New("payload: empty input")
	errPayloadMalformed  = errors.New("payload: malformed JSON")
	errPayloadNoMessage  = errors.New("payload: missing message field")
	errPayloadNotText    = errors.New("payload: message is not a string")
	errPayloadEmptyInner = errors.New("payload: empty message")
)

// EncodePayload serializes p into the opaque string carried by the platform
// alarm record. For every non-empty message,
// DecodePayload(EncodePayload(p)) returns a payload equal to p.
func EncodePayload(p Payload) string {
	data, _ := json.Marshal(p)
	return string(data)
}

// DecodePayload parses the opaque payload string. It fails soft: any
// malformed, empty, or wrong-shape input yields nil rather than an error,
// which downstream triggers the dismissal gate's lenient fallback.
func DecodePayload(s string) *Payload {
	p, err := parsePayload(s)
	if err != nil {
		return nil
	}
	return &p
}

func parsePayload(s string) (Payload, error) {
	if s == "" {
		return Payload{}, errPayloadEmpty
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return Payload{}, errPayloadMalformed
	}
	field, ok := raw["message"]
	if !ok {
		return Payload{}, errPayloadNoMessage
	}
	var msg string
	if err := json.Unmarshal(field, &msg); err != nil {
		return Payload{}, errPayloadNotText
	}
	if msg == "" {
		return Payload{}, errPayloadEmptyInner
	}
	return Payload{Message: msg}, nil
}
