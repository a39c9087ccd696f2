package nats

// requestFrame is the body of a message on <prefix>.request. A single
// Payload runs as a request; Payloads run as one sequence.
type requestFrame struct {
	Payload  string   `json:"payload,omitempty"`
	Payloads []string `json:"payloads,omitempty"`
}

// responseFrame is the reply to a requestFrame.
type responseFrame struct {
	Data  string   `json:"data,omitempty"`
	Items []string `json:"items,omitempty"`
	Err   string   `json:"err,omitempty"`
}

func subjectRequest(prefix string) string {
	if prefix == "" {
		prefix = "soundpad"
	}
	return prefix + ".request"
}
