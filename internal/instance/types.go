package instance

// ExitRequest asks the running handler to stop.
type ExitRequest struct {
	Reason string `json:"reason"`
	PID    int    `json:"pid"`
}

// ExitResponse acknowledges an ExitRequest.
type ExitResponse struct {
	Exiting bool `json:"exiting"`
	PID     int  `json:"pid"`
}
