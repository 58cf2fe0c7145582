package health

// Response represents the health check response
type Response struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version,omitempty"`
	Clients  int    `json:"clients"`
	Sessions int    `json:"sessions"`
}

type PingResponse struct {
	Message string `json:"message"`
}

// live counters reported by the health check
type Stats struct {
	Clients  func() int
	Sessions func() int
}
