package server

import "github.com/raysh454/phishscan/internal/model"

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"SSRF risk: resolves to private address 10.0.0.5"`
	// State is the last pipeline state reached, set for rejections.
	State model.State `json:"state,omitempty" example:"normalized"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	History bool   `json:"history" example:"true"`
}

// Stream message types sent over /ws/analyze.
const (
	StreamStage  = "stage"
	StreamResult = "result"
	StreamError  = "error"
)

// StreamMessage is one websocket frame. Exactly one of Event, Result and
// Error is set, matching Type.
type StreamMessage struct {
	Type   string                `json:"type" example:"stage"`
	Event  *model.StageEvent     `json:"event,omitempty"`
	Result *model.AnalysisResult `json:"result,omitempty"`
	Error  *ErrorResponse        `json:"error,omitempty"`
	// Status mirrors the HTTP status POST /analyze would have returned.
	Status int `json:"status,omitempty" example:"422"`
}
