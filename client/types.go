package client

import "github.com/calcbridge/calcctl/env"

// ErrorResponse is the standard server error shape
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StepResult is the response from POST /v0/step.
type StepResult struct {
	Observation env.Observation `json:"observation"`
	Metadata    env.StepInfo    `json:"metadata"`
}

// ResetResult is the response from POST /v0/reset.
type ResetResult struct {
	Observation env.Observation `json:"observation"`
	State       env.State       `json:"state"`
}

// Event is one entry on the websocket event stream.
type Event struct {
	Type        string          `json:"type"`
	Observation env.Observation `json:"observation"`
	Metadata    env.StepInfo    `json:"metadata,omitempty"`
}
