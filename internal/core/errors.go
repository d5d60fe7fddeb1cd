package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential is returned by an LLMClient that has no API key configured
	ErrMissingCredential = errors.New("no API credential configured")
	// ErrRateLimited is returned when the remote service asks us to slow down
	ErrRateLimited = errors.New("rate limited by remote service")
	// ErrMalformedResponse is returned when the remote answer cannot be interpreted
	ErrMalformedResponse = errors.New("malformed response from remote service")
	// ErrEmptyInput is returned when there is nothing to send to the model
	ErrEmptyInput = errors.New("input text is empty")
	// ErrInvalidCampaign is returned when a draft fails validation
	ErrInvalidCampaign = errors.New("invalid campaign")
	// ErrCampaignNotFound is returned for an unknown campaign id
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrLedger wraps every failure reported by the ledger
	ErrLedger = errors.New("ledger call failed")
)

// StatusError is a non-success HTTP status returned by a remote service
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote service returned status %d: %s", e.StatusCode, e.Body)
}

// Is makes a 429 status match ErrRateLimited
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// RejectedError is returned when moderation classified a draft as inappropriate
type RejectedError struct {
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return "content rejected by moderation"
	}
	return "content rejected by moderation: " + e.Detail
}
