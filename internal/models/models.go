// Package models defines the core data structures for SalesPipe.
//
// It includes conversation, booking, and call-event types shared across modules.
package models

import (
	"errors"
	"time"
)

// Validation constants for input validation
const (
	// MaxUtteranceLength defines the maximum allowed length for an inbound utterance
	MaxUtteranceLength = 4096
	// MaxContactFieldLength defines the maximum allowed length for contact fields
	MaxContactFieldLength = 256
)

// Error variables for better error handling and testability
var (
	ErrEmptySessionID    = errors.New("session ID cannot be empty")
	ErrEmptyUtterance    = errors.New("utterance cannot be empty")
	ErrUtteranceTooLong  = errors.New("utterance exceeds maximum length")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExists     = errors.New("session already exists")
	ErrInvalidTimestamp  = errors.New("invalid or zero timestamp")
	ErrEmptyOwner        = errors.New("owner ID cannot be empty")
	ErrInvalidSlotRange  = errors.New("slot end time must be after start time")
	ErrWebhookURLMissing = errors.New("booking webhook URL not configured")
)

// Contact holds prospect identity fields extracted from upstream payloads.
// All fields are best-effort; absent values are empty strings.
type Contact struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// PersonalizationInput carries the fields the knowledge base needs to build a
// per-session script. Industry and PainPoint are free text; normalization to
// catalog keys happens inside the knowledge base.
type PersonalizationInput struct {
	Industry    string `json:"industry"`
	PainPoint   string `json:"pain_point"`
	FirstName   string `json:"first_name"`
	CompanyName string `json:"company_name"`
}

// BookingRequest is the payload delivered to the CRM booking webhook once a
// prospect confirms a demo slot.
type BookingRequest struct {
	SessionID        string            `json:"session_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	PreferredStart   time.Time         `json:"preferred_start"`
	PreferredEnd     time.Time         `json:"preferred_end"`
	DiscoveryAnswers map[string]string `json:"discovery_answers,omitempty"`
}

// CallEventKind enumerates lifecycle events recorded per call/session.
type CallEventKind string

const (
	// CallEventStarted indicates a session/call began.
	CallEventStarted CallEventKind = "started"
	// CallEventUtterance indicates an inbound utterance was processed.
	CallEventUtterance CallEventKind = "utterance"
	// CallEventFallback indicates the completion backend answered instead of the script.
	CallEventFallback CallEventKind = "fallback"
	// CallEventBooked indicates a demo slot was confirmed.
	CallEventBooked CallEventKind = "booked"
	// CallEventEnded indicates the session/call ended.
	CallEventEnded CallEventKind = "ended"
)

// IsValidCallEventKind checks if the given event kind is supported.
func IsValidCallEventKind(k CallEventKind) bool {
	switch k {
	case CallEventStarted, CallEventUtterance, CallEventFallback, CallEventBooked, CallEventEnded:
		return true
	default:
		return false
	}
}

// CallEvent records a single lifecycle event for a session.
type CallEvent struct {
	SessionID string        `json:"session_id"`
	Kind      CallEventKind `json:"kind"`
	Detail    string        `json:"detail,omitempty"`
	Time      time.Time     `json:"time"`
}

// Booking records a confirmed demo appointment.
type Booking struct {
	SessionID   string    `json:"session_id"`
	OwnerID     string    `json:"owner_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusRecorded indicates data was successfully recorded via API.
	APIStatusRecorded APIStatus = "recorded"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// Recorded creates a recorded API response.
func Recorded() APIResponse {
	return APIResponse{Status: string(APIStatusRecorded)}
}
