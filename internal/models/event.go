package models

import "time"

type EventType string

const (
	EventResourceSubmitted EventType = "resource.submitted"
	EventResourceApproved  EventType = "resource.approved"
	EventResourceRejected  EventType = "resource.rejected"
	EventResourceDeleted   EventType = "resource.deleted"
	EventDonationCreated   EventType = "donation_request.created"
	EventDonationUpdated   EventType = "donation_request.updated"
)

type ResourceEvent struct {
	Type         EventType    `json:"type"`
	ResourceType ResourceType `json:"resourceType,omitempty"`
	ID           string       `json:"id"`
	Title        string       `json:"title,omitempty"`
	Status       string       `json:"status"`
	At           time.Time    `json:"at"`
}
