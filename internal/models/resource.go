package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

type ResourceType string

const (
	ResourceMaterial ResourceType = "material"
	ResourceSession  ResourceType = "session"
)

// Table returns the postgres table backing the resource type.
func (t ResourceType) Table() string {
	if t == ResourceSession {
		return "sessions"
	}
	return "materials"
}

func (t ResourceType) Valid() bool {
	return t == ResourceMaterial || t == ResourceSession
}

type SessionType string

const (
	SessionLive      SessionType = "Live"
	SessionRecording SessionType = "Recording"
)

// ResourceBase holds the columns shared by materials and sessions.
type ResourceBase struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	URL             string         `db:"url" json:"url"`
	Level           string         `db:"level" json:"level"`
	Stream          []string       `db:"stream" json:"stream"`
	Subject         string         `db:"subject" json:"subject"`
	Language        string         `db:"language" json:"language"`
	ContributorID   *uuid.UUID     `db:"contributor_id" json:"contributor_id"`
	ContributorName *string        `db:"contributor_name" json:"contributor_name"`
	IsAnonymous     bool           `db:"is_anonymous" json:"is_anonymous"`
	Status          ApprovalStatus `db:"status" json:"status"`
	ApprovedAt      *time.Time     `db:"approved_at" json:"approved_at"`
	ApprovedBy      *uuid.UUID     `db:"approved_by" json:"approved_by"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// OwnedBy reports whether userID is the recorded contributor.
func (r *ResourceBase) OwnedBy(userID uuid.UUID) bool {
	return r.ContributorID != nil && *r.ContributorID == userID
}

type Material struct {
	ResourceBase
	Category string `db:"category" json:"category"`
}

type Session struct {
	ResourceBase
	SessionType SessionType `db:"session_type" json:"session_type"`
	SessionDate *string     `db:"session_date" json:"session_date"` // YYYY-MM-DD
	StartTime   *string     `db:"start_time" json:"start_time"`
	EndTime     *string     `db:"end_time" json:"end_time"`
}

// Resource is either a material or a session, tagged with its type.
// Exactly one of Material / Session is set.
type Resource struct {
	Type     ResourceType
	Material *Material
	Session  *Session
}

func (r *Resource) Base() *ResourceBase {
	if r.Session != nil {
		return &r.Session.ResourceBase
	}
	return &r.Material.ResourceBase
}

// MarshalJSON flattens the row and adds "resourceType" next to its columns.
func (r Resource) MarshalJSON() ([]byte, error) {
	switch {
	case r.Session != nil:
		return json.Marshal(struct {
			ResourceType ResourceType `json:"resourceType"`
			*Session
		}{ResourceSession, r.Session})
	case r.Material != nil:
		return json.Marshal(struct {
			ResourceType ResourceType `json:"resourceType"`
			*Material
		}{ResourceMaterial, r.Material})
	}
	return []byte("null"), nil
}

// ResourceFilter narrows public listings. Empty fields are ignored.
type ResourceFilter struct {
	Type     ResourceType
	Level    string
	Stream   string
	Subject  string
	Language string
	Page     int
	Limit    int
}

func (f ResourceFilter) Offset() int { return (f.Page - 1) * f.Limit }

type ResourceStats struct {
	Total     int `json:"total"`
	Materials int `json:"materials"`
	Sessions  int `json:"sessions"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
}
