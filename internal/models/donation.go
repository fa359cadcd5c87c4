package models

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	DonationPending    DonationStatus = "pending"
	DonationInProgress DonationStatus = "in_progress"
	DonationFulfilled  DonationStatus = "fulfilled"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationPending, DonationInProgress, DonationFulfilled:
		return true
	}
	return false
}

type DonationRequest struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Address         string         `db:"address" json:"address"`
	District        string         `db:"district" json:"district"`
	Grade           string         `db:"grade" json:"grade"`
	School          string         `db:"school" json:"school"`
	PhoneNumber     string         `db:"phone_number" json:"phoneNumber"`
	Category        string         `db:"category" json:"category"`
	Description     string         `db:"description" json:"description"`
	Status          DonationStatus `db:"status" json:"status"`
	SubmittedFromIP string         `db:"submitted_from_ip" json:"-"` // abuse tracking only
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

type DonationFilter struct {
	Category string
	District string
}
