// Package models defines the data structures shared across the application.
// JSON field names match the persisted browser-era blob layout so that
// previously exported data imports cleanly.
package models

import (
	"time"
)

// Status is the lifecycle state of a rescue case.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusOnTheWay  Status = "on-the-way"
	StatusReached   Status = "reached"
	StatusCompleted Status = "completed"
)

// NormalizeStatus maps revision-drift aliases onto the canonical status set.
// Older data used "accepted" where "assigned" is now canonical.
func NormalizeStatus(s Status) Status {
	if s == "accepted" {
		return StatusAssigned
	}
	return s
}

// ValidStatus reports whether s is a member of the canonical status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusOnTheWay, StatusReached, StatusCompleted:
		return true
	}
	return false
}

// RescueCase is one incident report worked through the status pipeline.
// Helper contact fields, location and notes are immutable after creation;
// assignment and completion fields are mutated only via the transition engine.
type RescueCase struct {
	ID              string    `json:"id"`
	TrackingID      string    `json:"trackingId,omitempty"`
	HelperName      string    `json:"helperName"`
	HelperPhone     string    `json:"helperPhone"`
	HelperAltPhone  string    `json:"helperAltPhone,omitempty"`
	HelperEmail     string    `json:"helperEmail,omitempty"`
	Location        string    `json:"location"`
	PhotoRef        string    `json:"photoUrl,omitempty"`
	Notes           string    `json:"notes"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"timestamp"`
	Revision        int       `json:"revision"`
	AssignedRescuer string    `json:"assignedRescuer,omitempty"`
	RescuerID       string    `json:"rescuerId,omitempty"`
	RescuerNotes    string    `json:"rescuerNotes,omitempty"`
	RejectedBy      []string  `json:"rejectedBy,omitempty"`
}

// RejectedByContains reports whether the rescuer previously declined this case.
func (c *RescueCase) RejectedByContains(rescuerID string) bool {
	for _, id := range c.RejectedBy {
		if id == rescuerID {
			return true
		}
	}
	return false
}

// RescuerAccount is one rescuer's credential and profile record.
// ID and Email are immutable; Email is unique case-insensitively.
type RescuerAccount struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"passwordHash"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	AltPhone        string    `json:"altPhone,omitempty"`
	Address         string    `json:"address,omitempty"`
	RegisteredAt    time.Time `json:"registeredAt"`
	ProfileComplete bool      `json:"profileComplete,omitempty"`
}

// PublicAccount is the API-safe projection of a RescuerAccount.
type PublicAccount struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	AltPhone        string    `json:"altPhone,omitempty"`
	Address         string    `json:"address,omitempty"`
	RegisteredAt    time.Time `json:"registeredAt"`
	ProfileComplete bool      `json:"profileComplete"`
}

// Public strips the credential hash for API responses.
func (a RescuerAccount) Public() PublicAccount {
	return PublicAccount{
		ID:              a.ID,
		Email:           a.Email,
		Name:            a.Name,
		Phone:           a.Phone,
		AltPhone:        a.AltPhone,
		Address:         a.Address,
		RegisteredAt:    a.RegisteredAt,
		ProfileComplete: a.ProfileComplete,
	}
}

// CaseSubmission is the request body for filing a new rescue case
type CaseSubmission struct {
	HelperName     string `json:"helperName" validate:"required"`
	HelperPhone    string `json:"helperPhone" validate:"required"`
	HelperAltPhone string `json:"helperAltPhone,omitempty"`
	HelperEmail    string `json:"helperEmail,omitempty" validate:"omitempty,email"`
	Location       string `json:"location" validate:"required"`
	PhotoRef       string `json:"photoUrl,omitempty"`
	Notes          string `json:"notes" validate:"required"`
}

// TransitionRequest asks the engine to move a case to a new status.
// RescuerID/RescuerName are required when an admin assigns; rescuers assert
// their own identity through the session. ExpectedRevision, when set, must
// match the case's current revision or the update is refused.
type TransitionRequest struct {
	Status           string `json:"status" validate:"required"`
	RescuerID        string `json:"rescuerId,omitempty"`
	RescuerName      string `json:"rescuerName,omitempty"`
	RescuerNotes     string `json:"rescuerNotes,omitempty"`
	ExpectedRevision *int   `json:"expectedRevision,omitempty"`
}

// RejectRequest returns an assigned case to the offer pool.
type RejectRequest struct {
	Reason           string `json:"reason,omitempty"`
	ExpectedRevision *int   `json:"expectedRevision,omitempty"`
}

// AccountProvision is the admin-driven account creation body. The id must
// follow the name-r# slug convention.
type AccountProvision struct {
	ID       string `json:"id" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	AltPhone string `json:"altPhone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// AccountRegistration is the rescuer self-registration body; the account id
// is generated server-side.
type AccountRegistration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address,omitempty"`
}

// AdminLogin is the admin credential check body.
type AdminLogin struct {
	AdminID  string `json:"adminId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RescuerLogin is the rescuer credential check body.
type RescuerLogin struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Storage string `json:"storage,omitempty"`
}
