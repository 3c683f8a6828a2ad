package models

import (
	"strings"
	"time"
)

// Gender of a club member.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender maps a stored gender string to a Gender.
// Matching is case-insensitive; unknown values fall back to GenderMale.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f":
		return GenderFemale
	default:
		return GenderMale
	}
}

// MemberStatus is whether a member currently takes part in club meetings.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// ParseMemberStatus maps a stored status string to a MemberStatus.
// Unknown values fall back to MemberActive.
func ParseMemberStatus(s string) MemberStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inactive":
		return MemberInactive
	default:
		return MemberActive
	}
}

// Member is a registered club member.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string `json:"id"`

	// Name is the display name, also used to match OCR'd score sheets.
	Name string `json:"name"`

	Gender Gender       `json:"gender"`
	Status MemberStatus `json:"status"`

	// JoinedAt is when the member joined the club.
	JoinedAt time.Time `json:"joined_at"`
}
