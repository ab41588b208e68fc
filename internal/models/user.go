package models

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "service-provider"
	RoleAdmin    Role = "admin"
)

type VerificationStatus string

const (
	VerificationNotSubmitted VerificationStatus = "not-submitted"
	VerificationPending      VerificationStatus = "pending"
	VerificationVerified     VerificationStatus = "verified"
	VerificationRejected     VerificationStatus = "rejected"
)

type Verification struct {
	Status          VerificationStatus `json:"status"`
	Documents       []string           `json:"documents"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
}

type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	PasswordHash string        `json:"-"`
	Role         Role          `json:"role"`
	Status       string        `json:"status"`
	Verification *Verification `json:"verification,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// UserSummary is what other documents embed when they reference a user.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (u *User) Validate() error {
	if len(strings.TrimSpace(u.Name)) < 3 {
		return errors.New("name too short")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	switch u.Role {
	case "":
		u.Role = RoleCustomer
	case RoleCustomer, RoleProvider:
	default:
		return errors.New("role must be customer or service-provider")
	}
	if u.Status == "" {
		u.Status = "active"
	}
	if u.Role == RoleProvider && u.Verification == nil {
		u.Verification = &Verification{Status: VerificationNotSubmitted}
	}
	return nil
}
