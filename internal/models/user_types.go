package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User Model with Pointers for Nullable Fields
type User struct {
	ID           int64  `json:"id" db:"id"`
	Role         string `json:"role" db:"role"`     // 'customer' or 'admin'
	Status       string `json:"status" db:"status"` // 'active' or 'suspended'
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"fullName" db:"full_name"`
	PhoneNumber  string `json:"phoneNumber" db:"phone_number"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// --- Shipping Profile (Pointers = Clean JSON) ---
	AddressLine1 *string `json:"addressLine1,omitempty" db:"address_line1"`
	AddressLine2 *string `json:"addressLine2,omitempty" db:"address_line2"`
	City         *string `json:"city,omitempty" db:"city"`
	Province     *string `json:"province,omitempty" db:"province"`
	Postcode     *string `json:"postcode,omitempty" db:"postcode"`

	// Password reset. The OTP code is generated and stored here; how it
	// reaches the customer (email/SMS) is an external collaborator's job.
	ResetCode   *string    `json:"-" db:"reset_code"`
	ResetExpiry *time.Time `json:"-" db:"reset_expiry"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
