package models

import (
	"database/sql/driver"
	"time"
)

type User struct {
	ID              string         `json:"_id" db:"id"`
	UID             *int64         `json:"uid,omitempty" db:"uid"`
	Email           string         `json:"email" db:"email"`
	Name            string         `json:"name" db:"name"`
	FirstName       string         `json:"firstName" db:"first_name"`
	LastName        string         `json:"lastName" db:"last_name"`
	Role            int            `json:"role" db:"role"`
	Detail          Detail         `json:"detail" db:"detail"`
	Experience      string         `json:"experience" db:"experience"`
	Level           int            `json:"level" db:"level"`
	Note            string         `json:"note" db:"note"`
	Popularity      int            `json:"popularity" db:"popularity"`
	LastViewedAt    *time.Time     `json:"lastViewedAt,omitempty" db:"last_viewed_at"`
	Favorites       []string       `json:"favorites" db:"-"`
	WorkoutsHistory []WorkoutEntry `json:"workoutsHistory" db:"-"`
	DayHistory      []DayEntry     `json:"dayHistory" db:"-"`
	DeviceTokens    []string       `json:"deviceTokens" db:"-"`
	IsEmailVerified bool           `json:"isEmailVerified" db:"is_email_verified"`

	EmailVerificationToken       *string    `json:"-" db:"email_verification_token"`
	EmailVerificationTokenExpiry *time.Time `json:"-" db:"email_verification_token_expiry"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the account may use the admin console.
func (u *User) IsAdmin() bool {
	return u.Role >= 1
}

// HasDay reports whether a day-completion entry already exists for key.
func (u *User) HasDay(key DayKey) bool {
	for _, entry := range u.DayHistory {
		if entry.Key() == key {
			return true
		}
	}
	return false
}

// VerificationExpired reports whether the pending verification token is past
// its expiry at now. A token without an expiry never expires.
func (u *User) VerificationExpired(now time.Time) bool {
	if u.EmailVerificationTokenExpiry == nil {
		return false
	}
	return now.After(*u.EmailVerificationTokenExpiry)
}

// EnsureCollections replaces nil collections with empty ones so that they
// serialize as [] instead of null.
func (u *User) EnsureCollections() {
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	if u.WorkoutsHistory == nil {
		u.WorkoutsHistory = []WorkoutEntry{}
	}
	if u.DayHistory == nil {
		u.DayHistory = []DayEntry{}
	}
	if u.DeviceTokens == nil {
		u.DeviceTokens = []string{}
	}
}

// Detail is the free-form profile block. It is stored as a JSON document.
type Detail struct {
	Sex       *bool      `json:"sex,omitempty"`
	DOB       *time.Time `json:"dob,omitempty"`
	Weight    *float64   `json:"weight,omitempty"`
	Height    *float64   `json:"height,omitempty"`
	Location  string     `json:"location,omitempty"`
	Goal      string     `json:"mygoal,omitempty"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
}

func (d Detail) Value() (driver.Value, error) {
	return documentValue(d)
}

func (d *Detail) Scan(src any) error {
	return scanDocument(src, d)
}
