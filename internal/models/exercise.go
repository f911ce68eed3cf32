package models

import "time"

type Exercise struct {
	ID        string    `json:"_id" db:"id" yaml:"id"`
	Title     string    `json:"title" db:"title" yaml:"title"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" yaml:"-"`
}
