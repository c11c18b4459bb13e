// Package models defines the value types shared by storage and its consumers.
package models

import "time"

// FileInfo is a lightweight description of a stored document.
type FileInfo struct {
	Name      string    `json:"name"`
	Checksum  string    `json:"checksum"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
