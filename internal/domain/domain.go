// Package domain holds the persisted entities and value types shared by the
// feed, preference and social-matching services.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a fresh id on insert; ids are generated in Go rather than by
// a database default so the schema stays portable.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func utcNow() time.Time { return time.Now().UTC() }

// beforeCreateHook is the shared body of the BeforeCreate hooks below.
func beforeCreateHook(id *uuid.UUID, _ *gorm.DB) error {
	ensureID(id)
	return nil
}
