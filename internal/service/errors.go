package service

import (
	"encoding/json"
	"errors"
	"strings"

	"storepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidState       = errors.New("invalid state")
)

// newAudit builds an audit row; details are stored as jsonb.
func newAudit(actor *uuid.UUID, action, entityID, entityName string, details interface{}) *model.AuditLog {
	raw, _ := json.Marshal(details)
	return &model.AuditLog{
		UserID:     actor,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    datatypes.JSON(raw),
	}
}

// ParseActor turns the JWT subject into a user id. Anything unparsable is
// treated as an automated caller.
func ParseActor(sub string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(sub))
	if err != nil {
		return nil
	}
	return &id
}
