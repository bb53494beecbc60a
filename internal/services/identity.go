package services

import "github.com/google/uuid"

// IdentityService mints the globally unique identifiers new records are
// written under. Identifiers are randomly derived; nothing in the system
// may assume they sort or sequence.
type IdentityService interface {
	NewID() string
}

type uuidIdentity struct{}

func NewIdentityService() IdentityService {
	return uuidIdentity{}
}

func (uuidIdentity) NewID() string {
	return uuid.NewString()
}
