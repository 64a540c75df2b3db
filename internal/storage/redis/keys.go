package redis

import (
	"fmt"

	"github.com/mcoot/registrar/internal/model"
)

// Key prefix for all registrar data
const keyPrefix = "registrar"

// registrantKey returns the Redis key for a Registrant
func registrantKey(id model.RegistrantID) string {
	return fmt.Sprintf("%s:registrant:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> registrant_id index.
// With duplicates allowed it points at the first registrant stored.
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// rosterKey returns the Redis key for the LIST of registrant IDs in last-name order
func rosterKey() string {
	return fmt.Sprintf("%s:roster", keyPrefix)
}

// sessionKey returns the Redis key for a registration Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}
