package session

import "claimwise-auth/internal/utils"

// idBytes gives session ids 256 bits of entropy.
const idBytes = 32

// GenerateID generates a cryptographically secure session ID.
func GenerateID() string {
	return utils.RandomString(idBytes)
}
