package jwt

import "time"

// ForgetTokenUtil mints and checks the tokens handed out after a successful
// recovery answer. The cache copy stays authoritative; Verify only rejects
// tokens that were not minted for the username.
type ForgetTokenUtil interface {
	Generate(username string) (token string, exp time.Time, err error)
	Verify(token, username string) error
}
