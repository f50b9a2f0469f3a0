// Package auth holds the session credential. Token issuance is out of
// scope; the holder only stores, clears and announces the token.
package auth
