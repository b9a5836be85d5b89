// Package password provides bcrypt hashing and verification for user
// credentials.
//
// Accounts provisioned with a default password carry a flag on their session
// record; handlers use these helpers when rotating such credentials:
//
//	hash, err := password.Hash(newPassword)
//	if err != nil {
//		// reject
//	}
//
//	if !password.Matches(storedHash, attempt) {
//		// authentication failed
//	}
package password
