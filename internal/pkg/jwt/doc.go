// Package jwt issues and verifies the stateless session tokens of the vault.
//
// It includes:
//   - A typed Claims wrapper (registered claims + issue reason and login time).
//   - An HS256 Service that signs with the stored credential hash, reports
//     remaining lifetime and re-issues tokens without the password.
//   - Cookie and Authorization header transport helpers.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
