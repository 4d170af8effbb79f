// Package validator validates request and dependency structs.
//
// Besides the stock go-playground rules it registers:
//   - strongpassword: the operator password policy (see credential.CheckPolicy)
//   - otpalgorithm: an OTP HMAC algorithm name accepted by the vault
package validator
