// Package otp generates one-time codes for stored 2FA seeds and converts
// seeds to and from otpauth:// provisioning URIs.
//
// Both TOTP (RFC 6238) and HOTP (RFC 4226) keys are supported. Seeds are
// base32; raw base64 seeds, as found in some authenticator exports, can be
// converted with Base64ToBase32.
package otp
