// Package clock provides a tiny time abstraction.
//
// Session expiry, rate-limit windows and OTP codes all depend on "now". Code
// that reads the time goes through Clocker so tests can pin it with Manual and
// step it forward deterministically.
package clock
