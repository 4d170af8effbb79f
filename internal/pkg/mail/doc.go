// Package mail sends plain operator alerts by e-mail.
//
// Callers depend on the Mail interface. SMTP delivers through net/smtp,
// Memory records messages for tests and Discard is used when no server is
// configured.
package mail
