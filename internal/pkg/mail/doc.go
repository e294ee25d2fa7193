// Package mail defines the contracts for sending email messages.
//
// The rest of the application works with the Mail interface and the Message
// payload. Two drivers deliver over SMTP: one on net/smtp with implicit TLS
// or STARTTLS, one on gomail. Package mailtest provides an in-process SMTP
// server for tests.
package mail
