// Package validator provides a small validation abstraction for configuration
// and domain structs.
//
// Business code should depend on the Validator interface so validation can be
// shared and tested consistently. The go-playground/validator v10
// implementation lives in this package.
package validator
