package mail

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverSMTP selects the net/smtp driver.
	DriverSMTP = "smtp"
	// DriverGomail selects the gomail driver.
	DriverGomail = "gomail"
)

// ErrUnknownDriver indicates an unsupported mail driver.
var ErrUnknownDriver = errors.New("mail: unknown driver")

// NewFromDriver constructs a Mail implementation by driver name.
func NewFromDriver(driver string, cfg SMTPConfig) (Mail, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSMTP, "":
		return NewSMTP(cfg)
	case DriverGomail:
		return NewGomail(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
