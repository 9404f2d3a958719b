package netutil

import (
	"net/url"

	"github.com/pkg/errors"
)

// ValidateHttpUrl validates a URL for an HTTP scheme. Unlike url.Parse, a
// value without a scheme is rejected.
func ValidateHttpUrl(value string, requireSecureConnection bool) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}

	if len(parsed.Scheme) == 0 {
		return errors.New("url scheme missing")
	}

	if requireSecureConnection && parsed.Scheme != "https" {
		return errors.New("url scheme must be https")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}

	if len(parsed.Host) == 0 {
		return errors.New("host component missing")
	} else if err := ValidateHost(parsed.Hostname()); err != nil {
		return errors.Wrap(err, "host is not valid")
	}

	return nil
}
