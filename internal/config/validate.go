package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/idna"
)

var validate = newValidator()

// hostnameProfile maps and checks IDN labels without STD3 rules so that
// service names such as svc_a stay valid.
var hostnameProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("httphost", func(fl validator.FieldLevel) bool {
		return ValidateHost(fl.Field().String()) == nil
	})
	return v
}

// ValidateHost checks that raw is an absolute http(s) URL with a valid
// hostname. IDN hostnames are accepted when they convert to ASCII.
func ValidateHost(raw string) error {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return fmt.Errorf("%w: %s", ErrInvalidScheme, raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid host %s: %w", raw, err)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("host has no hostname: %s", raw)
	}
	if net.ParseIP(hostname) != nil {
		return nil
	}
	if _, err := hostnameProfile.ToASCII(hostname); err != nil {
		return fmt.Errorf("invalid hostname in %s: %w", raw, err)
	}
	return nil
}

func (c *Config) validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	return formatFieldError(fieldErrs[0])
}

func formatFieldError(fe validator.FieldError) error {
	name := fe.StructField()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "Hosts":
		if fe.Tag() == "httphost" {
			if host, ok := fe.Value().(string); ok {
				return ValidateHost(host)
			}
		}
		return ErrNoHosts
	case "Count":
		return ErrInvalidCount
	case "Timeout":
		return errors.New("timeout must be greater than 0")
	case "Rate":
		return errors.New("rate must be >= 0")
	case "LogLevel":
		return fmt.Errorf("log_level must be one of debug, info, warn, error: %q", fe.Value())
	default:
		return fmt.Errorf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}
