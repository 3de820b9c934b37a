// Package server describes the remote hosts a client talks to.
//
// Every backend is modelled as its own Go type implementing [Server].
// Endpoints and clients are parameterized by that type, so an endpoint
// declared for one backend cannot be sent through a client built for
// another.
package server

import (
	"fmt"
	"net"
	"strconv"

	"github.com/adamwoolhether/httpkit/internal/validate"
)

// Scheme is the URL scheme used to reach a server.
type Scheme string

const (
	HTTPS Scheme = "https"
	HTTP  Scheme = "http"
)

// Server is implemented by the types identifying a backend.
type Server interface {
	Description() Description
}

// Description identifies a remote host. It is created once per backend
// and never mutated.
type Description struct {
	Scheme   Scheme `validate:"required,oneof=http https"`
	Hostname string `validate:"required"`
	Domain   string
	Port     int `validate:"gte=0,lte=65535"`
}

// DescriptionOption is a functional option for [NewDescription].
type DescriptionOption func(*Description) error

// WithScheme overrides the default https scheme.
func WithScheme(scheme Scheme) DescriptionOption {
	return func(d *Description) error {
		d.Scheme = scheme
		return nil
	}
}

// WithPort sets an explicit port on the host.
func WithPort(port int) DescriptionOption {
	return func(d *Description) error {
		d.Port = port
		return nil
	}
}

// NewDescription validates hostname as a [DomainName] and returns
// the description of the host. The scheme defaults to https.
func NewDescription(hostname, domain string, optFns ...DescriptionOption) (Description, error) {
	name, err := ParseDomainName(hostname)
	if err != nil {
		return Description{}, fmt.Errorf("parsing hostname: %w", err)
	}

	d := Description{
		Scheme:   HTTPS,
		Hostname: name.String(),
		Domain:   domain,
	}

	for _, opt := range optFns {
		if err := opt(&d); err != nil {
			return Description{}, fmt.Errorf("applying description option: %w", err)
		}
	}

	if err := d.Validate(); err != nil {
		return Description{}, err
	}

	return d, nil
}

// MustDescription is like [NewDescription] but panics on error.
// It is intended for package level server declarations.
func MustDescription(hostname, domain string, optFns ...DescriptionOption) Description {
	d, err := NewDescription(hostname, domain, optFns...)
	if err != nil {
		panic(err)
	}

	return d
}

// Validate checks the description's fields.
func (d Description) Validate() error {
	if err := validate.Check(d); err != nil {
		return fmt.Errorf("invalid server description: %w", err)
	}

	return nil
}

// Host returns the hostname, joined with the port when one is set.
func (d Description) Host() string {
	if d.Port == 0 {
		return d.Hostname
	}

	return net.JoinHostPort(d.Hostname, strconv.Itoa(d.Port))
}

// BaseURL returns scheme://host.
func (d Description) BaseURL() string {
	return fmt.Sprintf("%s://%s", d.Scheme, d.Host())
}
