package server

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

const (
	maxNameLength  = 253
	maxLabelLength = 63
)

var (
	ErrEmptyString      = errors.New("domain name is empty")
	ErrDotAtBeginning   = errors.New("domain name starts with a dot")
	ErrDoubleDots       = errors.New("domain name contains double dots")
	ErrWrongLength      = errors.New("domain name has wrong length")
	ErrWrongPartSize    = errors.New("domain label has wrong size")
	ErrPunycodingFailed = errors.New("domain name punycoding failed")
)

// DomainNameError is returned when a string can't be parsed as a [DomainName].
type DomainNameError struct {
	Name   string
	Detail string
	Err    error
}

func (e *DomainNameError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Name)
	}

	return fmt.Sprintf("%v: %q, %s", e.Err, e.Name, e.Detail)
}

func (e *DomainNameError) Unwrap() error {
	return e.Err
}

// DomainName is a validated, ASCII only host name.
type DomainName struct {
	raw     string
	encoded string
}

// ParseDomainName validates name against DNS length rules. Non-ASCII
// names are punycode encoded as a whole before the length checks run.
func ParseDomainName(name string) (DomainName, error) {
	switch {
	case name == "":
		return DomainName{}, &DomainNameError{Name: name, Err: ErrEmptyString}
	case strings.HasPrefix(name, "."):
		return DomainName{}, &DomainNameError{Name: name, Err: ErrDotAtBeginning}
	case strings.Contains(name, ".."):
		return DomainName{}, &DomainNameError{Name: name, Err: ErrDoubleDots}
	}

	encoded := name
	if !isASCII(name) {
		ascii, err := idna.Punycode.ToASCII(name)
		if err != nil || !isASCII(ascii) {
			return DomainName{}, &DomainNameError{Name: name, Detail: fmt.Sprint(err), Err: ErrPunycodingFailed}
		}
		encoded = ascii
	}

	trimmed := strings.TrimSuffix(encoded, ".")
	if n := len(trimmed); n < 1 || n > maxNameLength {
		return DomainName{}, &DomainNameError{
			Name:   name,
			Detail: fmt.Sprintf("length %d not in [1,%d]", n, maxNameLength),
			Err:    ErrWrongLength,
		}
	}

	for label := range strings.SplitSeq(trimmed, ".") {
		if n := len(label); n < 1 || n > maxLabelLength {
			return DomainName{}, &DomainNameError{
				Name:   name,
				Detail: fmt.Sprintf("label %q length %d not in [1,%d]", label, n, maxLabelLength),
				Err:    ErrWrongPartSize,
			}
		}
	}

	return DomainName{raw: name, encoded: encoded}, nil
}

// String returns the ASCII form of the name.
func (d DomainName) String() string {
	return d.encoded
}

// Raw returns the name as it was given to [ParseDomainName].
func (d DomainName) Raw() string {
	return d.raw
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
