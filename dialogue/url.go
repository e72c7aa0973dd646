package dialogue

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ftps":  true,
}

// ValidationError describes why a text was not accepted as a link.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid link %q: %s", e.Input, e.Reason)
}

// ValidateURL reports whether s is an absolute http, https, ftp or ftps URL
// whose host is an IP literal or a fully qualified domain name.
func ValidateURL(s string) error {
	reject := func(reason string) error {
		return &ValidationError{Input: s, Reason: reason}
	}

	if s == "" {
		return reject("empty")
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return reject("contains whitespace")
	}

	u, err := url.Parse(s)
	if err != nil {
		return reject("malformed")
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return reject("unsupported scheme")
	}
	if u.Opaque != "" || u.Host == "" {
		return reject("missing host")
	}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return reject("invalid port")
		}
	} else if strings.HasSuffix(u.Host, ":") {
		return reject("invalid port")
	}

	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return nil
	}
	if strings.HasPrefix(u.Host, "[") {
		return reject("invalid IP literal")
	}
	if reason := checkDomain(strings.ToLower(host)); reason != "" {
		return reject(reason)
	}
	return nil
}

func checkDomain(host string) string {
	if len(host) > 253 {
		return "host too long"
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return "host is not a domain name"
	}

	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return "invalid domain label"
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return "invalid domain label"
		}
		for _, c := range label {
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
				return "invalid character in host"
			}
		}
	}

	tld := labels[len(labels)-1]
	if strings.HasPrefix(tld, "xn--") {
		return ""
	}
	if len(tld) < 2 {
		return "invalid top-level domain"
	}
	for _, c := range tld {
		if c < 'a' || c > 'z' {
			return "invalid top-level domain"
		}
	}
	return ""
}
