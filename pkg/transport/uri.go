package transport

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Option keys filled from the authority part of a URI.
const (
	OptionHost = "host"
	OptionPort = "port"
)

// uriPattern accepts [scheme:][//host][:port][path][?query].
// The host is an IPv4 address or an RFC 3986 reg-name.
var uriPattern = regexp.MustCompile(
	`^(?:([a-z]+):)?` +
		`(?://((?:[a-zA-Z0-9\-._~!$&'()*+,;=]|%[0-9a-fA-F]{2})+))?` +
		`(?::([0-9]+))?` +
		`((?:/[a-zA-Z0-9_.-]*)+)?` +
		`(?:\?(.*))?$`,
)

var (
	keyPattern   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	valuePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// URI is a parsed participant locator such as
// kafka://broker:9092/robot/camera/?group=vision.
type URI struct {
	Scheme string
	Host   string
	Port   string
	Path   string
	// Query holds the key=value pairs plus host and port when present.
	Query map[string]string
}

// ParseURI parses raw. Any unparsed residue is an error.
func ParseURI(raw string) (*URI, error) {
	m := uriPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, errors.Wrapf(ErrInvalidURI, "%q", raw)
	}

	u := &URI{
		Scheme: m[1],
		Host:   m[2],
		Port:   m[3],
		Path:   m[4],
		Query:  make(map[string]string),
	}

	if u.Port != "" {
		if _, err := strconv.ParseUint(u.Port, 10, 32); err != nil {
			return nil, errors.Wrapf(ErrInvalidURI, "port %q in %q", u.Port, raw)
		}
	}

	if strings.Contains(raw, "?") {
		if err := parseQuery(m[5], u.Query); err != nil {
			return nil, errors.Wrapf(err, "%q", raw)
		}
	}

	if u.Host != "" {
		u.Query[OptionHost] = u.Host
	}
	if u.Port != "" {
		u.Query[OptionPort] = u.Port
	}
	return u, nil
}

func parseQuery(query string, into map[string]string) error {
	for _, pair := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || !keyPattern.MatchString(key) || !valuePattern.MatchString(value) {
			return errors.Wrapf(ErrInvalidURI, "query pair %q", pair)
		}
		into[key] = value
	}
	return nil
}

// Scope returns the scope named by the URI path.
func (u *URI) Scope() (Scope, error) {
	return ParseScope(u.Path)
}
