package transport

import (
	"maps"
	"slices"
)

// TransportConfig toggles one transport and carries its string options.
type TransportConfig struct {
	Enabled bool
	Options map[string]string
}

// ParticipantConfig maps transport names to their configuration.
type ParticipantConfig struct {
	Transports map[string]TransportConfig
}

// NewParticipantConfig returns a config with the named transports enabled.
func NewParticipantConfig(enabled ...string) ParticipantConfig {
	cfg := ParticipantConfig{Transports: make(map[string]TransportConfig, len(enabled))}
	for _, name := range enabled {
		cfg.Transports[name] = TransportConfig{Enabled: true, Options: map[string]string{}}
	}
	return cfg
}

// Clone deep-copies the config.
func (c ParticipantConfig) Clone() ParticipantConfig {
	out := ParticipantConfig{Transports: make(map[string]TransportConfig, len(c.Transports))}
	for name, t := range c.Transports {
		out.Transports[name] = TransportConfig{Enabled: t.Enabled, Options: maps.Clone(t.Options)}
	}
	return out
}

// Enabled returns the names of enabled transports in sorted order.
func (c ParticipantConfig) Enabled() []string {
	var names []string
	for name, t := range c.Transports {
		if t.Enabled {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// ParseConfig derives a participant config from raw and base.
// Without a scheme base is returned unchanged. Otherwise every transport is
// disabled, the scheme's transport is enabled and the URI options (host and
// port included) are merged over its existing options.
func ParseConfig(raw string, base ParticipantConfig) (ParticipantConfig, error) {
	u, err := ParseURI(raw)
	if err != nil {
		return ParticipantConfig{}, err
	}
	return configFromURI(u, base), nil
}

// ParseScopeAndConfig parses both the scope and the participant config.
func ParseScopeAndConfig(raw string, base ParticipantConfig) (Scope, ParticipantConfig, error) {
	u, err := ParseURI(raw)
	if err != nil {
		return Scope{}, ParticipantConfig{}, err
	}
	scope, err := u.Scope()
	if err != nil {
		return Scope{}, ParticipantConfig{}, err
	}
	return scope, configFromURI(u, base), nil
}

func configFromURI(u *URI, base ParticipantConfig) ParticipantConfig {
	if u.Scheme == "" {
		return base
	}

	updated := base.Clone()
	for name, t := range updated.Transports {
		t.Enabled = false
		updated.Transports[name] = t
	}

	t := updated.Transports[u.Scheme]
	t.Enabled = true
	if t.Options == nil {
		t.Options = make(map[string]string, len(u.Query))
	}
	maps.Copy(t.Options, u.Query)
	updated.Transports[u.Scheme] = t
	return updated
}
