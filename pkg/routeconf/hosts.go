package routeconf

import "net/netip"

// Hosts returns a copy of the static host entries.
func (s *Store) Hosts() map[string]string {
	out := make(map[string]string, len(s.doc.Hosts))
	for name, ip := range s.doc.Hosts {
		out[name] = ip
	}
	return out
}

// Host looks up one host entry.
func (s *Store) Host(name string) (string, bool) {
	ip, ok := s.doc.Hosts[name]
	return ip, ok
}

// AddHost creates a name→IP entry. A value that does not parse as an IP is
// accepted with a warning, never rejected; the engine decides what to do
// with it.
func (s *Store) AddHost(name, ip string) error {
	if hasKey(s.doc.Hosts, name) {
		return validationErr("host", name, ErrExists)
	}
	s.warnImplausibleIP(name, ip)
	s.doc.Hosts[name] = ip
	return s.Save()
}

// HostUpdate carries the optional edits of UpdateHost.
type HostUpdate struct {
	IP      *string
	NewName *string
}

// UpdateHost rewrites the IP and optionally renames. A rename colliding
// with an existing entry rejects the whole update.
func (s *Store) UpdateHost(name string, upd HostUpdate) error {
	ip, ok := s.doc.Hosts[name]
	if !ok {
		return validationErr("host", name, ErrNotFound)
	}
	newName := name
	if upd.NewName != nil && *upd.NewName != "" && *upd.NewName != name {
		if hasKey(s.doc.Hosts, *upd.NewName) {
			return validationErr("host", *upd.NewName, ErrExists)
		}
		newName = *upd.NewName
	}
	if upd.IP != nil {
		ip = *upd.IP
		s.warnImplausibleIP(newName, ip)
	}
	delete(s.doc.Hosts, name)
	s.doc.Hosts[newName] = ip
	return s.Save()
}

// DeleteHost removes one entry.
func (s *Store) DeleteHost(name string) error {
	if !hasKey(s.doc.Hosts, name) {
		return validationErr("host", name, ErrNotFound)
	}
	delete(s.doc.Hosts, name)
	return s.Save()
}

// DeleteAllHosts clears the host entries.
func (s *Store) DeleteAllHosts() error {
	if len(s.doc.Hosts) == 0 {
		return validationErr("host", "", ErrNotFound)
	}
	s.doc.Hosts = map[string]string{}
	return s.Save()
}

func (s *Store) warnImplausibleIP(name, ip string) {
	if _, err := netip.ParseAddr(ip); err != nil {
		s.logf("host %q: %q does not look like an IP address, adding anyway", name, ip)
	}
}
