package routeconf

import "fmt"

// Proxies returns a copy of the proxy collection.
func (s *Store) Proxies() map[string]Proxy {
	out := make(map[string]Proxy, len(s.doc.Proxies))
	for name, p := range s.doc.Proxies {
		out[name] = p
	}
	return out
}

// Proxy looks up one proxy by name.
func (s *Store) Proxy(name string) (Proxy, bool) {
	p, ok := s.doc.Proxies[name]
	return p, ok
}

// AddProxy creates a proxy. An empty name picks the lowest free proxyN.
// The chosen name is returned.
func (s *Store) AddProxy(name, connstring, user, pass string) (string, error) {
	if name == "" {
		generated, err := unusedName("proxy", func(n string) bool { return hasKey(s.doc.Proxies, n) })
		if err != nil {
			return "", err
		}
		name = generated
	} else if hasKey(s.doc.Proxies, name) {
		return "", validationErr("proxy", name, ErrExists)
	}
	s.doc.Proxies[name] = Proxy{Connstring: connstring, User: user, Pass: pass}
	if err := s.Save(); err != nil {
		return "", err
	}
	return name, nil
}

// ProxyUpdate carries the optional edits of UpdateProxy; nil fields keep
// the current value.
type ProxyUpdate struct {
	Scheme  *string
	Host    *string
	Port    *string
	User    *string
	Pass    *string
	NewName *string
}

// UpdateProxy edits connstring components, credentials and optionally
// renames. A rename colliding with an existing proxy rejects the whole
// update, field edits included.
func (s *Store) UpdateProxy(name string, upd ProxyUpdate) error {
	p, ok := s.doc.Proxies[name]
	if !ok {
		return validationErr("proxy", name, ErrNotFound)
	}

	newName := name
	if upd.NewName != nil && *upd.NewName != "" && *upd.NewName != name {
		if hasKey(s.doc.Proxies, *upd.NewName) {
			return validationErr("proxy", *upd.NewName, ErrExists)
		}
		newName = *upd.NewName
	}

	scheme, host, port := splitConnstring(p.Connstring)
	if upd.Scheme != nil {
		scheme = *upd.Scheme
	}
	if upd.Host != nil {
		host = *upd.Host
	}
	if upd.Port != nil {
		port = *upd.Port
	}
	p.Connstring = fmt.Sprintf("%s://%s:%s", scheme, host, port)
	if upd.User != nil {
		p.User = *upd.User
	}
	if upd.Pass != nil {
		p.Pass = *upd.Pass
	}

	delete(s.doc.Proxies, name)
	s.doc.Proxies[newName] = p
	return s.Save()
}

// DeleteProxy removes one proxy. Chains referencing it keep their entry;
// chain membership is validated when the chain is written, not after.
func (s *Store) DeleteProxy(name string) error {
	if !hasKey(s.doc.Proxies, name) {
		return validationErr("proxy", name, ErrNotFound)
	}
	delete(s.doc.Proxies, name)
	return s.Save()
}

// DeleteAllProxies clears the proxy collection.
func (s *Store) DeleteAllProxies() error {
	if len(s.doc.Proxies) == 0 {
		return validationErr("proxy", "", ErrNotFound)
	}
	s.doc.Proxies = map[string]Proxy{}
	return s.Save()
}
