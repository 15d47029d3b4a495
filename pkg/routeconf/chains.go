package routeconf

import "fmt"

// Chains returns a copy of the chain collection.
func (s *Store) Chains() map[string]Chain {
	out := make(map[string]Chain, len(s.doc.Chains))
	for name, c := range s.doc.Chains {
		out[name] = c
	}
	return out
}

// Chain looks up one chain by name.
func (s *Store) Chain(name string) (Chain, bool) {
	c, ok := s.doc.Chains[name]
	return c, ok
}

// ChainOptions carries the optional chain settings; nil means unset.
type ChainOptions struct {
	TCPReadTimeout    *int
	TCPConnectTimeout *int
	ProxyDNS          *bool
}

// AddChain creates a chain over existing proxies. An empty name picks the
// lowest free chainN. The chosen name is returned.
func (s *Store) AddChain(name string, proxies []string, opts ChainOptions) (string, error) {
	if name == "" {
		generated, err := unusedName("chain", func(n string) bool { return hasKey(s.doc.Chains, n) })
		if err != nil {
			return "", err
		}
		name = generated
	} else if hasKey(s.doc.Chains, name) {
		return "", validationErr("chain", name, ErrExists)
	}
	if err := s.checkChainProxies(name, proxies); err != nil {
		return "", err
	}
	s.doc.Chains[name] = Chain{
		Proxies:           append([]string(nil), proxies...),
		ProxyDNS:          opts.ProxyDNS,
		TCPReadTimeout:    opts.TCPReadTimeout,
		TCPConnectTimeout: opts.TCPConnectTimeout,
	}
	if err := s.Save(); err != nil {
		return "", err
	}
	return name, nil
}

// ChainUpdate carries the optional edits of UpdateChain; nil fields keep
// the current value.
type ChainUpdate struct {
	Proxies           []string // nil keeps the sequence, empty replaces it
	TCPReadTimeout    *int
	TCPConnectTimeout *int
	ProxyDNS          *bool
	NewName           *string
}

// UpdateChain edits the proxy sequence, settings and optionally renames.
// Renaming does not rewrite route targets or forwarder server strings that
// mention the old name; those stay as written.
func (s *Store) UpdateChain(name string, upd ChainUpdate) error {
	c, ok := s.doc.Chains[name]
	if !ok {
		return validationErr("chain", name, ErrNotFound)
	}

	newName := name
	if upd.NewName != nil && *upd.NewName != "" && *upd.NewName != name {
		if hasKey(s.doc.Chains, *upd.NewName) {
			return validationErr("chain", *upd.NewName, ErrExists)
		}
		newName = *upd.NewName
	}
	if upd.Proxies != nil {
		if err := s.checkChainProxies(name, upd.Proxies); err != nil {
			return err
		}
		c.Proxies = append([]string(nil), upd.Proxies...)
	}
	if upd.TCPReadTimeout != nil {
		c.TCPReadTimeout = upd.TCPReadTimeout
	}
	if upd.TCPConnectTimeout != nil {
		c.TCPConnectTimeout = upd.TCPConnectTimeout
	}
	if upd.ProxyDNS != nil {
		c.ProxyDNS = upd.ProxyDNS
	}

	delete(s.doc.Chains, name)
	s.doc.Chains[newName] = c
	if newName != name {
		s.logf("renamed chain %q to %q; route targets and forwarders using the old name are not rewritten", name, newName)
	}
	return s.Save()
}

// DeleteChain removes one chain. Route targets referencing it are left
// dangling on purpose; the engine reports them at evaluation time and
// Check surfaces them here.
func (s *Store) DeleteChain(name string) error {
	if !hasKey(s.doc.Chains, name) {
		return validationErr("chain", name, ErrNotFound)
	}
	delete(s.doc.Chains, name)
	return s.Save()
}

// DeleteAllChains clears the chain collection.
func (s *Store) DeleteAllChains() error {
	if len(s.doc.Chains) == 0 {
		return validationErr("chain", "", ErrNotFound)
	}
	s.doc.Chains = map[string]Chain{}
	return s.Save()
}

func (s *Store) checkChainProxies(chain string, proxies []string) error {
	for _, p := range proxies {
		if !hasKey(s.doc.Proxies, p) {
			return validationErr("chain", chain, fmt.Errorf("proxy %q %w", p, ErrNotFound))
		}
	}
	return nil
}
