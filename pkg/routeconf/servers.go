package routeconf

import (
	"fmt"
	"slices"
)

// Servers returns a copy of the server sequence.
func (s *Store) Servers() []string {
	return append([]string(nil), s.doc.Servers...)
}

// Server returns the server string at index.
func (s *Store) Server(index int) (string, error) {
	if index < 0 || index >= len(s.doc.Servers) {
		return "", &IndexError{Index: index, Len: len(s.doc.Servers)}
	}
	return s.doc.Servers[index], nil
}

// AddServer appends a listener bound to a routing table and returns its
// index. The table not existing yet is only a warning: tables are created
// lazily by the first route added to them.
func (s *Store) AddServer(scheme, host, port, table string) (int, error) {
	conn := fmt.Sprintf("%s://%s:%s:%s", scheme, host, port, table)
	if slices.Contains(s.doc.Servers, conn) {
		return 0, validationErr("server", conn, ErrExists)
	}
	if !hasKey(s.doc.Routes, table) {
		s.logf("routing table %q does not exist yet; create it with \"route add\"", table)
	}
	s.doc.Servers = append(s.doc.Servers, conn)
	if err := s.Save(); err != nil {
		return 0, err
	}
	return len(s.doc.Servers) - 1, nil
}

// AddForwarder appends a static fwd:// entry relaying a local listener to a
// remote address through a chain (or a proxy as implicit chain). Unlike
// tables, the chain must already exist.
func (s *Store) AddForwarder(localHost, localPort, chain, remoteHost, remotePort string) (int, error) {
	target, err := s.ResolveTarget(chain)
	if err != nil {
		return 0, err
	}
	if target.Kind == TargetDrop {
		return 0, validationErr("forwarder", chain, fmt.Errorf("cannot forward through %q", TargetDropName))
	}
	conn := fmt.Sprintf("fwd://%s:%s:%s:%s:%s", localHost, localPort, chain, remoteHost, remotePort)
	if slices.Contains(s.doc.Servers, conn) {
		return 0, validationErr("forwarder", conn, ErrExists)
	}
	s.doc.Servers = append(s.doc.Servers, conn)
	if err := s.Save(); err != nil {
		return 0, err
	}
	return len(s.doc.Servers) - 1, nil
}

// ServerUpdate carries the optional edits of UpdateServer; nil fields keep
// the current value.
type ServerUpdate struct {
	Scheme *string
	Host   *string
	Port   *string
	Table  *string
}

// UpdateServer rewrites components of the scheme://host:port:table entry at
// index and returns the new string.
func (s *Store) UpdateServer(index int, upd ServerUpdate) (string, error) {
	if index < 0 || index >= len(s.doc.Servers) {
		return "", &IndexError{Index: index, Len: len(s.doc.Servers)}
	}
	scheme, host, port, table, ok := splitServer(s.doc.Servers[index])
	if !ok {
		s.logf("server %d (%q) is malformed; rebuilding from the provided values", index, s.doc.Servers[index])
	}
	if upd.Scheme != nil {
		scheme = *upd.Scheme
	}
	if upd.Host != nil {
		host = *upd.Host
	}
	if upd.Port != nil {
		port = *upd.Port
	}
	if upd.Table != nil {
		table = *upd.Table
	}
	if !hasKey(s.doc.Routes, table) {
		s.logf("routing table %q does not exist yet; create it with \"route add\"", table)
	}
	conn := fmt.Sprintf("%s://%s:%s:%s", scheme, host, port, table)
	s.doc.Servers[index] = conn
	if err := s.Save(); err != nil {
		return "", err
	}
	return conn, nil
}

// DeleteServer removes the entry at index and returns it. Later entries
// shift down by one.
func (s *Store) DeleteServer(index int) (string, error) {
	if index < 0 || index >= len(s.doc.Servers) {
		return "", &IndexError{Index: index, Len: len(s.doc.Servers)}
	}
	deleted := s.doc.Servers[index]
	s.doc.Servers = slices.Delete(s.doc.Servers, index, index+1)
	if err := s.Save(); err != nil {
		return "", err
	}
	return deleted, nil
}

// DeleteAllServers clears the server sequence.
func (s *Store) DeleteAllServers() error {
	if len(s.doc.Servers) == 0 {
		return validationErr("server", "", ErrNotFound)
	}
	s.doc.Servers = []string{}
	return s.Save()
}
