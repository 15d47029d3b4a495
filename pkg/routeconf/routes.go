package routeconf

import (
	"slices"
	"sort"
	"strings"

	"github.com/r9s-ai/bbs-admin/pkg/ruleexpr"
)

// Tables returns the routing table names, sorted.
func (s *Store) Tables() []string {
	names := make([]string, 0, len(s.doc.Routes))
	for name := range s.doc.Routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns a copy of one routing table; callers can inspect it without
// aliasing the stored block sequence.
func (s *Store) Table(name string) (Table, bool) {
	t, ok := s.doc.Routes[name]
	if !ok {
		return Table{}, false
	}
	return Table{Default: t.Default, Blocks: append([]Block(nil), t.Blocks...)}, true
}

// UpdateDefaultRoute sets the no-match target of an existing table.
func (s *Store) UpdateDefaultRoute(table, target string) error {
	t, ok := s.doc.Routes[table]
	if !ok {
		return validationErr("table", table, ErrNotFound)
	}
	resolved, err := s.ResolveTarget(target)
	if err != nil {
		return err
	}
	t.Default = resolved.String()
	return s.Save()
}

// AddRoute appends or inserts a rule block. A missing table is created with
// default "drop". A nil position appends; position p makes the new block
// index p, valid 0..=len. The resulting index is returned.
func (s *Store) AddRoute(table string, rule ruleexpr.Rule, target string, comment string, position *int, disable bool) (int, error) {
	resolved, err := s.ResolveTarget(target)
	if err != nil {
		return 0, err
	}

	t, ok := s.doc.Routes[table]
	if !ok {
		t = &Table{Default: TargetDropName, Blocks: []Block{}}
	}

	idx := len(t.Blocks)
	if position != nil {
		if *position < 0 || *position > len(t.Blocks) {
			return 0, &IndexError{Index: *position, Len: len(t.Blocks) + 1}
		}
		idx = *position
	}

	block := Block{Rules: rule, Route: resolved.String(), Disable: disable, Comment: comment}
	t.Blocks = slices.Insert(t.Blocks, idx, block)
	if !ok {
		s.doc.Routes[table] = t
		s.logf("created routing table %q with default route %q", table, TargetDropName)
	}
	if err := s.Save(); err != nil {
		return 0, err
	}
	return idx, nil
}

// RouteUpdate carries the optional edits of UpdateRoute. SetRules guards
// Rules because a nil rule tree (no condition) is itself a valid value.
type RouteUpdate struct {
	Rules    ruleexpr.Rule
	SetRules bool
	Target   *string
	Comment  *string
	Disable  *bool
	NewIndex *int
}

// UpdateRoute edits the block at index. The block is removed, edited, and
// reinserted either at NewIndex (valid 0..=len of the shortened sequence)
// or back at its original position, so an update without NewIndex is an
// edit in place and one with NewIndex is a move.
func (s *Store) UpdateRoute(table string, index int, upd RouteUpdate) error {
	t, ok := s.doc.Routes[table]
	if !ok {
		return validationErr("table", table, ErrNotFound)
	}
	if index < 0 || index >= len(t.Blocks) {
		return &IndexError{Index: index, Len: len(t.Blocks)}
	}
	if upd.NewIndex != nil {
		if *upd.NewIndex < 0 || *upd.NewIndex > len(t.Blocks)-1 {
			return &IndexError{Index: *upd.NewIndex, Len: len(t.Blocks)}
		}
	}

	block := t.Blocks[index]
	if upd.SetRules {
		block.Rules = upd.Rules
	}
	if upd.Target != nil {
		resolved, err := s.ResolveTarget(*upd.Target)
		if err != nil {
			return err
		}
		block.Route = resolved.String()
	}
	if upd.Comment != nil {
		block.Comment = *upd.Comment
	}
	if upd.Disable != nil {
		block.Disable = *upd.Disable
	}

	t.Blocks = slices.Delete(t.Blocks, index, index+1)
	at := index
	if upd.NewIndex != nil {
		at = *upd.NewIndex
	}
	t.Blocks = slices.Insert(t.Blocks, at, block)
	return s.Save()
}

// DeleteRoute removes the block at index; later blocks shift down by one.
func (s *Store) DeleteRoute(table string, index int) error {
	t, ok := s.doc.Routes[table]
	if !ok {
		return validationErr("table", table, ErrNotFound)
	}
	if index < 0 || index >= len(t.Blocks) {
		return &IndexError{Index: index, Len: len(t.Blocks)}
	}
	t.Blocks = slices.Delete(t.Blocks, index, index+1)
	return s.Save()
}

// DeleteTable removes an entire routing table. It refuses while any server
// string still ends in :<table>, reporting every referencing server.
func (s *Store) DeleteTable(table string) error {
	if !hasKey(s.doc.Routes, table) {
		return validationErr("table", table, ErrNotFound)
	}
	var refs []ServerRef
	for i, conn := range s.doc.Servers {
		if strings.HasSuffix(conn, ":"+table) {
			refs = append(refs, ServerRef{Index: i, Conn: conn})
		}
	}
	if len(refs) > 0 {
		return &TableInUseError{Table: table, Servers: refs}
	}
	delete(s.doc.Routes, table)
	return s.Save()
}
