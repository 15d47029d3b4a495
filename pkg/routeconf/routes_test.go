package routeconf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/bbs-admin/pkg/ruleexpr"
)

func portRule(t *testing.T, port string) ruleexpr.Rule {
	t.Helper()
	r, err := ruleexpr.Compile("port is " + port)
	require.NoError(t, err)
	return r
}

func seedTable(t *testing.T, s *Store, table string, ports ...string) {
	t.Helper()
	for _, p := range ports {
		_, err := s.AddRoute(table, portRule(t, p), "drop", "port "+p, nil, false)
		require.NoError(t, err)
	}
}

func TestAddRoute_CreatesTableWithDropDefault(t *testing.T) {
	s := newTestStore(t)
	idx, err := s.AddRoute("main", nil, "drop", "", nil, false)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	table, ok := s.Table("main")
	require.True(t, ok)
	require.Equal(t, "drop", table.Default)
	require.Len(t, table.Blocks, 1)
	require.Nil(t, table.Blocks[0].Rules)
}

func TestAddRoute_TargetValidated(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddRoute("main", nil, "ghost", "", nil, false)
	require.ErrorIs(t, err, ErrTargetUnknown)
	_, ok := s.Table("main")
	require.False(t, ok, "failed add must not create the table")
}

func TestAddRoute_InsertAtEveryPosition(t *testing.T) {
	// Inserting at p makes the new block index p and shifts the tail
	// right with order preserved.
	for p := 0; p <= 3; p++ {
		t.Run(fmt.Sprintf("pos%d", p), func(t *testing.T) {
			s := newTestStore(t)
			seedTable(t, s, "main", "1", "2", "3")

			pos := p
			idx, err := s.AddRoute("main", portRule(t, "99"), "drop", "inserted", &pos, false)
			require.NoError(t, err)
			require.Equal(t, p, idx)

			table, _ := s.Table("main")
			require.Len(t, table.Blocks, 4)
			require.Equal(t, "inserted", table.Blocks[p].Comment)

			var rest []string
			for i, b := range table.Blocks {
				if i != p {
					rest = append(rest, b.Comment)
				}
			}
			require.Equal(t, []string{"port 1", "port 2", "port 3"}, rest)
		})
	}
}

func TestAddRoute_PositionBounds(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1")

	for _, bad := range []int{-1, 2, 10} {
		pos := bad
		_, err := s.AddRoute("main", nil, "drop", "", &pos, false)
		var ierr *IndexError
		require.ErrorAs(t, err, &ierr, "position %d", bad)
	}
}

func TestUpdateRoute_EditInPlace(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1", "2", "3")

	comment := "edited"
	disable := true
	require.NoError(t, s.UpdateRoute("main", 1, RouteUpdate{Comment: &comment, Disable: &disable}))

	table, _ := s.Table("main")
	require.Equal(t, []string{"port 1", "edited", "port 3"}, blockComments(table))
	require.True(t, table.Blocks[1].Disable)
	// The rule itself was not touched.
	require.Equal(t, portRule(t, "2"), table.Blocks[1].Rules)
}

func TestUpdateRoute_Move(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1", "2", "3")

	to := 0
	require.NoError(t, s.UpdateRoute("main", 2, RouteUpdate{NewIndex: &to}))
	table, _ := s.Table("main")
	require.Equal(t, []string{"port 3", "port 1", "port 2"}, blockComments(table))

	// Move to the end of the shortened sequence.
	to = 2
	require.NoError(t, s.UpdateRoute("main", 0, RouteUpdate{NewIndex: &to}))
	table, _ = s.Table("main")
	require.Equal(t, []string{"port 1", "port 2", "port 3"}, blockComments(table))
}

func TestUpdateRoute_ClearRule(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1")

	require.NoError(t, s.UpdateRoute("main", 0, RouteUpdate{SetRules: true, Rules: nil}))
	table, _ := s.Table("main")
	require.Nil(t, table.Blocks[0].Rules)
}

func TestUpdateRoute_InvalidTargetLeavesTableIntact(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1", "2")

	target := "ghost"
	to := 0
	err := s.UpdateRoute("main", 1, RouteUpdate{Target: &target, NewIndex: &to})
	require.ErrorIs(t, err, ErrTargetUnknown)

	table, _ := s.Table("main")
	require.Equal(t, []string{"port 1", "port 2"}, blockComments(table))
}

func TestUpdateRoute_IndexBounds(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1", "2")

	var ierr *IndexError
	require.ErrorAs(t, s.UpdateRoute("main", 2, RouteUpdate{}), &ierr)
	require.ErrorAs(t, s.UpdateRoute("main", -1, RouteUpdate{}), &ierr)

	// NewIndex range is bounded by the sequence with the block removed.
	to := 2
	require.ErrorAs(t, s.UpdateRoute("main", 0, RouteUpdate{NewIndex: &to}), &ierr)
	to = 1
	require.NoError(t, s.UpdateRoute("main", 0, RouteUpdate{NewIndex: &to}))
}

func TestDeleteRoute(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1", "2", "3")

	require.NoError(t, s.DeleteRoute("main", 1))
	table, _ := s.Table("main")
	require.Equal(t, []string{"port 1", "port 3"}, blockComments(table))

	var ierr *IndexError
	require.ErrorAs(t, s.DeleteRoute("main", 2), &ierr)
	require.ErrorIs(t, s.DeleteRoute("ghost", 0), ErrNotFound)
}

func TestUpdateDefaultRoute(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1")
	_, err := s.AddProxy("p1", "socks5://a:1", "", "")
	require.NoError(t, err)

	require.NoError(t, s.UpdateDefaultRoute("main", "p1"))
	table, _ := s.Table("main")
	require.Equal(t, "p1", table.Default)

	require.ErrorIs(t, s.UpdateDefaultRoute("main", "ghost"), ErrTargetUnknown)
	require.ErrorIs(t, s.UpdateDefaultRoute("ghost", "drop"), ErrNotFound)
}

func TestDeleteTable_RefusedWhileServersReferenceIt(t *testing.T) {
	s := newTestStore(t)
	seedTable(t, s, "main", "1")
	_, err := s.AddServer("socks5", "127.0.0.1", "1080", "main")
	require.NoError(t, err)
	_, err = s.AddServer("http", "127.0.0.1", "8080", "main")
	require.NoError(t, err)
	_, err = s.AddServer("http", "127.0.0.1", "8081", "other")
	require.NoError(t, err)

	err = s.DeleteTable("main")
	var inUse *TableInUseError
	require.ErrorAs(t, err, &inUse)
	require.Equal(t, []ServerRef{
		{Index: 0, Conn: "socks5://127.0.0.1:1080:main"},
		{Index: 1, Conn: "http://127.0.0.1:8080:main"},
	}, inUse.Servers)

	// Nothing was deleted.
	_, ok := s.Table("main")
	require.True(t, ok)
	require.Len(t, s.Servers(), 3)

	_, err = s.DeleteServer(0)
	require.NoError(t, err)
	_, err = s.DeleteServer(0)
	require.NoError(t, err)
	require.NoError(t, s.DeleteTable("main"))
	_, ok = s.Table("main")
	require.False(t, ok)
}

func TestResolveTarget(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddProxy("p1", "socks5://a:1", "", "")
	require.NoError(t, err)
	_, err = s.AddChain("c1", []string{"p1"}, ChainOptions{})
	require.NoError(t, err)

	target, err := s.ResolveTarget("drop")
	require.NoError(t, err)
	require.Equal(t, TargetDrop, target.Kind)
	require.Equal(t, "drop", target.String())

	target, err = s.ResolveTarget("c1")
	require.NoError(t, err)
	require.Equal(t, TargetChain, target.Kind)

	target, err = s.ResolveTarget("p1")
	require.NoError(t, err)
	require.Equal(t, TargetProxy, target.Kind)

	_, err = s.ResolveTarget("ghost")
	require.ErrorIs(t, err, ErrTargetUnknown)
}

func blockComments(t Table) []string {
	out := make([]string, 0, len(t.Blocks))
	for _, b := range t.Blocks {
		out = append(out, b.Comment)
	}
	return out
}
