package routeconf

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"go4.org/netipx"

	"github.com/r9s-ai/bbs-admin/pkg/ruleexpr"
)

// Issue is one advisory finding from Check. The store never auto-repairs;
// findings describe what the engine will trip over at runtime.
type Issue struct {
	Scope string // "chain", "table", "server", "host"
	Name  string
	Msg   string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Scope, i.Name, i.Msg)
}

// Check sweeps the document for referential gaps the mutation-time
// validation deliberately leaves open (dangling targets after deletions,
// hand-edited files) plus content the engine cannot evaluate: unparsable
// CIDR literals in subnet rules, malformed server strings, implausible host
// IPs. It also flags rule blocks whose subnet is fully covered by earlier
// enabled blocks of the same table and therefore can never match.
func (s *Store) Check() []Issue {
	var issues []Issue
	add := func(scope, name, format string, args ...any) {
		issues = append(issues, Issue{Scope: scope, Name: name, Msg: fmt.Sprintf(format, args...)})
	}

	for _, name := range sortedKeys(s.doc.Chains) {
		for _, p := range s.doc.Chains[name].Proxies {
			if !hasKey(s.doc.Proxies, p) {
				add("chain", name, "references missing proxy %q", p)
			}
		}
	}

	for _, name := range s.Tables() {
		t := s.doc.Routes[name]
		if _, err := s.ResolveTarget(t.Default); err != nil {
			add("table", name, "default route %q resolves to nothing", t.Default)
		}
		s.checkBlocks(name, t.Blocks, add)
	}

	for i, conn := range s.doc.Servers {
		s.checkServer(i, conn, add)
	}

	for _, name := range sortedKeys(s.doc.Hosts) {
		if _, err := netip.ParseAddr(s.doc.Hosts[name]); err != nil {
			add("host", name, "%q is not an IP address", s.doc.Hosts[name])
		}
	}
	return issues
}

func (s *Store) checkBlocks(table string, blocks []Block, add func(scope, name, format string, args ...any)) {
	// Accumulates the address space already claimed by earlier enabled,
	// non-negated subnet-only blocks; a later subnet inside it is dead.
	var covered netipx.IPSetBuilder

	for i, block := range blocks {
		name := fmt.Sprintf("%s[%d]", table, i)
		if _, err := s.ResolveTarget(block.Route); err != nil {
			add("table", name, "route target %q resolves to nothing", block.Route)
		}

		var badCIDR bool
		ruleexpr.Walk(block.Rules, func(r ruleexpr.Rule) {
			sub, ok := r.(ruleexpr.Subnet)
			if !ok {
				return
			}
			if _, err := netip.ParsePrefix(sub.Content); err != nil {
				badCIDR = true
				add("table", name, "subnet rule %q is not valid CIDR notation", sub.Content)
			}
		})
		if block.Disable || badCIDR {
			continue
		}

		if sub, ok := block.Rules.(ruleexpr.Subnet); ok && !sub.Negate {
			prefix, err := netip.ParsePrefix(sub.Content)
			if err != nil {
				continue
			}
			set, err := covered.IPSet()
			if err == nil && set.ContainsPrefix(prefix.Masked()) {
				add("table", name, "subnet %s is fully covered by earlier blocks and can never match", sub.Content)
			}
			covered.AddPrefix(prefix.Masked())
		}
	}
}

func (s *Store) checkServer(index int, conn string, add func(scope, name, format string, args ...any)) {
	name := fmt.Sprintf("%d", index)
	scheme, _, _, rest, ok := splitServer(conn)
	if !ok {
		add("server", name, "%q is not scheme://host:port:... shaped", conn)
		return
	}
	if scheme == "fwd" {
		// rest is chain:remote_host:remote_port after local host and port.
		parts := strings.SplitN(rest, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			add("server", name, "forwarder %q is missing chain or remote address", conn)
			return
		}
		if target, err := s.ResolveTarget(parts[0]); err != nil || target.Kind == TargetDrop {
			add("server", name, "forwarder chain %q resolves to nothing", parts[0])
		}
		return
	}
	if !hasKey(s.doc.Routes, rest) {
		add("server", name, "references missing routing table %q", rest)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
