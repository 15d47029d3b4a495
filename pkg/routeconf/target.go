package routeconf

// TargetDropName is the reserved route target that discards traffic.
const TargetDropName = "drop"

// TargetKind discriminates what a route target string resolved to.
type TargetKind int

const (
	TargetDrop TargetKind = iota
	// TargetChain routes through a named chain.
	TargetChain
	// TargetProxy routes through a proxy name used as an implicit
	// single-hop chain.
	TargetProxy
)

// Target is a resolved route target. Resolution happens once, when the
// mutation naming the target is validated; the document itself stores the
// engine-compatible string form.
type Target struct {
	Kind TargetKind
	Name string
}

func (t Target) String() string {
	if t.Kind == TargetDrop {
		return TargetDropName
	}
	return t.Name
}

// ResolveTarget classifies a route target against the current document:
// "drop", an existing chain, or an existing proxy. Anything else is a
// validation error. Chains shadow proxies when both carry the name.
func (s *Store) ResolveTarget(name string) (Target, error) {
	switch {
	case name == TargetDropName:
		return Target{Kind: TargetDrop}, nil
	case hasKey(s.doc.Chains, name):
		return Target{Kind: TargetChain, Name: name}, nil
	case hasKey(s.doc.Proxies, name):
		return Target{Kind: TargetProxy, Name: name}, nil
	default:
		return Target{}, validationErr("route target", name, ErrTargetUnknown)
	}
}

func hasKey[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}
