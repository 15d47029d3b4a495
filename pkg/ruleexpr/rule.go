package ruleexpr

import (
	"encoding/json"
	"fmt"
)

// Wire tags and field names are fixed by the bbs engine's routing decoder.
// Leaves carry a "rule" tag; combos are identified by the rule1/op/rule2
// shape alone, the engine rejects a combo object with extra keys.
const (
	TagRegexp = "regexp"
	TagSubnet = "subnet"
	TagTrue   = "true"
)

// Boolean operators accepted by the engine.
const (
	OpAnd = "and"
	OpOr  = "or"
)

// Match variables for regexp rules.
const (
	VarHost = "host"
	VarPort = "port"
	VarAddr = "addr"
)

// Rule is one node of a compiled rule tree: True, Subnet, Regexp or Combo.
// A nil Rule stands for "no condition supplied" and marshals as {}.
type Rule interface {
	ruleNode()
}

// True matches unconditionally. It is never negated.
type True struct{}

// Subnet matches when the destination host lies inside the CIDR range in
// Content. The compiler stores the literal as written, it does not
// normalize or validate it.
type Subnet struct {
	Content string
	Negate  bool
}

// Regexp matches the chosen variable against the pattern in Content.
type Regexp struct {
	Variable string
	Content  string
	Negate   bool
}

// Combo joins two sub-rules with "and" or "or". Negation never appears on
// a combo; the grammar only attaches "not" to leaves.
type Combo struct {
	Rule1 Rule
	Op    string
	Rule2 Rule
}

func (True) ruleNode()   {}
func (Subnet) ruleNode() {}
func (Regexp) ruleNode() {}
func (Combo) ruleNode()  {}

func (True) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rule string `json:"rule"`
	}{Rule: TagTrue})
}

func (r Subnet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rule    string `json:"rule"`
		Content string `json:"content"`
		Negate  bool   `json:"negate,omitempty"`
	}{Rule: TagSubnet, Content: r.Content, Negate: r.Negate})
}

func (r Regexp) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rule     string `json:"rule"`
		Variable string `json:"variable"`
		Content  string `json:"content"`
		Negate   bool   `json:"negate,omitempty"`
	}{Rule: TagRegexp, Variable: r.Variable, Content: r.Content, Negate: r.Negate})
}

func (r Combo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rule1 Rule   `json:"rule1"`
		Op    string `json:"op"`
		Rule2 Rule   `json:"rule2"`
	}{Rule1: r.Rule1, Op: r.Op, Rule2: r.Rule2})
}

// Marshal renders a rule tree in the engine's wire form. A nil rule becomes
// the empty object.
func Marshal(r Rule) ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

// Unmarshal decodes a rule tree from the engine's wire form. It probes leaf
// before combo, the same order the engine's decoder tries. An empty object
// decodes to nil.
func Unmarshal(data []byte) (Rule, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("rule is not a JSON object: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	if _, ok := fields["rule"]; ok {
		return unmarshalLeaf(fields)
	}
	return unmarshalCombo(fields)
}

func unmarshalLeaf(fields map[string]json.RawMessage) (Rule, error) {
	var leaf struct {
		Rule     string `json:"rule"`
		Variable string `json:"variable"`
		Content  string `json:"content"`
		Negate   bool   `json:"negate"`
	}
	if err := reDecode(fields, &leaf, "rule", "variable", "content", "negate"); err != nil {
		return nil, err
	}
	switch leaf.Rule {
	case TagTrue:
		if leaf.Negate {
			return nil, fmt.Errorf("rule %q cannot be negated", TagTrue)
		}
		return True{}, nil
	case TagSubnet:
		return Subnet{Content: leaf.Content, Negate: leaf.Negate}, nil
	case TagRegexp:
		switch leaf.Variable {
		case VarHost, VarPort, VarAddr:
		default:
			return nil, fmt.Errorf("unknown rule variable %q", leaf.Variable)
		}
		return Regexp{Variable: leaf.Variable, Content: leaf.Content, Negate: leaf.Negate}, nil
	default:
		return nil, fmt.Errorf("unknown rule type %q", leaf.Rule)
	}
}

func unmarshalCombo(fields map[string]json.RawMessage) (Rule, error) {
	var wire struct {
		Rule1 json.RawMessage `json:"rule1"`
		Op    string          `json:"op"`
		Rule2 json.RawMessage `json:"rule2"`
	}
	if err := reDecode(fields, &wire, "rule1", "op", "rule2"); err != nil {
		return nil, err
	}
	if wire.Rule1 == nil || wire.Rule2 == nil {
		return nil, fmt.Errorf("rule combo needs both rule1 and rule2")
	}
	switch wire.Op {
	case OpAnd, OpOr:
	default:
		return nil, fmt.Errorf("unknown combo op %q", wire.Op)
	}
	r1, err := Unmarshal(wire.Rule1)
	if err != nil {
		return nil, fmt.Errorf("rule1: %w", err)
	}
	r2, err := Unmarshal(wire.Rule2)
	if err != nil {
		return nil, fmt.Errorf("rule2: %w", err)
	}
	if r1 == nil || r2 == nil {
		return nil, fmt.Errorf("rule combo sides must not be empty")
	}
	return Combo{Rule1: r1, Op: wire.Op, Rule2: r2}, nil
}

// reDecode re-marshals the probed field map into the typed wire struct,
// rejecting keys the shape does not define.
func reDecode(fields map[string]json.RawMessage, dst any, known ...string) error {
	for k := range fields {
		found := false
		for _, want := range known {
			if k == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown rule field %q", k)
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// Walk visits r and every nested sub-rule in depth-first order.
func Walk(r Rule, fn func(Rule)) {
	if r == nil {
		return
	}
	fn(r)
	if c, ok := r.(Combo); ok {
		Walk(c.Rule1, fn)
		Walk(c.Rule2, fn)
	}
}
