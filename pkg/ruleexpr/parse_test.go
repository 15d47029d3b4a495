package ruleexpr

import (
	"errors"
	"reflect"
	"testing"
)

func mustCompile(t *testing.T, expr string) Rule {
	t.Helper()
	r, err := Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q) err=%v", expr, err)
	}
	return r
}

func TestCompile_Leaves(t *testing.T) {
	cases := []struct {
		expr string
		want Rule
	}{
		{"host is 1.2.3.4", Subnet{Content: "1.2.3.4/32"}},
		{"host in 10.0.0.0/8", Subnet{Content: "10.0.0.0/8"}},
		{"host is example.com", Regexp{Variable: "host", Content: `^example\.com$`}},
		{"not host is example.com", Regexp{Variable: "host", Content: `^example\.com$`, Negate: true}},
		{"port is 80", Regexp{Variable: "port", Content: "^80$"}},
		{"addr is 1.2.3.4:443", Regexp{Variable: "addr", Content: `^1\.2\.3\.4:443$`}},
		{`host like "^.*\.corp$"`, Regexp{Variable: "host", Content: `^.*\.corp$`}},
		{"addr like '.*:8[0-9]{3}$'", Regexp{Variable: "addr", Content: ".*:8[0-9]{3}$"}},
		{"not host in 192.168.1.0/24", Subnet{Content: "192.168.1.0/24", Negate: true}},
		// keywords and variables are case-insensitive
		{"NOT Host IS 1.2.3.4", Subnet{Content: "1.2.3.4/32", Negate: true}},
		{"PORT LIKE 8080", Regexp{Variable: "port", Content: "8080"}},
	}
	for _, tc := range cases {
		got := mustCompile(t, tc.expr)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Compile(%q)=%#v want=%#v", tc.expr, got, tc.want)
		}
	}
}

func TestCompile_Precedence(t *testing.T) {
	got := mustCompile(t, "port is 80 or port is 443")
	want := Combo{
		Rule1: Regexp{Variable: "port", Content: "^80$"},
		Op:    OpOr,
		Rule2: Regexp{Variable: "port", Content: "^443$"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("or fold mismatch: %#v", got)
	}

	// AND binds tighter than OR: A and B or C == (A and B) or C.
	got = mustCompile(t, "host in 10.0.0.0/8 and port is 22 or host is example.com")
	want = Combo{
		Rule1: Combo{
			Rule1: Subnet{Content: "10.0.0.0/8"},
			Op:    OpAnd,
			Rule2: Regexp{Variable: "port", Content: "^22$"},
		},
		Op:    OpOr,
		Rule2: Regexp{Variable: "host", Content: `^example\.com$`},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mixed precedence mismatch: %#v", got)
	}

	// Same-precedence chains fold left.
	got = mustCompile(t, "port is 1 and port is 2 and port is 3")
	want = Combo{
		Rule1: Combo{
			Rule1: Regexp{Variable: "port", Content: "^1$"},
			Op:    OpAnd,
			Rule2: Regexp{Variable: "port", Content: "^2$"},
		},
		Op:    OpAnd,
		Rule2: Regexp{Variable: "port", Content: "^3$"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("left fold mismatch: %#v", got)
	}
}

func TestCompile_Parentheses(t *testing.T) {
	got := mustCompile(t, "port is 80 and (host is a.com or host is b.com)")
	want := Combo{
		Rule1: Regexp{Variable: "port", Content: "^80$"},
		Op:    OpAnd,
		Rule2: Combo{
			Rule1: Regexp{Variable: "host", Content: `^a\.com$`},
			Op:    OpOr,
			Rule2: Regexp{Variable: "host", Content: `^b\.com$`},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("grouping mismatch: %#v", got)
	}
}

func TestCompile_EmptyInput(t *testing.T) {
	for _, expr := range []string{"", "   ", "\t\n"} {
		r, err := Compile(expr)
		if err != nil {
			t.Fatalf("Compile(%q) err=%v", expr, err)
		}
		if r != nil {
			t.Fatalf("Compile(%q)=%#v, want nil rule", expr, r)
		}
	}
}

func TestCompile_Deterministic(t *testing.T) {
	const expr = "not host in 10.0.0.0/8 and port is 22 or addr like x"
	a := mustCompile(t, expr)
	b := mustCompile(t, expr)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("compile is not deterministic: %#v vs %#v", a, b)
	}
}

func TestCompile_Errors(t *testing.T) {
	cases := []struct {
		expr      string
		offset    int
		wantInMsg string
	}{
		{"port in 1000", 5, "not supported"},
		{"addr in 10.0.0.0/8", 5, "not supported"},
		{"frob is x", 0, "unknown variable"},
		{"host near x", 5, "unknown operator"},
		{"host is", 7, "expected a value"},
		{"host is (", 8, "expected a value"},
		{"port is 80 or", 13, "expected a variable"},
		{"(port is 80", 11, "expected ')'"},
		{"port is 80 port is 443", 11, "after expression"},
		{`host like "unterminated`, 10, "unterminated quoted string"},
		{"not (port is 80 and port is 443)", 4, "expected a variable"},
	}
	for _, tc := range cases {
		r, err := Compile(tc.expr)
		if err == nil {
			t.Fatalf("Compile(%q)=%#v, want error", tc.expr, r)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Compile(%q) err type %T", tc.expr, err)
		}
		if perr.Offset != tc.offset {
			t.Fatalf("Compile(%q) offset=%d want=%d (%s)", tc.expr, perr.Offset, tc.offset, perr.Msg)
		}
		if tc.wantInMsg != "" && !contains(perr.Msg, tc.wantInMsg) {
			t.Fatalf("Compile(%q) msg=%q missing %q", tc.expr, perr.Msg, tc.wantInMsg)
		}
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestMarshal_WireShape(t *testing.T) {
	cases := []struct {
		rule Rule
		want string
	}{
		{nil, `{}`},
		{True{}, `{"rule":"true"}`},
		{Subnet{Content: "1.2.3.4/32"}, `{"rule":"subnet","content":"1.2.3.4/32"}`},
		{Subnet{Content: "10.0.0.0/8", Negate: true}, `{"rule":"subnet","content":"10.0.0.0/8","negate":true}`},
		{Regexp{Variable: "port", Content: "^80$"}, `{"rule":"regexp","variable":"port","content":"^80$"}`},
		{
			Combo{Rule1: Regexp{Variable: "port", Content: "^80$"}, Op: OpOr, Rule2: Regexp{Variable: "port", Content: "^443$"}},
			`{"rule1":{"rule":"regexp","variable":"port","content":"^80$"},"op":"or","rule2":{"rule":"regexp","variable":"port","content":"^443$"}}`,
		},
	}
	for _, tc := range cases {
		got, err := Marshal(tc.rule)
		if err != nil {
			t.Fatalf("Marshal(%#v) err=%v", tc.rule, err)
		}
		if string(got) != tc.want {
			t.Fatalf("Marshal(%#v)=%s want=%s", tc.rule, got, tc.want)
		}
	}
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	exprs := []string{
		"host is 1.2.3.4",
		"not host is example.com",
		"host in 10.0.0.0/8 and port is 22",
		"port is 80 or port is 443 or addr like x",
		"(host is a or host is b) and not port is 53",
	}
	for _, expr := range exprs {
		orig := mustCompile(t, expr)
		data, err := Marshal(orig)
		if err != nil {
			t.Fatalf("Marshal(%q) err=%v", expr, err)
		}
		back, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal(%s) err=%v", data, err)
		}
		if !reflect.DeepEqual(back, orig) {
			t.Fatalf("round trip of %q: %#v != %#v", expr, back, orig)
		}
	}
}

func TestUnmarshal_Rejects(t *testing.T) {
	bad := []string{
		`{"rule":"nope"}`,
		`{"rule":"true","negate":true}`,
		`{"rule":"regexp","variable":"scheme","content":"x"}`,
		`{"rule1":{"rule":"true"},"op":"xor","rule2":{"rule":"true"}}`,
		`{"rule1":{"rule":"true"},"op":"and"}`,
		`{"rule":"subnet","content":"1.2.3.4/32","extra":1}`,
		`[1,2]`,
	}
	for _, data := range bad {
		if r, err := Unmarshal([]byte(data)); err == nil {
			t.Fatalf("Unmarshal(%s)=%#v, want error", data, r)
		}
	}
}
