package ruleexpr

import "testing"

// FuzzCompile checks the compiler never panics and that every successful
// compile survives a marshal/unmarshal round trip.
func FuzzCompile(f *testing.F) {
	seeds := []string{
		"",
		"host is 1.2.3.4",
		"not host in 10.0.0.0/8 and port is 22",
		"port is 80 or (addr like x and not host is y)",
		`host like "^a(b$"`,
		"(((",
		"not not host is x",
		"host is 'quoted value'",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, expr string) {
		r, err := Compile(expr)
		if err != nil {
			if _, ok := err.(*ParseError); !ok {
				t.Fatalf("non-ParseError from Compile: %T %v", err, err)
			}
			return
		}
		data, err := Marshal(r)
		if err != nil {
			t.Fatalf("Marshal failed on compiled rule: %v", err)
		}
		if _, err := Unmarshal(data); err != nil {
			t.Fatalf("Unmarshal failed on %s: %v", data, err)
		}
	})
}
