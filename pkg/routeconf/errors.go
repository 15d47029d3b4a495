package routeconf

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes, usable with errors.Is on any store error.
var (
	ErrExists         = errors.New("already exists")
	ErrNotFound       = errors.New("does not exist")
	ErrTargetUnknown  = errors.New("is not \"drop\", a chain or a proxy")
	ErrNamesExhausted = errors.New("no generated name available below 1000")
)

// ValidationError reports a referential or uniqueness violation. The
// document is guaranteed untouched when one is returned.
type ValidationError struct {
	Scope string // entity kind: "proxy", "chain", "table", "server", "host", "route target"
	Name  string
	Err   error
}

func (e *ValidationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Scope, e.Err)
	}
	return fmt.Sprintf("%s %q %v", e.Scope, e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func validationErr(scope, name string, err error) error {
	return &ValidationError{Scope: scope, Name: name, Err: err}
}

// IndexError reports an out-of-range positional argument. Len is the number
// of valid positions, so for insertions it is one past the sequence length.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("index %d invalid, sequence is empty", e.Index)
	}
	return fmt.Sprintf("index %d out of range, valid 0..%d", e.Index, e.Len-1)
}

// TableInUseError rejects deleting a routing table while servers still
// select it. Every referencing server is reported.
type TableInUseError struct {
	Table   string
	Servers []ServerRef
}

// ServerRef identifies one entry of the servers sequence.
type ServerRef struct {
	Index int
	Conn  string
}

func (e *TableInUseError) Error() string {
	refs := make([]string, 0, len(e.Servers))
	for _, ref := range e.Servers {
		refs = append(refs, fmt.Sprintf("%d (%s)", ref.Index, ref.Conn))
	}
	return fmt.Sprintf("table %q is used by server %s", e.Table, strings.Join(refs, ", "))
}
