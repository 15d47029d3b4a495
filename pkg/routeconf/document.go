package routeconf

import (
	"encoding/json"
	"strings"

	"github.com/r9s-ai/bbs-admin/pkg/ruleexpr"
)

// Document is the root of the persisted configuration. The key names are the
// wire contract with the bbs engine and must not change.
type Document struct {
	Proxies map[string]Proxy  `json:"proxies"`
	Chains  map[string]Chain  `json:"chains"`
	Routes  map[string]*Table `json:"routes"`
	Servers []string          `json:"servers"`
	Hosts   map[string]string `json:"hosts"`
}

// NewDocument returns an empty document with all five collections present.
func NewDocument() *Document {
	return &Document{
		Proxies: map[string]Proxy{},
		Chains:  map[string]Chain{},
		Routes:  map[string]*Table{},
		Servers: []string{},
		Hosts:   map[string]string{},
	}
}

// normalize fills in collections a hand-edited or partial file may omit.
func (d *Document) normalize() {
	if d.Proxies == nil {
		d.Proxies = map[string]Proxy{}
	}
	if d.Chains == nil {
		d.Chains = map[string]Chain{}
	}
	if d.Routes == nil {
		d.Routes = map[string]*Table{}
	}
	if d.Servers == nil {
		d.Servers = []string{}
	}
	if d.Hosts == nil {
		d.Hosts = map[string]string{}
	}
	for name, table := range d.Routes {
		if table == nil {
			d.Routes[name] = &Table{Default: TargetDropName, Blocks: []Block{}}
			continue
		}
		if table.Blocks == nil {
			table.Blocks = []Block{}
		}
	}
}

// Proxy is one upstream proxy definition.
type Proxy struct {
	Connstring string `json:"connstring"` // scheme://host:port
	User       string `json:"user,omitempty"`
	Pass       string `json:"pass,omitempty"`
}

// Chain is an ordered relay sequence of proxy names plus optional transport
// tuning. Timeouts are milliseconds.
type Chain struct {
	Proxies           []string `json:"proxies"`
	ProxyDNS          *bool    `json:"proxyDns,omitempty"`
	TCPReadTimeout    *int     `json:"tcpReadTimeout,omitempty"`
	TCPConnectTimeout *int     `json:"tcpConnectTimeout,omitempty"`
}

// Table is one routing table: an ordered rule-block sequence evaluated first
// match wins, and a default target for the no-match case.
type Table struct {
	Default string  `json:"default"`
	Blocks  []Block `json:"blocks"`
}

// Block binds one compiled rule tree to a route target. Its identity is its
// position in the table, which shifts under insertions and deletions.
type Block struct {
	Rules   ruleexpr.Rule
	Route   string
	Disable bool
	Comment string
}

type blockWire struct {
	Rules   json.RawMessage `json:"rules"`
	Route   string          `json:"route"`
	Disable bool            `json:"disable"`
	Comment string          `json:"comment,omitempty"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	rules, err := ruleexpr.Marshal(b.Rules)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockWire{
		Rules:   rules,
		Route:   b.Route,
		Disable: b.Disable,
		Comment: b.Comment,
	})
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var wire blockWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var rules ruleexpr.Rule
	if wire.Rules != nil {
		r, err := ruleexpr.Unmarshal(wire.Rules)
		if err != nil {
			return err
		}
		rules = r
	}
	b.Rules = rules
	b.Route = wire.Route
	b.Disable = wire.Disable
	b.Comment = wire.Comment
	return nil
}

// splitConnstring breaks scheme://host:port into its parts. Missing pieces
// come back empty, mirroring how loosely the engine treats these strings.
func splitConnstring(conn string) (scheme, host, port string) {
	rest := conn
	if i := strings.Index(conn, "://"); i >= 0 {
		scheme = conn[:i]
		rest = conn[i+3:]
	} else {
		rest = ""
	}
	if i := strings.Index(rest, ":"); i >= 0 {
		return scheme, rest[:i], rest[i+1:]
	}
	return scheme, rest, ""
}

// splitServer breaks scheme://host:port:table into its parts.
func splitServer(conn string) (scheme, host, port, table string, ok bool) {
	i := strings.Index(conn, "://")
	if i < 0 {
		return "", "", "", "", false
	}
	scheme = conn[:i]
	parts := strings.SplitN(conn[i+3:], ":", 3)
	if len(parts) != 3 {
		return "", "", "", "", false
	}
	return scheme, parts[0], parts[1], parts[2], true
}
