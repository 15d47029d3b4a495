// Package tui is a read-only bubbletea browser over the routing document.
// Mutations stay on the single-shot CLI so two operators can never hold
// conflicting in-memory copies behind a long-lived screen.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/r9s-ai/bbs-admin/pkg/routeconf"
	"github.com/r9s-ai/bbs-admin/pkg/ruleexpr"
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

// Run opens the browser over the loaded store and blocks until quit.
func Run(st *routeconf.Store) error {
	p := tea.NewProgram(newModel(st), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type entry struct {
	title string
	desc  string
}

func (e entry) Title() string       { return e.title }
func (e entry) Description() string { return e.desc }
func (e entry) FilterValue() string { return e.title }

type model struct {
	st        *routeconf.Store
	sections  list.Model
	entries   list.Model
	inSection bool
	width     int
	height    int
}

func newModel(st *routeconf.Store) model {
	sections := list.New(sectionItems(st), list.NewDefaultDelegate(), 0, 0)
	sections.Title = "bbs configuration: " + st.Path()
	sections.SetShowStatusBar(false)
	return model{st: st, sections: sections}
}

func sectionItems(st *routeconf.Store) []list.Item {
	return []list.Item{
		entry{title: "servers", desc: fmt.Sprintf("%d listening", len(st.Servers()))},
		entry{title: "proxies", desc: fmt.Sprintf("%d configured", len(st.Proxies()))},
		entry{title: "chains", desc: fmt.Sprintf("%d configured", len(st.Chains()))},
		entry{title: "routes", desc: fmt.Sprintf("%d tables", len(st.Tables()))},
		entry{title: "hosts", desc: fmt.Sprintf("%d entries", len(st.Hosts()))},
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := docStyle.GetFrameSize()
		m.sections.SetSize(msg.Width-h, msg.Height-v)
		if m.inSection {
			m.entries.SetSize(msg.Width-h, msg.Height-v)
		}
	case tea.KeyMsg:
		if m.filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.inSection {
				m.inSection = false
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if !m.inSection {
				if it, ok := m.sections.SelectedItem().(entry); ok {
					m.openSection(it.title)
				}
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	if m.inSection {
		m.entries, cmd = m.entries.Update(msg)
	} else {
		m.sections, cmd = m.sections.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if m.inSection {
		return docStyle.Render(m.entries.View())
	}
	return docStyle.Render(m.sections.View())
}

func (m *model) filtering() bool {
	if m.inSection {
		return m.entries.FilterState() == list.Filtering
	}
	return m.sections.FilterState() == list.Filtering
}

func (m *model) openSection(name string) {
	l := list.New(sectionEntries(m.st, name), list.NewDefaultDelegate(), 0, 0)
	l.Title = name
	l.SetShowStatusBar(false)
	h, v := docStyle.GetFrameSize()
	l.SetSize(m.width-h, m.height-v)
	m.entries = l
	m.inSection = true
}

func sectionEntries(st *routeconf.Store, section string) []list.Item {
	var items []list.Item
	switch section {
	case "servers":
		for i, conn := range st.Servers() {
			items = append(items, entry{title: fmt.Sprintf("%d", i), desc: conn})
		}
	case "proxies":
		proxies := st.Proxies()
		for _, name := range sortedKeys(proxies) {
			p := proxies[name]
			desc := p.Connstring
			if p.User != "" {
				desc += " user=" + p.User
			}
			items = append(items, entry{title: name, desc: desc})
		}
	case "chains":
		chains := st.Chains()
		for _, name := range sortedKeys(chains) {
			c := chains[name]
			items = append(items, entry{title: name, desc: strings.Join(c.Proxies, " -> ")})
		}
	case "routes":
		for _, name := range st.Tables() {
			t, _ := st.Table(name)
			items = append(items, entry{
				title: name,
				desc:  fmt.Sprintf("default=%s blocks=%d", t.Default, len(t.Blocks)),
			})
			for i, b := range t.Blocks {
				items = append(items, entry{
					title: fmt.Sprintf("%s[%d] -> %s", name, i, b.Route),
					desc:  blockSummary(b),
				})
			}
		}
	case "hosts":
		hosts := st.Hosts()
		for _, name := range sortedKeys(hosts) {
			items = append(items, entry{title: name, desc: hosts[name]})
		}
	}
	if len(items) == 0 {
		items = append(items, entry{title: "(none)", desc: ""})
	}
	return items
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func blockSummary(b routeconf.Block) string {
	rule := "true"
	if b.Rules != nil {
		if data, err := ruleexpr.Marshal(b.Rules); err == nil {
			rule = string(data)
		}
	}
	parts := []string{rule}
	if b.Comment != "" {
		parts = append(parts, "# "+b.Comment)
	}
	if b.Disable {
		parts = append(parts, "(disabled)")
	}
	return strings.Join(parts, "  ")
}
