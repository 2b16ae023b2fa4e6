package approval

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/token-launcher/internal/ui/style"
)

const (
	reasonRejected = "User rejected the request"
	reasonClosed   = "approval prompt closed"
)

// Decision is the prompt's final answer.
type Decision struct {
	Approved bool
	Reason   string
}

// Model is the bubbletea model of the signing prompt.
type Model struct {
	title    string
	summary  Summary
	keys     KeyMap
	styles   style.Styles
	decision *Decision
}

func NewModel(title string, summary Summary) Model {
	return Model{
		title:   title,
		summary: summary,
		keys:    DefaultKeyMap(),
		styles:  style.DefaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.decision != nil {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Approve):
		m.decision = &Decision{Approved: true}
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Reject):
		m.decision = &Decision{Reason: reasonRejected}
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Quit):
		m.decision = &Decision{Reason: reasonClosed}
		return m, tea.Quit
	}
	return m, nil
}

// Decision returns the answer, or a rejection when the prompt ended without one.
func (m Model) Decision() Decision {
	if m.decision == nil {
		return Decision{Reason: reasonClosed}
	}
	return *m.decision
}

func (m Model) View() string {
	if m.decision != nil {
		return ""
	}
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render(m.title))
	b.WriteString("\n\n")
	row := func(label, value string) {
		b.WriteString(s.Label.Render(label))
		b.WriteString(s.Value.Render(value))
		b.WriteString("\n")
	}
	row("Payer", m.summary.Payer.String())
	row("Signers", fmt.Sprintf("%d", m.summary.Signers))
	row("Blockhash", m.summary.Blockhash.String())
	b.WriteString(s.Label.Render("Service fee"))
	b.WriteString(s.Fee.Render(m.summary.FeeAmount().String() + " SOL"))
	b.WriteString("\n\n")

	for i, name := range m.summary.Instructions {
		b.WriteString(s.Value.Render(fmt.Sprintf("  %d. %s", i+1, name)))
		b.WriteString("\n")
	}

	help := make([]string, 0, 3)
	for _, kb := range m.keys.ShortHelp() {
		h := kb.Help()
		help = append(help, s.Key.Render(h.Key)+" "+s.Help.Render(h.Desc))
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(help, s.Help.Render(" • ")))

	return s.Box.Render(b.String()) + "\n"
}
