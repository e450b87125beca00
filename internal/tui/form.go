package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"backoffice/internal/api"
)

// formSavedMsg reports a completed form: the assembled customer carries its
// identifier when editing and none when creating.
type formSavedMsg struct {
	customer api.Customer
}

// formCancelledMsg reports the form was dismissed without saving.
type formCancelledMsg struct{}

// Form field order. fieldActive is a toggle, everything before it is a text
// input.
const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldCompany
	fieldSource
	fieldActive
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Email", "Phone", "Company", "Source", "Active"}

// formKeyMap defines key bindings for the customer form screen
type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Save   key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Toggle, k.Save, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Toggle},
		{k.Save, k.Cancel},
	}
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle active")),
		Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// FormModel is the customer create/edit screen. It is a pure collaborator:
// it collects field values and reports the assembled customer through
// formSavedMsg; it never talks to the backend itself.
type FormModel struct {
	existing *api.Customer // nil when creating
	inputs   [fieldActive]textinput.Model
	active   bool
	focus    int

	help help.Model
	keys formKeyMap

	width  int
	height int
}

// NewFormModel creates the form screen. With a nil customer the form is in
// create mode; otherwise it edits the given customer in place.
func NewFormModel(customer *api.Customer) *FormModel {
	m := &FormModel{
		existing: customer,
		active:   true,
		help:     help.New(),
		keys:     newFormKeyMap(),
		width:    MinTerminalWidth,
	}

	placeholders := [fieldActive]string{"Jane Doe", "jane@example.com", "+254700000000", "Acme Ltd", "referral, web, ..."}
	for i := range m.inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.CharLimit = 200
		input.Width = 40
		m.inputs[i] = input
	}

	if customer != nil {
		m.inputs[fieldName].SetValue(customer.Name)
		m.inputs[fieldEmail].SetValue(customer.Email)
		m.inputs[fieldPhone].SetValue(customer.Phone)
		m.inputs[fieldCompany].SetValue(customer.Company)
		m.inputs[fieldSource].SetValue(customer.Source)
		m.active = customer.IsActive
	}

	m.inputs[fieldName].Focus()
	return m
}

// Init implements the screen contract.
func (m *FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Editing reports whether the form edits an existing customer.
func (m *FormModel) Editing() bool {
	return m.existing != nil
}

// Update handles messages for the form screen.
func (m *FormModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return emit(formCancelledMsg{})

		case key.Matches(msg, m.keys.Save):
			return emit(formSavedMsg{customer: m.assemble()})

		case key.Matches(msg, m.keys.Next):
			m.setFocus((m.focus + 1) % fieldCount)
			return nil

		case key.Matches(msg, m.keys.Prev):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return nil

		case key.Matches(msg, m.keys.Toggle) && m.focus == fieldActive:
			m.active = !m.active
			return nil
		}

		if m.focus < fieldActive {
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			return cmd
		}
		return nil
	}

	return nil
}

// setFocus moves input focus to the given field.
func (m *FormModel) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// assemble builds the outgoing customer from the form state. When editing,
// backend-owned fields (identifier, aggregates) carry over from the existing
// record so reconciliation has a complete row to fall back on.
func (m *FormModel) assemble() api.Customer {
	var customer api.Customer
	if m.existing != nil {
		customer = *m.existing
	}
	customer.Name = strings.TrimSpace(m.inputs[fieldName].Value())
	customer.Email = strings.TrimSpace(m.inputs[fieldEmail].Value())
	customer.Phone = strings.TrimSpace(m.inputs[fieldPhone].Value())
	customer.Company = strings.TrimSpace(m.inputs[fieldCompany].Value())
	customer.Source = strings.TrimSpace(m.inputs[fieldSource].Value())
	customer.IsActive = m.active
	return customer
}

// View renders the form screen.
func (m *FormModel) View() string {
	var b strings.Builder

	b.WriteString(RenderHeader() + "\n")
	title := "New Customer"
	if m.Editing() {
		title = "Edit Customer"
	}
	b.WriteString(TitleStyle.Render(title) + "\n")

	var fields strings.Builder
	for i := 0; i < fieldActive; i++ {
		label := fieldLabels[i]
		if i == m.focus {
			label = FocusedInputStyle.Render(label)
		} else {
			label = LabelStyle.Render(label)
		}
		fields.WriteString(label + " " + m.inputs[i].View() + "\n")
	}

	activeLabel := fieldLabels[fieldActive]
	if m.focus == fieldActive {
		activeLabel = FocusedInputStyle.Render(activeLabel)
	} else {
		activeLabel = LabelStyle.Render(activeLabel)
	}
	check := "[ ]"
	if m.active {
		check = "[x]"
	}
	fields.WriteString(activeLabel + " " + check)

	b.WriteString(BoxStyle.Render(fields.String()) + "\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
