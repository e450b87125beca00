package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"backoffice/internal/api"
)

// detailLoadedMsg delivers the outcome of the single-record fetch.
type detailLoadedMsg struct {
	record *api.Customer
	err    error
}

// detailEditMsg asks the app to open the form for the loaded customer.
type detailEditMsg struct {
	customer api.Customer
}

// detailBackMsg asks the app to return to the list.
type detailBackMsg struct{}

// detailKeyMap defines key bindings for the customer detail screen
type detailKeyMap struct {
	Edit  key.Binding
	Retry key.Binding
	Back  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k detailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Retry, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k detailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Edit, k.Retry, k.Back}}
}

func newDetailKeyMap() detailKeyMap {
	return detailKeyMap{
		Edit:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Retry: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Back:  key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
	}
}

// DetailModel is the customer detail screen. It holds only the customer
// identifier and fetches the authoritative record itself, so the detail view
// never shows a stale cached row.
type DetailModel struct {
	client CustomerAPI
	id     int64

	record  *api.Customer
	loading bool
	errMsg  string

	spinner spinner.Model
	help    help.Model
	keys    detailKeyMap

	width  int
	height int
}

// NewDetailModel creates the detail screen for the given customer id.
func NewDetailModel(client CustomerAPI, id int64) *DetailModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &DetailModel{
		client:  client,
		id:      id,
		spinner: s,
		help:    help.New(),
		keys:    newDetailKeyMap(),
		width:   MinTerminalWidth,
	}
}

// Init starts the record fetch.
func (m *DetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// fetch loads the record by identifier.
func (m *DetailModel) fetch() tea.Cmd {
	m.loading = true
	client := m.client
	id := m.id
	return func() tea.Msg {
		record, err := client.Get(context.Background(), id)
		return detailLoadedMsg{record: record, err: err}
	}
}

// Update handles messages for the detail screen.
func (m *DetailModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return cmd
		}
		return nil

	case detailLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = api.ShortMessage(msg.err)
			return nil
		}
		m.errMsg = ""
		m.record = msg.record
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return emit(detailBackMsg{})

		case key.Matches(msg, m.keys.Edit):
			if m.record != nil {
				return emit(detailEditMsg{customer: *m.record})
			}
			return nil

		case key.Matches(msg, m.keys.Retry):
			m.errMsg = ""
			return tea.Batch(m.fetch(), m.spinner.Tick)
		}
	}

	return nil
}

// View renders the detail screen.
func (m *DetailModel) View() string {
	var b strings.Builder

	b.WriteString(RenderHeader() + "\n")
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Customer #%d", m.id)) + "\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading record...\n")

	case m.errMsg != "":
		b.WriteString(RenderError(m.errMsg) + "\n")

	case m.record != nil:
		c := m.record
		active := "no"
		if c.IsActive {
			active = "yes"
		}
		var fields strings.Builder
		fields.WriteString(LabelStyle.Render("Name") + " " + c.DisplayName() + "\n")
		fields.WriteString(LabelStyle.Render("Email") + " " + c.Email + "\n")
		fields.WriteString(LabelStyle.Render("Phone") + " " + c.Phone + "\n")
		fields.WriteString(LabelStyle.Render("Company") + " " + c.Company + "\n")
		fields.WriteString(LabelStyle.Render("Source") + " " + c.Source + "\n")
		fields.WriteString(LabelStyle.Render("Orders") + " " + fmt.Sprintf("%d", c.TotalOrders) + "\n")
		fields.WriteString(LabelStyle.Render("Spent") + " " + c.TotalSpent.StringFixed(2) + "\n")
		fields.WriteString(LabelStyle.Render("Active") + " " + active)
		b.WriteString(BoxStyle.Render(fields.String()) + "\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}
