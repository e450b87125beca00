package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"backoffice/internal/api"
)

// customersLoadedMsg delivers the outcome of an async list fetch. seq ties
// the response to the fetch that produced it so a slow, stale response can
// never overwrite the result of a newer one.
type customersLoadedMsg struct {
	seq  int
	page *api.CustomerPage
	err  error
}

// listKeyMap defines key bindings for the customer list screen
type listKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Search   key.Binding
	Add      key.Binding
	Edit     key.Binding
	View     key.Binding
	Refresh  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Add, k.Edit, k.View, k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.View, k.Edit, k.Add},
		{k.Search, k.Refresh, k.NextPage, k.PrevPage, k.Quit},
	}
}

func newListKeyMap() listKeyMap {
	return listKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		View:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		NextPage: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ListModel is the customer list screen: a searchable table over the current
// page of customers with cursor-based pagination.
//
// The slice of customers it holds is a cache, not a source of truth; every
// piece of state here is reconstructible from a single refetch.
type ListModel struct {
	client CustomerAPI

	table     table.Model
	search    textinput.Model
	searching bool

	customers []api.Customer
	count     int
	next      *string
	previous  *string

	loading     bool
	reconciling bool
	errMsg      string
	fetchSeq    int

	spinner spinner.Model
	help    help.Model
	keys    listKeyMap

	width  int
	height int
}

// NewListModel creates the customer list screen.
func NewListModel(client CustomerAPI) *ListModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	search := textinput.New()
	search.Placeholder = "name, email, or company"
	search.Prompt = "/ "
	search.CharLimit = 120
	search.Width = 40

	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Email", Width: 28},
		{Title: "Company", Width: 18},
		{Title: "Orders", Width: 7},
		{Title: "Spent", Width: 12},
		{Title: "Active", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).Foreground(PrimaryColor).BorderForeground(BorderColor)
	ts.Selected = ts.Selected.Foreground(HighlightColor).Bold(true)
	t.SetStyles(ts)

	return &ListModel{
		client:  client,
		table:   t,
		search:  search,
		spinner: s,
		help:    help.New(),
		keys:    newListKeyMap(),
		width:   MinTerminalWidth,
	}
}

// Init starts the spinner and kicks off the initial fetch.
func (m *ListModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchFirstPage())
}

// SearchTerm returns the current search filter.
func (m *ListModel) SearchTerm() string {
	return m.search.Value()
}

// Selected returns the customer under the cursor, or nil when the list is
// empty.
func (m *ListModel) Selected() *api.Customer {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.customers) {
		return nil
	}
	customer := m.customers[idx]
	return &customer
}

// fetchFirstPage issues a first-page list query using the current search
// term. Any in-flight fetch is superseded: its response will arrive with an
// older sequence number and be dropped.
func (m *ListModel) fetchFirstPage() tea.Cmd {
	m.loading = true
	m.fetchSeq++
	seq := m.fetchSeq
	search := m.search.Value()
	client := m.client
	return func() tea.Msg {
		page, err := client.List(context.Background(), api.ListOptions{Search: search})
		return customersLoadedMsg{seq: seq, page: page, err: err}
	}
}

// fetchCursor fetches an exact cursor URL, bypassing the search term: the
// cursor already encodes the filter.
func (m *ListModel) fetchCursor(cursor string) tea.Cmd {
	m.loading = true
	m.fetchSeq++
	seq := m.fetchSeq
	client := m.client
	return func() tea.Msg {
		page, err := client.FetchPage(context.Background(), cursor)
		return customersLoadedMsg{seq: seq, page: page, err: err}
	}
}

// Refresh clears any error and refetches the first page for the current
// search term.
func (m *ListModel) Refresh() tea.Cmd {
	m.errMsg = ""
	return m.fetchFirstPage()
}

// Update handles messages for the list screen.
func (m *ListModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return nil

	case spinner.TickMsg:
		if m.loading || m.reconciling {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return cmd
		}
		return nil

	case customersLoadedMsg:
		if msg.seq != m.fetchSeq {
			// Stale response from a superseded fetch.
			return nil
		}
		m.loading = false
		if msg.err != nil {
			// Prior list state stays untouched.
			m.errMsg = api.ShortMessage(msg.err)
			return nil
		}
		m.errMsg = ""
		m.setPage(msg.page)
		return nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	return nil
}

// updateSearch handles keys while the search input is focused. Every change
// to the term refetches page one immediately; the sequence guard in
// customersLoadedMsg keeps rapid edits from racing each other.
func (m *ListModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		return tea.Batch(cmd, m.fetchFirstPage(), m.spinner.Tick)
	}
	return cmd
}

// updateBrowse handles keys in normal browse mode.
func (m *ListModel) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m.search.Focus()

	case key.Matches(msg, m.keys.Add):
		return emit(openFormMsg{})

	case key.Matches(msg, m.keys.Edit):
		if customer := m.Selected(); customer != nil {
			return emit(openFormMsg{customer: customer})
		}
		return nil

	case key.Matches(msg, m.keys.View):
		if customer := m.Selected(); customer != nil {
			return emit(openDetailMsg{id: customer.ID})
		}
		return nil

	case key.Matches(msg, m.keys.Refresh):
		return tea.Batch(m.Refresh(), m.spinner.Tick)

	case key.Matches(msg, m.keys.NextPage):
		if m.next != nil && *m.next != "" {
			return tea.Batch(m.fetchCursor(*m.next), m.spinner.Tick)
		}
		return nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.previous != nil && *m.previous != "" {
			return tea.Batch(m.fetchCursor(*m.previous), m.spinner.Tick)
		}
		return nil

	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// setPage replaces list and pagination state from a fetched page.
func (m *ListModel) setPage(page *api.CustomerPage) {
	m.customers = page.Results
	m.count = page.Count
	m.next = page.Next
	m.previous = page.Previous
	m.rebuildRows()
}

// applyReconcile merges a save-reconciliation result into the cached list.
func (m *ListModel) applyReconcile(result ReconcileResult) {
	m.reconciling = false
	m.errMsg = ""
	if result.Page != nil {
		m.setPage(result.Page)
		return
	}
	if result.Record == nil {
		return
	}
	if result.Record.IsNew() {
		// Brand-new record: prepend directly, no identifier to match on.
		m.customers = append([]api.Customer{*result.Record}, m.customers...)
	} else {
		m.customers = api.ReplaceOrPrepend(m.customers, *result.Record)
	}
	m.rebuildRows()
}

// rebuildRows regenerates table rows from the customer cache.
func (m *ListModel) rebuildRows() {
	rows := make([]table.Row, len(m.customers))
	for i, c := range m.customers {
		active := "no"
		if c.IsActive {
			active = "yes"
		}
		id := "—"
		if !c.IsNew() {
			id = strconv.FormatInt(c.ID, 10)
		}
		rows[i] = table.Row{
			id,
			c.DisplayName(),
			c.Email,
			c.Company,
			strconv.Itoa(c.TotalOrders),
			c.TotalSpent.StringFixed(2),
			active,
		}
	}
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// resize adjusts the table to the terminal dimensions.
func (m *ListModel) resize() {
	height := m.height - 10 // header, search, status, pager, help
	if height < 4 {
		height = 4
	}
	m.table.SetHeight(height)
	m.table.SetWidth(ContentWidth(m.width))
}

// View renders the list screen.
func (m *ListModel) View() string {
	var b strings.Builder

	b.WriteString(RenderHeader() + "\n")

	title := fmt.Sprintf("Customers (%d of %d)", len(m.customers), m.count)
	if m.loading || m.reconciling {
		title += " " + m.spinner.View()
	}
	b.WriteString(TitleStyle.Render(title) + "\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}

	b.WriteString(m.table.View() + "\n")

	switch {
	case m.errMsg != "":
		b.WriteString(RenderError(m.errMsg) + "\n")
	case len(m.customers) == 0 && !m.loading:
		b.WriteString(MutedStyle.Render("No customers found.") + "\n")
	}

	b.WriteString(m.renderPager() + "\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// renderPager renders the pagination footer. Controls are enabled only when
// the corresponding cursor exists.
func (m *ListModel) renderPager() string {
	prev := PagerDisabledStyle.Render("‹ prev")
	if m.previous != nil && *m.previous != "" {
		prev = PagerEnabledStyle.Render("‹ prev (p)")
	}
	next := PagerDisabledStyle.Render("next ›")
	if m.next != nil && *m.next != "" {
		next = PagerEnabledStyle.Render("(n) next ›")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, prev, MutedStyle.Render("  ·  "), next)
}

// emit wraps a message in a command.
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
