package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"backoffice/internal/api"
	"backoffice/internal/logging"
)

// ViewMode is the top-level view state. Exactly one view is active at a time
// and every switch over ViewMode in this package enumerates all three.
type ViewMode int

const (
	ModeList ViewMode = iota
	ModeForm
	ModeDetail
)

// String returns a human-readable name for the mode.
func (m ViewMode) String() string {
	switch m {
	case ModeList:
		return "List"
	case ModeForm:
		return "Form"
	case ModeDetail:
		return "Detail"
	default:
		return "Unknown"
	}
}

// CustomerAPI is the read-only client surface the screens depend on.
// *api.Client satisfies it; tests substitute fakes.
type CustomerAPI interface {
	List(ctx context.Context, opts api.ListOptions) (*api.CustomerPage, error)
	FetchPage(ctx context.Context, cursor string) (*api.CustomerPage, error)
	Get(ctx context.Context, id int64) (*api.Customer, error)
}

// CustomerWriter is the mutation surface used to push a completed form to
// the backend. The screens never write; only the root model does, and only
// when the client supports it.
type CustomerWriter interface {
	Create(ctx context.Context, customer api.Customer) (*api.Customer, error)
	Update(ctx context.Context, customer api.Customer) (*api.Customer, error)
}

// openFormMsg switches to the form view. A nil customer means create.
type openFormMsg struct {
	customer *api.Customer
}

// openDetailMsg switches to the detail view for a customer id.
type openDetailMsg struct {
	id int64
}

// reconcileDoneMsg delivers the outcome of the save-reconciliation cascade.
type reconcileDoneMsg struct {
	result ReconcileResult
}

// watchStartedMsg delivers the change-feed subscription attempt.
type watchStartedMsg struct {
	watcher *api.Watcher
	err     error
}

// changeFeedMsg delivers one event from the change feed. ok is false when
// the feed has closed.
type changeFeedMsg struct {
	event api.ChangeEvent
	ok    bool
}

// AppModel is the root model coordinating the three views. The view payloads
// mirror the mode: Form is non-nil only in ModeForm, Detail only in
// ModeDetail, and the list screen always exists (it is the state being
// cached).
type AppModel struct {
	Mode   ViewMode
	List   *ListModel
	Form   *FormModel
	Detail *DetailModel

	client CustomerAPI
	writer CustomerWriter // nil when the client is read-only

	// liveClient, when set, enables refresh-on-change via the websocket
	// feed. Kept separate from client because Watch needs the concrete
	// transport.
	liveClient *api.Client
	watcher    *api.Watcher

	width  int
	height int
}

// NewAppModel creates the root application model.
func NewAppModel(client CustomerAPI) *AppModel {
	a := &AppModel{
		Mode:   ModeList,
		List:   NewListModel(client),
		client: client,
	}
	if writer, ok := client.(CustomerWriter); ok {
		a.writer = writer
	}
	return a
}

// EnableLiveRefresh turns on refresh-on-change through the server's change
// feed. Must be called before the program starts.
func (a *AppModel) EnableLiveRefresh(client *api.Client) {
	a.liveClient = client
}

// Init implements tea.Model.
func (a *AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{a.List.Init()}
	if a.liveClient != nil {
		cmds = append(cmds, a.startWatch())
	}
	return tea.Batch(cmds...)
}

// startWatch attempts the change-feed subscription.
func (a *AppModel) startWatch() tea.Cmd {
	client := a.liveClient
	return func() tea.Msg {
		watcher, err := client.Watch(context.Background())
		return watchStartedMsg{watcher: watcher, err: err}
	}
}

// awaitChange waits for the next change-feed event.
func awaitChange(watcher *api.Watcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-watcher.Events
		return changeFeedMsg{event: event, ok: ok}
	}
}

// Update implements tea.Model.
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// All screens track dimensions; forward regardless of mode.
		a.List.Update(msg)
		if a.Form != nil {
			a.Form.Update(msg)
		}
		if a.Detail != nil {
			a.Detail.Update(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case openFormMsg:
		a.Mode = ModeForm
		a.Form = NewFormModel(msg.customer)
		a.Detail = nil
		return a, a.Form.Init()

	case openDetailMsg:
		a.Mode = ModeDetail
		a.Detail = NewDetailModel(a.client, msg.id)
		a.Form = nil
		return a, a.Detail.Init()

	case detailEditMsg:
		customer := msg.customer
		a.Mode = ModeForm
		a.Form = NewFormModel(&customer)
		a.Detail = nil
		return a, a.Form.Init()

	case formCancelledMsg, detailBackMsg:
		a.backToList()
		return a, nil

	case formSavedMsg:
		return a, a.reconcile(msg.customer)

	case reconcileDoneMsg:
		a.List.applyReconcile(msg.result)
		return a, nil

	case customersLoadedMsg:
		// List fetches complete in the background even when another view
		// is on screen.
		return a, a.List.Update(msg)

	case watchStartedMsg:
		if msg.err != nil {
			// Feed is best-effort; the UI works without it.
			logging.Warn("Change feed subscription failed", zap.Error(msg.err))
			return a, nil
		}
		a.watcher = msg.watcher
		return a, awaitChange(a.watcher)

	case changeFeedMsg:
		if !msg.ok {
			a.watcher = nil
			return a, nil
		}
		cmds := []tea.Cmd{awaitChange(a.watcher)}
		if a.Mode == ModeList {
			cmds = append(cmds, a.List.Refresh(), a.List.spinner.Tick)
		}
		return a, tea.Batch(cmds...)
	}

	return a, a.currentScreenUpdate(msg)
}

// reconcile leaves the form, persists the result, and runs the fallback
// cascade off the UI goroutine. The list shows its spinner until the result
// lands. Save failures are absorbed: the cascade reconciles against
// whatever state the backend actually has.
func (a *AppModel) reconcile(submitted api.Customer) tea.Cmd {
	a.backToList()
	a.List.reconciling = true

	client := a.client
	writer := a.writer
	search := a.List.SearchTerm()
	return tea.Batch(a.List.spinner.Tick, func() tea.Msg {
		ctx := context.Background()
		if writer != nil {
			persist(ctx, writer, submitted)
		}
		return reconcileDoneMsg{result: Reconcile(ctx, client, submitted, search)}
	})
}

// persist pushes the form result to the backend. Errors are logged, never
// surfaced: the reconciliation cascade decides what the user ends up seeing.
func persist(ctx context.Context, writer CustomerWriter, submitted api.Customer) {
	var err error
	if submitted.IsNew() {
		_, err = writer.Create(ctx, submitted)
	} else {
		_, err = writer.Update(ctx, submitted)
	}
	if err != nil {
		logging.Warn("Customer save failed",
			zap.Int64("customer_id", submitted.ID),
			zap.Error(err),
		)
	}
}

// backToList returns to the list view and clears any selected customer.
func (a *AppModel) backToList() {
	a.Mode = ModeList
	a.Form = nil
	a.Detail = nil
}

// currentScreenUpdate routes a message to the active view.
func (a *AppModel) currentScreenUpdate(msg tea.Msg) tea.Cmd {
	switch a.Mode {
	case ModeList:
		return a.List.Update(msg)
	case ModeForm:
		if a.Form != nil {
			return a.Form.Update(msg)
		}
		return nil
	case ModeDetail:
		if a.Detail != nil {
			return a.Detail.Update(msg)
		}
		return nil
	default:
		return nil
	}
}

// View implements tea.Model.
func (a *AppModel) View() string {
	switch a.Mode {
	case ModeList:
		return a.List.View()
	case ModeForm:
		if a.Form != nil {
			return a.Form.View()
		}
		return a.List.View()
	case ModeDetail:
		if a.Detail != nil {
			return a.Detail.View()
		}
		return a.List.View()
	default:
		return fmt.Sprintf("unknown view mode %d", a.Mode)
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(a *AppModel) error {
	program := tea.NewProgram(a, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
