package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"backoffice/internal/api"
)

func TestDetailLoadsRecord(t *testing.T) {
	grace := customer(7, "Grace")
	client := &fakeFetcher{getRecord: &grace}
	m := NewDetailModel(detailClient{client}, 7)

	m.Update(run(t, m.fetch()))

	if m.loading {
		t.Error("loading should clear once the record lands")
	}
	view := m.View()
	if !strings.Contains(view, "Grace") || !strings.Contains(view, "Customer #7") {
		t.Errorf("view should render the record, got:\n%s", view)
	}
}

func TestDetailErrorAndRetry(t *testing.T) {
	client := &fakeFetcher{getErr: errors.New("connection refused")}
	m := NewDetailModel(detailClient{client}, 7)

	m.Update(run(t, m.fetch()))
	if m.errMsg == "" {
		t.Fatal("expected an error message after a failed fetch")
	}

	grace := customer(7, "Grace")
	client.getErr = nil
	client.getRecord = &grace

	for _, msg := range collectDetailMsgs(t, m.Update(keyMsg("r"))) {
		m.Update(msg)
	}
	if m.errMsg != "" {
		t.Errorf("errMsg = %q, retry should clear the error", m.errMsg)
	}
	if m.record == nil || m.record.Name != "Grace" {
		t.Errorf("record = %+v, want the refetched customer", m.record)
	}
}

func TestDetailEditEmitsLoadedRecord(t *testing.T) {
	grace := customer(7, "Grace")
	client := &fakeFetcher{getRecord: &grace}
	m := NewDetailModel(detailClient{client}, 7)
	m.Update(run(t, m.fetch()))

	msg := run(t, m.Update(keyMsg("e")))
	edit, ok := msg.(detailEditMsg)
	if !ok {
		t.Fatalf("got %T, want detailEditMsg", msg)
	}
	if edit.customer.ID != 7 {
		t.Errorf("customer.ID = %d, want 7", edit.customer.ID)
	}
}

func TestDetailEditIgnoredBeforeLoad(t *testing.T) {
	client := &fakeFetcher{getErr: errors.New("down")}
	m := NewDetailModel(detailClient{client}, 7)
	m.Update(run(t, m.fetch()))

	if cmd := m.Update(keyMsg("e")); cmd != nil {
		t.Error("edit must be a no-op while no record is loaded")
	}
}

func TestDetailBack(t *testing.T) {
	m := NewDetailModel(nil, 7)
	msg := run(t, m.Update(keyMsg("esc")))
	if _, ok := msg.(detailBackMsg); !ok {
		t.Fatalf("got %T, want detailBackMsg", msg)
	}
}

// detailClient adapts fakeFetcher to the full client surface.
type detailClient struct {
	*fakeFetcher
}

func (detailClient) FetchPage(_ context.Context, _ string) (*api.CustomerPage, error) {
	return nil, errors.New("not scripted")
}

// collectDetailMsgs runs a command, flattening batches, and returns the
// record-fetch messages it produced.
func collectDetailMsgs(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case detailLoadedMsg:
			out = append(out, msg)
		}
	}
	return out
}
