package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"backoffice/internal/api"
)

// fakeFetcher scripts the two client calls the cascade may make.
type fakeFetcher struct {
	getRecord *api.Customer
	getErr    error
	getCalls  int

	listPage   *api.CustomerPage
	listErr    error
	listCalls  int
	lastSearch string
}

func (f *fakeFetcher) Get(_ context.Context, _ int64) (*api.Customer, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getRecord, nil
}

func (f *fakeFetcher) List(_ context.Context, opts api.ListOptions) (*api.CustomerPage, error) {
	f.listCalls++
	f.lastSearch = opts.Search
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listPage, nil
}

func customer(id int64, name string) api.Customer {
	return api.Customer{ID: id, Name: name, Email: name + "@example.com", IsActive: true}
}

func TestReconcileRefetchWins(t *testing.T) {
	server := customer(7, "Ada Server")
	fetcher := &fakeFetcher{getRecord: &server}

	result := Reconcile(context.Background(), fetcher, customer(7, "Ada Form"), "")

	if result.Source != SourceRefetch {
		t.Errorf("source = %v, want %v", result.Source, SourceRefetch)
	}
	if result.Record == nil || result.Record.Name != "Ada Server" {
		t.Errorf("record = %+v, want the refetched server copy", result.Record)
	}
	if result.Page != nil {
		t.Error("refetch result should not carry a page")
	}
	if fetcher.listCalls != 0 {
		t.Errorf("list called %d times, want 0 when refetch succeeds", fetcher.listCalls)
	}
}

func TestReconcileFallsBackToListRefresh(t *testing.T) {
	page := &api.CustomerPage{
		Count:   2,
		Results: []api.Customer{customer(1, "Ada"), customer(7, "Grace")},
	}
	fetcher := &fakeFetcher{getErr: errors.New("gone"), listPage: page}

	result := Reconcile(context.Background(), fetcher, customer(7, "Grace"), "gra")

	if result.Source != SourceRefresh {
		t.Errorf("source = %v, want %v", result.Source, SourceRefresh)
	}
	if result.Page != page {
		t.Errorf("page = %+v, want the refreshed page", result.Page)
	}
	if fetcher.lastSearch != "gra" {
		t.Errorf("refresh search = %q, want the active filter %q", fetcher.lastSearch, "gra")
	}
}

func TestReconcileFallsBackToFormData(t *testing.T) {
	fetcher := &fakeFetcher{getErr: errors.New("down"), listErr: errors.New("down")}
	submitted := customer(7, "Grace Offline")

	result := Reconcile(context.Background(), fetcher, submitted, "")

	if result.Source != SourceForm {
		t.Errorf("source = %v, want %v", result.Source, SourceForm)
	}
	if result.Record == nil || result.Record.Name != "Grace Offline" {
		t.Errorf("record = %+v, want the submitted form data", result.Record)
	}
	if fetcher.getCalls != 1 || fetcher.listCalls != 1 {
		t.Errorf("calls = %d get / %d list, want both strategies tried once",
			fetcher.getCalls, fetcher.listCalls)
	}
}

func TestReconcileNewCustomerSkipsBackend(t *testing.T) {
	fetcher := &fakeFetcher{getErr: errors.New("must not be called")}
	submitted := customer(0, "Brand New")

	result := Reconcile(context.Background(), fetcher, submitted, "")

	if result.Source != SourceForm {
		t.Errorf("source = %v, want %v", result.Source, SourceForm)
	}
	if result.Record == nil || !result.Record.IsNew() {
		t.Errorf("record = %+v, want the id-less form data", result.Record)
	}
	if fetcher.getCalls != 0 || fetcher.listCalls != 0 {
		t.Errorf("calls = %d get / %d list, want no backend traffic for a new record",
			fetcher.getCalls, fetcher.listCalls)
	}
}

func TestApplyReconcileClearsStaleError(t *testing.T) {
	m := NewListModel(nil)
	m.setPage(&api.CustomerPage{Count: 1, Results: []api.Customer{customer(1, "Ada")}})
	m.errMsg = "Cannot reach server"

	updated := customer(1, "Ada Lovelace")
	m.reconciling = true
	m.applyReconcile(ReconcileResult{Source: SourceRefetch, Record: &updated})

	if m.errMsg != "" {
		t.Errorf("errMsg = %q, a landed reconcile must clear an earlier fetch error", m.errMsg)
	}
}

func TestApplyReconcileReplacesInPlace(t *testing.T) {
	m := NewListModel(nil)
	a := customer(1, "Ada")
	b := customer(2, "Grace")
	m.setPage(&api.CustomerPage{Count: 2, Results: []api.Customer{a, b}})

	updated := b
	updated.Name = "Grace Hopper"
	updated.TotalSpent = decimal.RequireFromString("120.50")
	m.reconciling = true
	m.applyReconcile(ReconcileResult{Source: SourceRefetch, Record: &updated})

	if m.reconciling {
		t.Error("reconciling flag should clear once the result lands")
	}
	if len(m.customers) != 2 {
		t.Fatalf("len(customers) = %d, want 2", len(m.customers))
	}
	if m.customers[0].Name != "Ada" {
		t.Errorf("customers[0] = %q, untouched entries must keep their position", m.customers[0].Name)
	}
	if m.customers[1].Name != "Grace Hopper" {
		t.Errorf("customers[1] = %q, want the updated copy in place", m.customers[1].Name)
	}
}

func TestApplyReconcilePrependsNewRecord(t *testing.T) {
	m := NewListModel(nil)
	m.setPage(&api.CustomerPage{Count: 1, Results: []api.Customer{customer(1, "Ada")}})

	fresh := customer(0, "Brand New")
	m.applyReconcile(ReconcileResult{Source: SourceForm, Record: &fresh})

	if len(m.customers) != 2 {
		t.Fatalf("len(customers) = %d, want 2", len(m.customers))
	}
	if m.customers[0].Name != "Brand New" {
		t.Errorf("customers[0] = %q, new records go to the top", m.customers[0].Name)
	}
}

func TestApplyReconcilePageReplacesState(t *testing.T) {
	m := NewListModel(nil)
	m.setPage(&api.CustomerPage{Count: 1, Results: []api.Customer{customer(1, "Ada")}})

	next := "/customers/?page=2"
	page := &api.CustomerPage{
		Count:   25,
		Next:    &next,
		Results: []api.Customer{customer(2, "Grace"), customer(3, "Linus")},
	}
	m.applyReconcile(ReconcileResult{Source: SourceRefresh, Page: page})

	if m.count != 25 {
		t.Errorf("count = %d, want 25", m.count)
	}
	if m.next == nil || *m.next != next {
		t.Errorf("next = %v, want %q", m.next, next)
	}
	if len(m.customers) != 2 || m.customers[0].Name != "Grace" {
		t.Errorf("customers = %+v, want the refreshed page contents", m.customers)
	}
}
