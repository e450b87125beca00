package tui

import (
	"context"

	"go.uber.org/zap"

	"backoffice/internal/api"
	"backoffice/internal/logging"
)

// Fetcher is the subset of the API client that save reconciliation needs.
type Fetcher interface {
	Get(ctx context.Context, id int64) (*api.Customer, error)
	List(ctx context.Context, opts api.ListOptions) (*api.CustomerPage, error)
}

// ReconcileSource identifies which strategy produced the reconciled data.
type ReconcileSource int

const (
	// SourceRefetch means the authoritative record was refetched by id.
	SourceRefetch ReconcileSource = iota
	// SourceRefresh means the whole first page was refetched instead.
	SourceRefresh
	// SourceForm means the form's own data was applied locally.
	SourceForm
)

// String returns a human-readable name for the source.
func (s ReconcileSource) String() string {
	switch s {
	case SourceRefetch:
		return "refetched record"
	case SourceRefresh:
		return "refreshed list"
	case SourceForm:
		return "form data"
	default:
		return "unknown"
	}
}

// ReconcileResult carries the data to merge into the cached list after a
// save. Exactly one of Record and Page is set: Record is merged by
// replace-or-prepend, Page replaces the list and pagination state wholesale.
type ReconcileResult struct {
	Source ReconcileSource
	Record *api.Customer
	Page   *api.CustomerPage
}

// reconcileStrategy is one step of the fallback chain.
type reconcileStrategy struct {
	name string
	run  func(ctx context.Context) (ReconcileResult, error)
}

// Reconcile merges a just-saved customer into the cached list state.
//
// For an identified (existing) customer it runs an ordered chain of
// strategies, first success wins:
//
//  1. refetch the authoritative record by id
//  2. refresh the whole first page (using the current search term)
//  3. apply the form's own, possibly stale, data locally
//
// The chain is best-effort, not a transaction: each step is attempted
// independently and only the final result reaches the user. Step 3 cannot
// fail, so Reconcile always returns a usable result.
//
// A new customer (no identifier yet) skips the chain entirely; its form data
// is returned for direct prepending, with no backend round trip.
func Reconcile(ctx context.Context, fetcher Fetcher, submitted api.Customer, search string) ReconcileResult {
	if submitted.IsNew() {
		return ReconcileResult{Source: SourceForm, Record: &submitted}
	}

	strategies := []reconcileStrategy{
		{
			name: "refetch record",
			run: func(ctx context.Context) (ReconcileResult, error) {
				record, err := fetcher.Get(ctx, submitted.ID)
				if err != nil {
					return ReconcileResult{}, err
				}
				return ReconcileResult{Source: SourceRefetch, Record: record}, nil
			},
		},
		{
			name: "refresh list",
			run: func(ctx context.Context) (ReconcileResult, error) {
				page, err := fetcher.List(ctx, api.ListOptions{Search: search})
				if err != nil {
					return ReconcileResult{}, err
				}
				return ReconcileResult{Source: SourceRefresh, Page: page}, nil
			},
		},
		{
			name: "apply form data",
			run: func(ctx context.Context) (ReconcileResult, error) {
				return ReconcileResult{Source: SourceForm, Record: &submitted}, nil
			},
		},
	}

	var result ReconcileResult
	for _, strategy := range strategies {
		res, err := strategy.run(ctx)
		if err != nil {
			// Never surfaced to the user; the next strategy takes over.
			logging.Warn("Save reconciliation step failed",
				zap.String("strategy", strategy.name),
				zap.Int64("customer_id", submitted.ID),
				zap.Error(err),
			)
			continue
		}
		result = res
		break
	}

	logging.Debug("Save reconciled",
		zap.Int64("customer_id", submitted.ID),
		zap.String("source", result.Source.String()),
	)
	return result
}
