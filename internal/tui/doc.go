// Package tui implements the interactive customer browser.
//
// This package uses Bubble Tea and Lipgloss to provide a full-screen
// terminal application for browsing, searching, creating, and editing
// customer records served by the backoffice API.
//
// # Architecture
//
// The application is structured as one root model coordinating three views:
//
//   - AppModel: routes messages, owns navigation between views
//   - ListModel: searchable, paginated customer table (the home screen)
//   - FormModel: create/edit form over the customer fields
//   - DetailModel: read-only single-customer view
//
// Exactly one view is active at a time, tracked by ViewMode. The form and
// detail models exist only while their view is active; the list model lives
// for the whole session because it caches the current page, search term, and
// pagination cursors.
//
// # Data Flow
//
// All backend access goes through the CustomerAPI interface, satisfied by
// the api package's client. Fetches run as Bubble Tea commands off the UI
// goroutine and deliver results as messages. Each list fetch carries a
// sequence number; a response whose sequence no longer matches the latest
// fetch is discarded, so overlapping fetches (rapid search edits, refresh
// during paging) cannot interleave stale data into the table.
//
// # Save Reconciliation
//
// The form never talks to the backend. When it completes, the app runs a
// fallback cascade to bring the cached list back in sync with the server:
// refetch the saved record by id, then refetch the whole first page with the
// current search term, then fall back to applying the form's own data
// locally. The first step that succeeds wins; the final step cannot fail. A
// brand-new customer has no identifier to refetch by, so it is prepended to
// the cached page directly.
//
// # Live Refresh
//
// When enabled, the app subscribes to the server's websocket change feed and
// refetches the first page whenever another client creates or updates a
// customer. The feed is best-effort: if the subscription fails or closes,
// the application keeps working without it.
//
// # Logging Integration
//
// Logging is controlled via the BACKOFFICE_LOG_LEVEL environment variable.
// When unset, zap logging is silent so it cannot corrupt the alternate
// screen. Set BACKOFFICE_LOG_FILE to direct log output to a file while the
// TUI is running.
package tui
