package views

// ViewUpdated is posted from the dashboard goroutine after view state
// changed, so the UI goroutine redraws.
type ViewUpdated struct{}

// ToastExpired is posted when the toast with ID has been shown long enough.
type ToastExpired struct {
	ID uint64
}
