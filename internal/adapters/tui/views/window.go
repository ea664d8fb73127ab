package views

// ListWindow tracks a cursor over a list and the slice of rows that fits on
// screen. The window scrolls only as far as needed to keep the cursor visible.
type ListWindow struct {
	height int
	offset int
	cursor int
	total  int
}

// NewListWindow creates a window showing height rows
func NewListWindow(height int) *ListWindow {
	w := &ListWindow{}
	w.SetHeight(height)
	return w
}

// SetHeight changes how many rows are visible
func (w *ListWindow) SetHeight(height int) {
	w.height = max(height, 1)
	w.follow()
}

// SetTotal sets the list length, clamping the cursor into range
func (w *ListWindow) SetTotal(total int) {
	w.total = max(total, 0)
	w.cursor = min(w.cursor, max(w.total-1, 0))
	w.follow()
}

// Cursor returns the absolute cursor index
func (w *ListWindow) Cursor() int {
	return w.cursor
}

// Move shifts the cursor by delta rows, stopping at either end
func (w *ListWindow) Move(delta int) {
	w.cursor = min(max(w.cursor+delta, 0), max(w.total-1, 0))
	w.follow()
}

// PageDown moves the cursor one screen down
func (w *ListWindow) PageDown() {
	w.Move(w.height)
}

// PageUp moves the cursor one screen up
func (w *ListWindow) PageUp() {
	w.Move(-w.height)
}

// Top moves the cursor to the first row
func (w *ListWindow) Top() {
	w.Move(-w.total)
}

// Bottom moves the cursor to the last row
func (w *ListWindow) Bottom() {
	w.Move(w.total)
}

// Visible returns the half-open range of rows on screen
func (w *ListWindow) Visible() (start, end int) {
	return w.offset, min(w.offset+w.height, w.total)
}

func (w *ListWindow) follow() {
	if w.cursor < w.offset {
		w.offset = w.cursor
	}
	if w.cursor >= w.offset+w.height {
		w.offset = w.cursor - w.height + 1
	}
	// never leave empty rows below the end while earlier rows are hidden
	w.offset = max(min(w.offset, w.total-w.height), 0)
}
