package state

// SelectNext moves the cursor down one item. Without wrap it stops at the
// last item; with wrap it continues at the first. Reports whether the cursor
// moved.
func (l *Level) SelectNext() bool {
	n := len(l.Items)
	old := l.Cursor
	if !l.Wrap {
		if l.Cursor+1 < n {
			l.Cursor++
		}
		return old != l.Cursor
	}
	if n == 0 {
		return false
	}
	if l.Cursor+1 >= n {
		l.Cursor = 0
	} else {
		l.Cursor++
	}
	return old != l.Cursor
}

// SelectPrevious mirrors SelectNext.
func (l *Level) SelectPrevious() bool {
	n := len(l.Items)
	old := l.Cursor
	if !l.Wrap {
		if l.Cursor > 0 {
			l.Cursor--
		}
		return old != l.Cursor
	}
	if n == 0 {
		return false
	}
	if l.Cursor <= 0 {
		l.Cursor = n - 1
	} else {
		l.Cursor--
	}
	return old != l.Cursor
}

// SelectIndex jumps to an absolute position. An index outside the list
// clears the selection.
func (l *Level) SelectIndex(i int) bool {
	old := l.Cursor
	if i < 0 || i >= len(l.Items) {
		l.Cursor = -1
	} else {
		l.Cursor = i
	}
	return old != l.Cursor
}

// MoveCursorPageUp moves the cursor up by the given page size.
func (l *Level) MoveCursorPageUp(maxVisible int) bool {
	return l.moveCursorBy(-l.pageSize(maxVisible))
}

// MoveCursorPageDown moves the cursor down by the given page size.
func (l *Level) MoveCursorPageDown(maxVisible int) bool {
	return l.moveCursorBy(l.pageSize(maxVisible))
}

func (l *Level) moveCursorBy(delta int) bool {
	if len(l.Items) == 0 {
		return false
	}
	old := l.Cursor
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	l.Cursor += delta
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor >= len(l.Items) {
		l.Cursor = len(l.Items) - 1
	}
	return l.Cursor != old
}

func (l *Level) pageSize(maxVisible int) int {
	total := len(l.Items)
	if total == 0 {
		return 0
	}
	size := maxVisible
	if size <= 0 || size > total {
		size = total
	}
	return size
}

// EnsureCursorVisible adjusts the viewport offset so the cursor stays visible.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	if len(l.Items) == 0 || maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := len(l.Items) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if l.ViewportOffset > maxOffset {
		l.ViewportOffset = maxOffset
	}
	if l.ViewportOffset < 0 {
		l.ViewportOffset = 0
	}
	if l.Cursor < 0 {
		return
	}
	if l.Cursor < l.ViewportOffset {
		l.ViewportOffset = l.Cursor
	}
	if upper := l.ViewportOffset + maxVisible - 1; l.Cursor > upper {
		l.ViewportOffset = l.Cursor - maxVisible + 1
		if l.ViewportOffset > maxOffset {
			l.ViewportOffset = maxOffset
		}
	}
}
