package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// ItemListModel shows the live result items of every profile.
type ItemListModel struct {
	theme themes.Theme
	items []Item
	// pending holds items of a newer run whose id is still busy in items.
	pending map[model.ItemID]Item
	cursor int
	offset int
	width  int
	height int
}

// NewItemListModel creates an empty list.
func NewItemListModel(theme themes.Theme) ItemListModel {
	return ItemListModel{theme: theme, pending: make(map[model.ItemID]Item), width: 80, height: 10}
}

// Len is the number of live items.
func (m ItemListModel) Len() int {
	return len(m.items)
}

// Items returns a copy of the live items.
func (m ItemListModel) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Selected returns the item under the cursor.
func (m ItemListModel) Selected() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return Item{}, false
	}
	return m.items[m.cursor], true
}

// Find returns the item with id.
func (m ItemListModel) Find(id model.ItemID) (Item, bool) {
	if i := m.index(id); i >= 0 {
		return m.items[i], true
	}
	return Item{}, false
}

// ReplaceProfile swaps a profile's items for fresh ones. An item with an
// action in flight keeps its row; a fresh item with the same id waits until
// that action settles.
func (m *ItemListModel) ReplaceProfile(profile model.ProfileID, fresh []Item) {
	busy := make(map[model.ItemID]bool)
	kept := m.items[:0:0]
	for _, item := range m.items {
		if item.Profile != profile || item.Busy {
			kept = append(kept, item)
			if item.Busy {
				busy[item.ID] = true
			}
		}
	}

	pending := make(map[model.ItemID]Item, len(m.pending))
	for id, item := range m.pending {
		if item.Profile != profile {
			pending[id] = item
		}
	}
	for _, item := range fresh {
		if busy[item.ID] {
			pending[item.ID] = item
			continue
		}
		kept = append(kept, item)
	}

	m.items = kept
	m.pending = pending
	m.clamp()
}

// Settle ends the action on id. lastErr is empty when it succeeded. A newer
// item waiting on id takes over the row either way; otherwise a succeeded item
// is dropped and a failed one becomes actionable again.
func (m *ItemListModel) Settle(id model.ItemID, lastErr string) {
	newer, waiting := m.pending[id]
	delete(m.pending, id)

	i := m.index(id)
	switch {
	case i < 0 && waiting:
		m.items = append(m.items, newer)
	case i < 0:
		return
	case waiting:
		newer.LastError = lastErr
		m.items[i] = newer
	case lastErr == "":
		m.items = append(m.items[:i], m.items[i+1:]...)
	default:
		m.items[i].Busy = false
		m.items[i].LastError = lastErr
	}
	m.clamp()
}

// Remove drops the item with id. It reports whether the item existed.
func (m *ItemListModel) Remove(id model.ItemID) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	m.clamp()
	return true
}

// Set applies fn to the item with id.
func (m *ItemListModel) Set(id model.ItemID, fn func(*Item)) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	fn(&m.items[i])
	return true
}

// MoveUp moves the cursor up one row.
func (m *ItemListModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
	m.scroll()
}

// MoveDown moves the cursor down one row.
func (m *ItemListModel) MoveDown() {
	if m.cursor < len(m.items)-1 {
		m.cursor++
	}
	m.scroll()
}

// Resize sets the available area.
func (m *ItemListModel) Resize(width, height int) {
	m.width = width
	m.height = max(height, 1)
	m.scroll()
}

// View renders the list.
func (m ItemListModel) View() string {
	if len(m.items) == 0 {
		return m.theme.Color(m.theme.Muted).Render("Nothing needs attention.")
	}

	end := min(m.offset+m.height, len(m.items))
	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		rows = append(rows, m.renderRow(m.items[i], i == m.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m ItemListModel) renderRow(item Item, selected bool) string {
	marker := "  "
	if selected {
		marker = "▸ "
	}
	prefix := fmt.Sprintf("%s%-12s ", marker, item.ID)
	kind := fmt.Sprintf("%-10s ", item.Kind)

	var status string
	statusColor := m.theme.Muted
	switch {
	case item.Busy:
		status, statusColor = " (working)", m.theme.Info
	case item.LastError != "":
		status, statusColor = " ✗ "+item.LastError, m.theme.Error
	case item.Kind == ItemStoreDuplicate && item.Deck != "":
		status = " [" + item.Deck + "]"
	case item.Detail != "":
		status = " " + item.Detail
	}

	text := item.Front
	if item.Back != "" {
		text += " → " + item.Back
	}
	budget := m.width - lipgloss.Width(prefix) - lipgloss.Width(kind) - lipgloss.Width(status)
	text = truncate(text, max(budget, 8))

	if selected {
		return m.theme.Selected.Render(prefix + kind + text + status)
	}
	return m.theme.Normal.Render(prefix) +
		m.theme.Color(m.kindColor(item.Kind)).Render(kind) +
		m.theme.Normal.Render(text) +
		m.theme.Color(statusColor).Render(status)
}

func (m ItemListModel) kindColor(kind ItemKind) lipgloss.Color {
	switch kind {
	case ItemStoreDuplicate, ItemBatchDuplicate:
		return m.theme.Warning
	case ItemFailedWrite:
		return m.theme.Error
	default:
		return m.theme.Muted
	}
}

func (m ItemListModel) index(id model.ItemID) int {
	for i, item := range m.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (m *ItemListModel) clamp() {
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

func (m *ItemListModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + "…"
}
