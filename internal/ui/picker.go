package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned by PickItem for an empty list.
var ErrNothingToPick = errors.New("no items to pick from")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // symbol and name
	SubLabel string // token address, dimmed
	Value    string // returned on selection
}

func (it PickerItem) matches(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(it.Label), q) ||
		strings.Contains(strings.ToLower(it.SubLabel), q)
}

// pickerModel lists items with a cursor. Typing "/" starts a filter over
// labels and addresses; the cursor always indexes the filtered view.
type pickerModel struct {
	title     string
	items     []PickerItem
	query     string
	filtering bool
	cursor    int
	selected  *PickerItem
	quitting  bool
}

func (m pickerModel) visible() []PickerItem {
	if m.query == "" {
		return m.items
	}
	out := make([]PickerItem, 0, len(m.items))
	for _, it := range m.items {
		if it.matches(m.query) {
			out = append(out, it)
		}
	}
	return out
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.filtering {
		return m.updateFilter(km)
	}

	shown := m.visible()
	switch km.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.filtering = true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(shown)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(shown)-1, 0)
	case "enter", " ":
		if len(shown) > 0 {
			item := shown[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	}
	return m, nil
}

// updateFilter edits the query. Enter keeps the filter and returns to
// navigation; esc drops it.
func (m pickerModel) updateFilter(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch km.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering, m.query = false, ""
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(km.Runes)
	}
	m.cursor = 0
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n")
	switch {
	case m.filtering:
		sb.WriteString(StyleValue.Render("  / "+m.query) + StyleMeta.Render("▏") + "\n")
	case m.query != "":
		sb.WriteString(StyleMeta.Render("  filter: "+m.query) + "\n")
	}
	sb.WriteString("\n")

	shown := m.visible()
	if len(shown) == 0 {
		sb.WriteString(StyleMeta.Render("    no token matches") + "\n")
	}
	for i, item := range shown {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		line := prefix + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d of %d   [ ↑↓ / jk ] move   [ / ] filter   [ Enter ] show   [ q ] cancel",
		len(shown), len(m.items))) + "\n")
	return sb.String()
}

// PickItem runs the picker and returns the chosen item's Value, or "" when
// the user cancels.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToPick
	}

	final, err := tea.NewProgram(pickerModel{title: title, items: items}, tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
