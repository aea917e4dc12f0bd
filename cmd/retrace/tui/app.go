package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/retrace/pkg/retrace/change"
	"github.com/jamesainslie/retrace/pkg/retrace/journal"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateHistory AppState = iota
	StateDetail
	StateConfirm
)

// Model is the main Bubble Tea model for the retrace history browser.
type Model struct {
	state   AppState
	journal *journal.Journal

	// History list state
	changes []change.Change
	applied int
	cursor  int
	offset  int

	// Detail view state
	detail viewport.Model

	// Confirmation dialog state
	confirmFocused int // 0 = cancel, 1 = revert
	revertCount    int
	revertErr      error

	// Window dimensions
	width  int
	height int
}

// NewModel creates a new TUI model over an open journal.
func NewModel(j *journal.Journal) Model {
	return Model{
		state:   StateHistory,
		journal: j,
		changes: j.Changes(),
		applied: j.Applied(),
		cursor:  j.Len() - 1,
		width:   80,
		height:  24,
		detail:  viewport.New(78, 20),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width - 6
		m.detail.Height = msg.Height - 8
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// State-specific keys
	switch m.state {
	case StateHistory:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.changes)-1 {
				m.cursor++
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = len(m.changes) - 1
		case "enter":
			if len(m.changes) > 0 {
				m.detail.SetContent(m.renderDetailContent())
				m.detail.GotoTop()
				m.state = StateDetail
			}
		case "r":
			if n := m.applied - m.cursor; n > 0 && m.cursor < m.applied {
				m.revertCount = n
				m.confirmFocused = 0 // Default to cancel
				m.state = StateConfirm
			}
		}

	case StateDetail:
		switch key {
		case "q", "esc", "enter":
			m.state = StateHistory
		default:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}

	case StateConfirm:
		switch key {
		case "q", "esc", "n":
			m.state = StateHistory
		case "left", "h":
			m.confirmFocused = 0
		case "right", "l":
			m.confirmFocused = 1
		case "tab":
			m.confirmFocused = (m.confirmFocused + 1) % 2
		case "enter":
			if m.confirmFocused == 1 {
				return m.doRevert()
			}
			m.state = StateHistory
		case "y":
			// Shortcut for yes
			return m.doRevert()
		}
	}

	return m, nil
}

// doRevert performs the confirmed revert and refreshes the list.
func (m Model) doRevert() (tea.Model, tea.Cmd) {
	m.revertErr = m.journal.RevertLast(m.revertCount)
	m.changes = m.journal.Changes()
	m.applied = m.journal.Applied()
	if m.cursor >= len(m.changes) {
		m.cursor = len(m.changes) - 1
	}
	m.state = StateHistory
	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	switch m.state {
	case StateHistory:
		return m.renderHistory()
	case StateDetail:
		return m.renderDetail()
	case StateConfirm:
		return m.overlayDialog(m.renderHistory(), m.renderConfirmDialog())
	}
	return ""
}

// renderHistory renders the scrolling change list.
func (m Model) renderHistory() string {
	contentWidth := m.width - 4
	listHeight := m.height - 7

	var b strings.Builder
	b.WriteString(titleStyle.Render("  Retrace History"))
	b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  %d changes, %d applied", len(m.changes), m.applied)))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	if len(m.changes) == 0 {
		b.WriteString(mutedTextStyle.Render("  Journal is empty."))
		b.WriteString("\n")
	} else {
		m.offset = clampOffset(m.offset, m.cursor, listHeight)
		end := m.offset + listHeight
		if end > len(m.changes) {
			end = len(m.changes)
		}
		for seq := m.offset; seq < end; seq++ {
			b.WriteString(m.renderItem(seq, contentWidth))
			b.WriteString("\n")
		}
	}

	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	hints := []string{
		keyStyle.Render("↑/↓") + " " + keyDescStyle.Render("Navigate"),
		keyStyle.Render("[Enter]") + " " + keyDescStyle.Render("Detail"),
		keyStyle.Render("[r]") + " " + keyDescStyle.Render("Revert to here"),
		keyStyle.Render("[q]") + " " + keyDescStyle.Render("Quit"),
	}
	b.WriteString("  " + strings.Join(hints, "  "))
	if m.revertErr != nil {
		b.WriteString("\n")
		b.WriteString(revertedTextStyle.Render("  revert failed: " + m.revertErr.Error()))
	}

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderItem renders one history row.
func (m Model) renderItem(seq, width int) string {
	c := m.changes[seq]
	cursor := "  "
	if seq == m.cursor {
		cursor = cursorStyle.Render("> ")
	}

	kind := kindStyle.Render(c.Kind().String())
	path := truncatePath(describe(c), width-20)

	line := fmt.Sprintf("%s%4d  %s %s", cursor, seq, kind, path)
	if seq >= m.applied {
		return revertedTextStyle.Render(line + "  (reverted)")
	}
	if seq == m.cursor {
		return selectedItemStyle.Render(line)
	}
	return normalItemStyle.Render(line)
}

// describe renders a change's target, including the destination for
// renames and moves.
func describe(c change.Change) string {
	switch v := c.(type) {
	case *change.Rename:
		return fmt.Sprintf("%s -> %s", v.Path(), v.NewName())
	case *change.Move:
		return fmt.Sprintf("%s -> %s/", v.Path(), v.NewParent())
	default:
		return c.Path().String()
	}
}

// renderDetail renders the scrollable detail view for one change.
func (m Model) renderDetail() string {
	contentWidth := m.width - 4

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("  Change %d", m.cursor)))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.detail.View())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString("  " + keyStyle.Render("[Esc]") + " " + keyDescStyle.Render("Back"))

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderDetailContent builds the text shown in the detail viewport.
func (m Model) renderDetailContent() string {
	c := m.changes[m.cursor]

	var b strings.Builder
	fmt.Fprintf(&b, "  kind: %s\n", c.Kind())
	fmt.Fprintf(&b, "  path: %s\n", c.Path())

	var content []byte
	switch v := c.(type) {
	case *change.CreateFile:
		fmt.Fprintf(&b, "  id:   %d\n", v.ID())
		content = v.Content()
	case *change.CreateDirectory:
		fmt.Fprintf(&b, "  id:   %d\n", v.ID())
	case *change.Rename:
		fmt.Fprintf(&b, "  to:   %s\n", v.NewName())
	case *change.Move:
		fmt.Fprintf(&b, "  to:   %s/\n", v.NewParent())
	case *change.SetContent:
		content = v.Content()
	}
	if m.cursor >= m.applied {
		b.WriteString(revertedTextStyle.Render("  state: reverted"))
		b.WriteString("\n")
	}
	for _, idPath := range c.AffectedIDPaths() {
		fmt.Fprintf(&b, "  id-path: %s\n", idPath)
	}

	if content != nil {
		fmt.Fprintf(&b, "\n  content (%s):\n", humanize.IBytes(uint64(len(content))))
		b.WriteString(renderDivider(m.detail.Width - 2))
		b.WriteString("\n")
		b.Write(content)
	}
	return b.String()
}

// renderConfirmDialog renders the revert confirmation dialog.
func (m Model) renderConfirmDialog() string {
	var dialogContent strings.Builder
	dialogContent.WriteString(dialogTitleStyle.Render("Confirm Revert"))
	dialogContent.WriteString("\n\n")
	dialogContent.WriteString(dialogTextStyle.Render(
		fmt.Sprintf("Undo the last %d change(s)?", m.revertCount)))
	dialogContent.WriteString("\n\n")

	cancelBtn := inactiveButtonStyle.Render("Cancel")
	revertBtn := inactiveButtonStyle.Render("Revert")
	if m.confirmFocused == 0 {
		cancelBtn = activeButtonStyle.Background(subtleColor).Render("Cancel")
	} else {
		revertBtn = activeButtonStyle.Render("Revert")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, cancelBtn, "  ", revertBtn)
	dialogContent.WriteString(center(buttons, 46))

	return dialogBoxStyle.Render(dialogContent.String())
}

// overlayDialog centers a dialog over a background view.
func (m Model) overlayDialog(bg, dialog string) string {
	dialogLines := strings.Split(dialog, "\n")
	bgLines := strings.Split(bg, "\n")

	dialogHeight := len(dialogLines)
	startRow := (m.height - dialogHeight) / 2
	if startRow < 0 {
		startRow = 0
	}

	dialogWidth := lipgloss.Width(dialog)
	startCol := (m.width - dialogWidth) / 2
	if startCol < 0 {
		startCol = 0
	}

	var result []string
	for i := range max(len(bgLines), startRow+dialogHeight) {
		if i < startRow || i >= startRow+dialogHeight {
			if i < len(bgLines) {
				result = append(result, bgLines[i])
			} else {
				result = append(result, "")
			}
			continue
		}
		dialogLine := dialogLines[i-startRow]
		if i < len(bgLines) {
			bgLine := bgLines[i]
			if startCol > len(bgLine) {
				result = append(result, strings.Repeat(" ", startCol)+dialogLine)
			} else {
				result = append(result, bgLine[:min(startCol, len(bgLine))]+dialogLine)
			}
		} else {
			result = append(result, strings.Repeat(" ", startCol)+dialogLine)
		}
	}

	return strings.Join(result, "\n")
}

// clampOffset keeps the cursor inside the visible window.
func clampOffset(offset, cursor, height int) int {
	if height < 1 {
		return offset
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+height {
		return cursor - height + 1
	}
	return offset
}

// Run starts the TUI application.
func Run(j *journal.Journal) error {
	model := NewModel(j)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
