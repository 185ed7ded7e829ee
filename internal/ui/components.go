package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/nowplaying/internal/theme"
	"github.com/olivier-w/nowplaying/internal/util"
)

const (
	listTop    = 3 // blank line, header, blank line
	panelLines = 3 + visualizerRows + 1
)

type rowLayout struct {
	titleW int
	waveX  int
	waveW  int
}

// layout places a row's columns: indent, cursor, icon, title, waveform,
// duration.
func (m *Model) layout() rowLayout {
	titleW := max(12, min(32, m.width/4))
	waveX := 2 + 2 + 3 + titleW + 2
	waveW := m.width - waveX - 2 - 5 - 2
	if waveW < 4 {
		waveW = 0
	}
	return rowLayout{titleW: titleW, waveX: waveX, waveW: waveW}
}

func (m *Model) canvasCols() int {
	return max(8, m.width-4)
}

// listHeight is how many rows fit above the panel.
func (m *Model) listHeight() int {
	if m.height <= 0 {
		return max(1, len(m.rows))
	}
	return max(1, m.height-listTop-1-panelLines-3)
}

func (m *Model) rowAt(y int) (int, bool) {
	if y < listTop {
		return 0, false
	}
	i := y - listTop + m.offset
	if i >= len(m.rows) || i >= m.offset+m.listHeight() {
		return 0, false
	}
	return i, true
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + m.renderHeader() + "\n")
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString("  " + m.styles.status.Render("no tracks") + "\n")
	}
	end := min(len(m.rows), m.offset+m.listHeight())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i) + "\n")
	}
	b.WriteString("\n")

	if panel := m.renderPanel(); len(panel) > 0 {
		for _, line := range panel {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + m.help.View(keys) + "\n")
	return b.String()
}

func (m *Model) renderHeader() string {
	left := m.styles.header.Render("nowplaying")
	right := m.styles.status.Render(fmt.Sprintf("%d tracks", len(m.rows)))
	gap := m.width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	return left + spaces(max(2, gap)) + right
}

func (m *Model) renderRow(i int) string {
	r := &m.rows[i]
	lay := m.layout()

	mark := " "
	if i == m.cursor {
		mark = m.styles.cursor.Render("›")
	}

	var icon string
	switch {
	case r.loading:
		icon = m.spinner.View()
	case r.failed:
		icon = m.styles.status.Render(fit("✕", 2))
	case r.playing:
		icon = m.styles.icon.Render(fit("▶", 2))
	default:
		icon = m.styles.status.Render(fit("▷", 2))
	}

	titleStyle := m.styles.row
	switch {
	case int(m.highlight) == r.track.ID:
		titleStyle = m.styles.active
	case r.failed:
		titleStyle = m.styles.failed
	}
	title := titleStyle.Render(fit(r.track.Title, lay.titleW))

	wave := spaces(lay.waveW)
	if r.widget != nil && lay.waveW > 0 {
		wave = r.widget.View(lay.waveW)
	}

	label := r.track.DurationLabel
	if label == "" && r.widget != nil {
		label = util.FormatDuration(r.widget.Duration())
	}
	dur := m.styles.time.Render(fmt.Sprintf("%5s", label))

	return "  " + mark + " " + fit(icon, 2) + " " + title + "  " + wave + "  " + dur
}

// renderPanel returns the revealed lines of the now-playing panel. It stays
// hidden until the first track is shown.
func (m *Model) renderPanel() []string {
	r := m.row(m.shown)
	if r == nil {
		return nil
	}
	inner := m.canvasCols()

	label := " now playing "
	rule := m.styles.rule.Render("──" + label + strings.Repeat("─", max(0, inner-2-len(label))))

	var total time.Duration
	if r.widget != nil {
		total = r.widget.Duration()
	}
	if total <= 0 {
		total = r.track.Duration
	}
	durLabel := r.track.DurationLabel
	if durLabel == "" {
		durLabel = util.FormatDuration(total)
	}
	var ratio float64
	if total > 0 {
		ratio = max(0, min(1, float64(m.elapsed)/float64(total)))
	}
	timeLine := m.styles.time.Render(util.FormatDuration(m.elapsed)) + " " +
		m.progress.ViewAs(ratio) + " " +
		m.styles.time.Render(durLabel)

	statusIcon, statusText := "▶", "playing"
	if !m.panelPlaying {
		statusIcon, statusText = "❚❚", "paused"
	}
	status := m.styles.status.Render(fmt.Sprintf("%s  %s  ·  %s  ·  %s",
		statusIcon, statusText, m.loop.Mode(), themeLabel(m.theme.Choice, m.theme.Resolved)))

	lines := []string{rule, m.styles.title.Render(fit(r.track.Title, inner)), timeLine}
	lines = append(lines, strings.Split(m.loop.Canvas().Render(m.theme.Palette.Bar), "\n")...)
	lines = append(lines, status)
	return lines[:m.spring.rows(len(lines))]
}

func themeLabel(choice, resolved theme.Choice) string {
	if choice == resolved {
		return string(choice)
	}
	return fmt.Sprintf("%s (%s)", choice, resolved)
}

// progressWidth sizes the panel's progress bar between the two time labels.
func progressWidth(inner int) int {
	return max(10, inner-14)
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " · nowplaying"
	}
	return "▶ " + title + " · nowplaying"
}

// fit truncates s to w cells, marking a cut with an ellipsis, and pads it
// to exactly w.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if sw := lipgloss.Width(s); sw <= w {
		return s + spaces(w-sw)
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > w-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	b.WriteString("…")
	return b.String() + spaces(w-used-1)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
