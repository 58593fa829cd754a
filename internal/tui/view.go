package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	figure "github.com/common-nighthawk/go-figure"

	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/selection"
)

const (
	colSep = 2

	legend = "Enter Select  O Offline  H DHCP  S Scan  P Pause  R Resume  X Stop  Y Copy  Q Quit"

	// spinnerWidth is the width of every spinner.Dot frame.
	spinnerWidth = 2
)

var columns = []string{"ADDRESS", "STATUS", "HOSTNAME", "MAC", "VENDOR", "DHCP", "PORTS", "SEEN"}

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	legendStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true)
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedBg   = lipgloss.NewStyle().Background(lipgloss.Color("4"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

// layout is where the table lands on screen. View draws from it and mouse
// clicks are mapped back through it, so both always agree.
type layout struct {
	header string
	widths []int

	// top is the screen row of the first drawn host, left the column the
	// centred table starts at.
	top  int
	left int

	start int
	rows  int
}

func (m Model) screenWidth() int {
	if m.width <= 0 {
		return 80
	}

	return m.width
}

func (m Model) center(s string) string {
	width := m.screenWidth()

	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(ansi.Truncate(s, width, ""))
}

func (m Model) layout() layout {
	var l layout

	for _, line := range strings.Split(figure.NewFigure("SPYNET", "", true).String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		l.header += m.center(headerStyle.Render(line)) + "\n"
	}

	l.header += m.center(legendStyle.Render(legend)) + "\n\n"

	// Column titles sit on the line after the header.
	l.top = strings.Count(l.header, "\n") + 1

	hosts := m.state.Visible()

	l.widths = make([]int, len(columns))
	for i, title := range columns {
		l.widths[i] = len(title)
	}

	for _, rec := range hosts {
		for i, cell := range cells(rec, strings.Repeat(" ", spinnerWidth)) {
			if w := ansi.StringWidth(cell); w > l.widths[i] {
				l.widths[i] = w
			}
		}
	}

	tableWidth := colSep * (len(columns) - 1)
	for _, w := range l.widths {
		tableWidth += w
	}

	if l.left = (m.screenWidth() - tableWidth) / 2; l.left < 0 {
		l.left = 0
	}

	// Keep two lines for the footer.
	l.rows = max(0, min(m.height-l.top-2, len(hosts)))

	if m.cursor >= l.rows {
		l.start = m.cursor - l.rows + 1
	}

	return l
}

// rowAt maps a screen row to an index into the visible hosts.
func (l layout) rowAt(y int) (int, bool) {
	if y < l.top || y >= l.top+l.rows {
		return 0, false
	}

	return l.start + y - l.top, true
}

// anchor is the address cell of visible row idx, the rectangle the action
// panel is placed against.
func (l layout) anchor(idx int) (selection.Rect, bool) {
	if idx < l.start || idx >= l.start+l.rows {
		return selection.Rect{Top: l.top, Left: l.left, Width: l.widths[0], Height: 1}, false
	}

	return selection.Rect{Top: l.top + idx - l.start, Left: l.left, Width: l.widths[0], Height: 1}, true
}

// cells renders rec's row, unstyled. spin prefixes the ports column while a
// scan is running.
func cells(rec models.HostRecord, spin string) []string {
	hostname := rec.Hostname
	if hostname == "" {
		hostname = "-"
	}

	mac := rec.LinkAddress
	if mac == "" {
		mac = "-"
	}

	dhcp := "no"
	if rec.IsDHCP {
		dhcp = "yes"
	}

	ports := portList(rec.OpenPorts)
	if rec.PortScanPending || rec.EngineScanning {
		ports = spin + "scanning"
	}

	seen := "-"
	if !rec.LastSeen.IsZero() {
		seen = rec.LastSeen.Format("15:04:05")
	}

	return []string{
		rec.Address,
		statusText(rec.Status),
		ansi.Truncate(hostname, 24, "…"),
		mac,
		ansi.Truncate(rec.DisplayVendor(), 20, "…"),
		dhcp,
		ansi.Truncate(ports, 24, "…"),
		seen,
	}
}

func statusText(s models.Status) string {
	if s == models.StatusUnknown {
		return "unknown"
	}

	return string(s)
}

func statusStyle(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusOnline:
		return onlineStyle
	case models.StatusOffline:
		return offlineStyle
	default:
		return unknownStyle
	}
}

func portList(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}

	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = strconv.Itoa(p)
	}

	return strings.Join(out, ",")
}

func pad(s string, w int) string {
	if d := w - ansi.StringWidth(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}

	return s
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	l := m.layout()

	var out strings.Builder

	out.WriteString(l.header)

	if m.mode == modeScanner {
		out.WriteString(m.scannerForm())
	} else {
		out.WriteString(m.table(l))
	}

	// The footer sits on the last row, below anything the panel can cover.
	for n := strings.Count(out.String(), "\n"); n < m.height-1; n++ {
		out.WriteString("\n")
	}

	out.WriteString(m.center(m.footer()))

	view := out.String()

	if m.state.Selection.Active() && m.mode != modeScanner {
		view = overlay(view, m.panel(), m.state.Selection.Panel.Top, m.state.Selection.Panel.Left)
	}

	return view
}

func (m Model) table(l layout) string {
	sep := strings.Repeat(" ", colSep)
	hosts := m.state.Visible()

	titles := make([]string, len(columns))
	for i, title := range columns {
		titles[i] = pad(title, l.widths[i])
	}

	var b strings.Builder

	b.WriteString(m.center(strings.Join(titles, sep)) + "\n")

	for idx := l.start; idx < l.start+l.rows; idx++ {
		rec := hosts[idx]
		parts := cells(rec, m.spinner.View())

		for i := range parts {
			parts[i] = pad(parts[i], l.widths[i])
		}

		parts[1] = statusStyle(rec.Status).Render(parts[1])

		if idx == m.cursor && m.mode == modeList {
			for i := range parts {
				parts[i] = selectedBg.Render(parts[i])
			}
		}

		b.WriteString(m.center(strings.Join(parts, sep)) + "\n")
	}

	if len(hosts) == 0 {
		b.WriteString(m.center(dimStyle.Render("no hosts yet")) + "\n")
	}

	return b.String()
}

func (m Model) footer() string {
	var tags []string

	if m.state.Connected {
		tags = append(tags, onlineStyle.Render("● live"))
	} else {
		tags = append(tags, offlineStyle.Render("○ offline"))
	}

	if m.state.Filters.HideOffline {
		tags = append(tags, dimStyle.Render("[hiding offline]"))
	}

	if m.state.Filters.HideDHCP {
		tags = append(tags, dimStyle.Render("[hiding dhcp]"))
	}

	tags = append(tags, dimStyle.Render(fmt.Sprintf("%d/%d hosts", len(m.state.Visible()), len(m.state.Hosts))))

	switch {
	case m.message != "":
		tags = append(tags, messageStyle.Render(m.message))
	case m.state.Notice.Err:
		tags = append(tags, errorStyle.Render(m.state.Notice.Text))
	case m.state.Notice.Text != "":
		tags = append(tags, messageStyle.Render(m.state.Notice.Text))
	}

	return strings.Join(tags, "  ")
}

func (m Model) scannerForm() string {
	lines := []string{"Start scanner:"}
	for _, in := range m.inputs {
		lines = append(lines, in.View())
	}

	lines = append(lines, "Press Tab to switch, Enter to confirm, Esc to cancel")

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(m.center(line) + "\n")
	}

	return b.String()
}

// panel renders the action panel for the selection at its placed size.
func (m Model) panel() string {
	sel := m.state.Selection
	rect := sel.Panel
	inner := max(0, rect.Width-4)

	rec, known := m.state.Selected()

	title := lipgloss.NewStyle().Bold(true).Render(sel.Address)
	if known {
		title += "  " + statusStyle(rec.Status).Render(statusText(rec.Status))
	} else {
		title += "  " + dimStyle.Render("(not in table)")
	}

	hostname := sel.Draft.Hostname
	if hostname == "" {
		hostname = "-"
	}

	dhcp := "no"
	if sel.Draft.IsDHCP {
		dhcp = "yes"
	}

	vendor := rec.DisplayVendor()
	if sel.Vendor != nil {
		vendor = sel.Vendor.Display()
	}

	mac := rec.LinkAddress
	if mac == "" {
		mac = "-"
	}

	ports := portList(rec.OpenPorts)
	if rec.PortScanPending {
		ports = m.spinner.View() + "scanning"
	}

	banner := "-"
	if sel.Banner != nil {
		banner = fmt.Sprintf("%d: %s", sel.Banner.Port, sel.Banner.Display())
	}

	lines := []string{
		title,
		"name   " + hostname + "   dhcp " + dhcp,
		"mac    " + mac,
		"vendor " + vendor,
		"ports  " + ports,
		"banner " + banner,
		"",
	}

	switch m.mode {
	case modeRange, modeBanner, modeHostname:
		for _, in := range m.inputs {
			lines = append(lines, in.View())
		}

		lines = append(lines, dimStyle.Render("enter confirm  esc cancel"))
	default:
		lines = append(lines,
			dimStyle.Render("1 popular  2 range  3 all  b banner"),
			dimStyle.Render("m vendor  e name  d dhcp  w save"),
			dimStyle.Render("y copy  esc close"),
		)
	}

	for i, line := range lines {
		lines[i] = ansi.Truncate(line, inner, "…")
	}

	return panelStyle.
		Width(max(0, rect.Width-2)).
		Height(max(0, rect.Height-2)).
		MaxHeight(rect.Height).
		Render(strings.Join(lines, "\n"))
}

// overlay draws box over base with its top-left corner at (top, left).
func overlay(base, box string, top, left int) string {
	lines := strings.Split(base, "\n")

	for i, row := range strings.Split(box, "\n") {
		y := top + i
		if y < 0 {
			continue
		}

		for len(lines) <= y {
			lines = append(lines, "")
		}

		bg := lines[y]
		if w := ansi.StringWidth(bg); w < left {
			bg += strings.Repeat(" ", left-w)
		}

		lines[y] = ansi.Truncate(bg, left, "") + row + ansi.TruncateLeft(bg, left+ansi.StringWidth(row), "")
	}

	return strings.Join(lines, "\n")
}
