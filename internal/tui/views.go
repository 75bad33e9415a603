package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"metrowatch/internal/serpapi"
	"metrowatch/internal/session"
)

func (a *App) View() string {
	if a.width == 0 {
		return titleStyle.Render("metrowatch")
	}

	var body string
	switch a.mode {
	case modeSetup:
		body = a.renderSetup()
	case modeBrowse:
		body = a.renderBrowse()
	case modePrompt:
		body = a.renderPrompt()
	case modeReport:
		body = a.renderReport()
	case modeHelp:
		body = a.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusBar())
}

func (a *App) renderSetup() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("metrowatch") + metaStyle.Render("  daily news round-up") + "\n\n")

	b.WriteString("  Keywords\n")
	b.WriteString("  " + a.keywordInput.View() + "\n\n")

	b.WriteString("  Account\n")
	for i, name := range a.accounts {
		marker := "  "
		line := name
		if i == a.accountCursor {
			marker = cursorStyle.Render("> ")
			line = cursorStyle.Render(name)
		}
		b.WriteString("  " + marker + line + "  " + a.renderQuota(name) + "\n")
	}

	b.WriteString("\n" + metaStyle.Render("  ↑/↓ account · enter fetch · ctrl+c quit") + "\n")
	return b.String()
}

func (a *App) renderQuota(name string) string {
	if msg, ok := a.quotaErrs[name]; ok {
		return errStyle.Render("quota unavailable: " + truncateStr(msg, 40))
	}
	info, ok := a.quota[name]
	if !ok {
		return metaStyle.Render("checking quota...")
	}
	return quotaStyle.Render(formatQuota(info))
}

func formatQuota(info *serpapi.AccountInfo) string {
	return fmt.Sprintf("%d/%d searches used, %d left",
		info.Used(), info.SearchesPerMonth, info.PlanSearchesLeft)
}

func (a *App) renderBrowse() string {
	if a.sess == nil || a.sess.Buckets.Empty() {
		body := "\n  No recent articles. " + metaStyle.Render("r refetch · R back to setup · q quit")
		return a.renderFetchErrors() + body
	}

	lines, cursorLine := a.browseLines()
	height := max(3, a.height-4)
	start := 0
	if cursorLine >= height {
		start = cursorLine - height + 1
	}
	end := min(len(lines), start+height)

	var b strings.Builder
	b.WriteString(a.renderFetchErrors())
	b.WriteString(strings.Join(lines[start:end], "\n"))
	return b.String()
}

func (a *App) renderFetchErrors() string {
	var b strings.Builder
	for _, e := range a.fetchErrs {
		b.WriteString(errStyle.Render("  ✗ "+e.Error()) + "\n")
	}
	return b.String()
}

// browseLines renders the grouped checkbox list and reports which line the
// cursor sits on, for scrolling.
func (a *App) browseLines() ([]string, int) {
	width := max(30, a.width-4)

	var lines []string
	cursorLine := 0
	flat := 0
	for _, kw := range a.sess.Buckets.Keywords {
		items := a.sess.Buckets.Get(kw)
		lines = append(lines, keywordHeaderStyle.Render(fmt.Sprintf("  %s (%d)", kw, len(items))))
		for i, item := range items {
			key := session.ItemKey{Keyword: kw, Index: i}
			if flat == a.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, a.renderItem(key, flat == a.cursor, width))
			meta := "        " + metaStyle.Render(item.Source+" · "+item.Marker)
			lines = append(lines, meta)
			if text, ok := a.previews[key]; ok {
				for _, l := range strings.Split(text, "\n") {
					lines = append(lines, previewStyle.Render(truncateStr(l, width-8)))
				}
			}
			flat++
		}
		lines = append(lines, "")
	}
	return lines, cursorLine
}

func (a *App) renderItem(key session.ItemKey, atCursor bool, width int) string {
	item, _ := a.sess.Item(key)
	entry := a.sess.Entry(key)

	marker := "  "
	if atCursor {
		marker = cursorStyle.Render("> ")
	}

	box := "[ ]"
	if entry.Selected {
		box = checkedStyle.Render("[x]")
	}

	star := "  "
	for _, t := range a.sess.Recommended {
		if t == item.Title {
			star = recommendedStyle.Render("★ ")
			break
		}
	}

	tag := ""
	if entry.Category != "" {
		tag = categoryStyle.Render(entry.Category) + " "
	}

	title := truncateStr(item.Title, width-10-len([]rune(tag)))
	if atCursor {
		title = cursorStyle.Render(title)
	}
	return "  " + marker + box + " " + star + tag + title
}

func (a *App) renderPrompt() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recommendation prompt") + "\n\n")
	b.WriteString(a.promptInput.View() + "\n\n")
	b.WriteString(metaStyle.Render("  ctrl+s save for this session · esc cancel"))
	return b.String()
}

func (a *App) renderReport() string {
	body := reportStyle.Width(max(30, a.width-4)).Render(a.reportText)
	return titleStyle.Render("Report") + "\n" + body
}

func (a *App) renderHelp() string {
	dim := helpDimStyle
	help := titleStyle.Render("metrowatch") + dim.Render(" — keys") + "\n\n" +
		dim.Render("Browse") + "\n" +
		"  j/k, ↑/↓     move\n" +
		"  space         toggle selection\n" +
		"  c             cycle category\n" +
		"  a             AI picks\n" +
		"  v             toggle article preview\n" +
		"  g, enter      compose report\n" +
		"  r             refetch\n" +
		"  R             back to setup\n" +
		"  e             edit prompt\n\n" +
		dim.Render("Report") + "\n" +
		"  y             copy to clipboard\n" +
		"  s             send via telegram\n" +
		"  n             new cycle\n" +
		"  esc, b        back to list\n\n" +
		dim.Render("General") + "\n" +
		"  ?             toggle this help\n" +
		"  q, ctrl+c    quit"

	card := helpCardStyle.Render(help)
	return lipgloss.Place(a.width, max(1, a.height-1), lipgloss.Center, lipgloss.Center, card)
}

func (a *App) renderStatusBar() string {
	left := ""
	if a.sess != nil {
		left = fmt.Sprintf(" %d articles · %d selected", a.sess.Buckets.Len(), a.sess.SelectedCount())
	}
	if a.status != "" {
		left += " · " + a.status
	}
	if a.err != nil {
		left = " " + errStyle.Render(a.err.Error())
	}
	if a.busy {
		left = " " + a.spinner.View() + left
	}

	right := hintsFor(a.mode)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(a.width).Render(left + strings.Repeat(" ", gap) + right)
}

func hintsFor(m mode) string {
	switch m {
	case modeSetup:
		return "enter fetch  ctrl+c quit "
	case modeBrowse:
		return "space select  a ai  g report  ? help  q quit "
	case modePrompt:
		return "ctrl+s save  esc cancel "
	case modeReport:
		return "y copy  s send  n new  esc back "
	case modeHelp:
		return "? close "
	}
	return ""
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
