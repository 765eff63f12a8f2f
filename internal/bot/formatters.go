package bot

import (
	"fmt"
	"html"
	"persons-admin/internal/api"
	"persons-admin/internal/grid"
	"persons-admin/internal/model"
	"persons-admin/internal/notify"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	telegramMessageLimit = 4096
	maxPageSize          = 50
	maxShownQuery        = 64
)

// formatGrid renders a page as HTML. Rows that would push the message past
// Telegram's limit are left out whole and counted in a trailing line, so tags
// and characters are never split.
func formatGrid(snap grid.Snapshot, extended bool) string {
	var sb strings.Builder
	sb.WriteString("<b>📋 Persons</b>\n")
	if header := formatRequest(snap.Request); header != "" {
		sb.WriteString(header)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	footer := formatGridFooter(snap, extended)
	used := telegramLen(sb.String()) + telegramLen(footer)

	if len(snap.Rows) == 0 {
		sb.WriteString("No persons found\n")
	}
	offset := snap.Request.PageIndex * snap.Request.PageSize
	for i, p := range snap.Rows {
		row := formatPersonRow(offset+i+1, p, snap.Selected[p.Id]) + "\n"
		reserve := 0
		if rest := len(snap.Rows) - i - 1; rest > 0 {
			reserve = telegramLen(moreRowsLine(rest))
		}
		if used+telegramLen(row)+reserve > telegramMessageLimit {
			sb.WriteString(moreRowsLine(len(snap.Rows) - i))
			break
		}
		sb.WriteString(row)
		used += telegramLen(row)
	}

	sb.WriteString(footer)
	return sb.String()
}

func formatGridFooter(snap grid.Snapshot, extended bool) string {
	pages := snap.PageCount
	if pages == 0 {
		pages = 1
	}
	footer := fmt.Sprintf("\nPage %d of %d", snap.Request.PageIndex+1, pages)
	if extended {
		footer += fmt.Sprintf(" · %d persons", snap.TotalCount)
		if n := len(snap.Selected); n > 0 {
			footer += fmt.Sprintf(" · %d selected", n)
		}
	}
	return footer
}

func moreRowsLine(n int) string {
	return fmt.Sprintf("…and %d more\n", n)
}

// telegramLen measures s in UTF-16 code units, the unit of Telegram's message
// limit. Markup is counted too, which only overestimates.
func telegramLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16RuneLen(r)
	}
	return n
}

// utf16RuneLen mirrors utf16.RuneLen (Go 1.23+): the number of UTF-16 code
// units needed to encode r, or -1 if r is not encodable.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= unicode.MaxRune:
		return 2
	default:
		return -1
	}
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

func formatPersonRow(n int, p model.Person, selected bool) string {
	mark := ""
	if selected {
		mark = "☑ "
	}
	gst := p.GST
	if gst == "" {
		gst = "-"
	}
	return fmt.Sprintf("%d. %s<b>%s</b> &lt;%s&gt;\n    GST: %s · 📱 %s · %s",
		n,
		mark,
		html.EscapeString(p.FullName()),
		html.EscapeString(p.Email),
		html.EscapeString(gst),
		html.EscapeString(p.Mobile),
		html.EscapeString(string(p.PersonType)),
	)
}

// formatRequest describes the active sort, search and filters.
func formatRequest(req model.GridRequest) string {
	var parts []string
	if req.Sort != nil {
		arrow := "↑"
		if req.Sort.Descending {
			arrow = "↓"
		}
		parts = append(parts, "Sort: "+html.EscapeString(req.Sort.ColumnID)+" "+arrow)
	}
	if q := strings.TrimSpace(req.Search); q != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", html.EscapeString(truncateRunes(q, maxShownQuery))))
	}
	for _, f := range req.Filters {
		value, ok := api.FilterValue(f.Value)
		if !ok {
			continue
		}
		parts = append(parts, html.EscapeString(f.ColumnID+"="+value))
	}
	return strings.Join(parts, " · ")
}

func formatDraft(d model.PersonDraft) string {
	gst := d.GST
	if gst == "" {
		gst = "-"
	}
	return fmt.Sprintf("<b>New person</b>\nFirst Name: %s\nLast Name: %s\nMobile: %s\nEmail: %s\nGST: %s\nPerson Type: %s",
		html.EscapeString(d.FirstName),
		html.EscapeString(d.LastName),
		html.EscapeString(d.Mobile),
		html.EscapeString(d.Email),
		html.EscapeString(gst),
		html.EscapeString(d.PersonType),
	)
}

func formatNotification(n notify.Notification) string {
	text := "<b>" + html.EscapeString(n.Title) + "</b>"
	if n.Description != "" {
		text += "\n" + html.EscapeString(n.Description)
	}
	return text
}
