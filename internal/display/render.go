package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/domain"
)

var (
	headerCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8")).
			Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#52525b"))
)

// statusSegments are the plain-text parts of the status bar.
func statusSegments(st catalog.State) []string {
	segs := []string{
		fmt.Sprintf("page %d/%d", st.Page, st.TotalPages),
		fmt.Sprintf("%d of %d recipes", st.Total, len(st.Items)),
	}
	if st.Filters.Active() {
		segs = append(segs, "filters: "+st.Filters.String())
	}
	if st.Err != "" {
		segs = append(segs, "error: "+st.Err)
	}
	return segs
}

// StatusLine renders the status bar contents without styling.
func StatusLine(st catalog.State) string {
	mode := "LIVE"
	if st.MockMode {
		mode = "MOCK"
	}
	return strings.Join(append([]string{mode}, statusSegments(st)...), " | ")
}

// WindowTitle is the terminal title for st.
func WindowTitle(st catalog.State) string {
	title := fmt.Sprintf("Recipes (%d)", st.Total)
	if st.MockMode {
		title += " [mock]"
	}
	return title
}

// RenderTable renders one page of recipes as a bordered table.
func RenderTable(recipes []domain.Recipe) string {
	if len(recipes) == 0 {
		return secondaryStyle.Render("  No recipes match.")
	}

	rows := make([][]string, len(recipes))
	for i, r := range recipes {
		rows[i] = []string{
			r.ID,
			truncate(r.Title, 32),
			r.Cuisine,
			string(r.Difficulty),
			FormatMinutes(r.TimeMinutes),
			truncate(strings.Join(r.Tags, ", "), 28),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Headers("ID", "TITLE", "CUISINE", "DIFFICULTY", "TIME", "TAGS").
		Rows(rows...)
	return t.Render()
}

// RenderCard renders the full detail view of one recipe.
func RenderCard(r domain.Recipe) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Title))
	b.WriteString(secondaryStyle.Render("  #" + r.ID))
	b.WriteByte('\n')

	meta := []string{r.Cuisine, string(r.Difficulty), FormatMinutes(r.TimeMinutes)}
	b.WriteString(labelStyle.Render(strings.Join(nonEmpty(meta), " · ")))
	b.WriteByte('\n')

	if r.Description != "" {
		b.WriteString(primaryStyle.Render(r.Description))
		b.WriteByte('\n')
	}
	if len(r.Tags) > 0 {
		b.WriteString(secondaryStyle.Render("tags: " + strings.Join(r.Tags, ", ")))
		b.WriteByte('\n')
	}
	if len(r.Ingredients) > 0 {
		b.WriteString("\n" + labelStyle.Render("Ingredients") + "\n")
		for _, ing := range r.Ingredients {
			b.WriteString(primaryStyle.Render("  • " + ing))
			b.WriteByte('\n')
		}
	}
	if len(r.Steps) > 0 {
		b.WriteString("\n" + labelStyle.Render("Steps") + "\n")
		for i, step := range r.Steps {
			b.WriteString(primaryStyle.Render(fmt.Sprintf("  %d. %s", i+1, step)))
			b.WriteByte('\n')
		}
	}
	if r.Image != "" {
		b.WriteString(secondaryStyle.Render(r.Image))
		b.WriteByte('\n')
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#52525b")).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))
}

// FormatMinutes renders a duration in minutes as "45m" or "1h30m".
func FormatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", max(m, 0))
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
