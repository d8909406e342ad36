package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"cashmonitor/internal/core"
	"cashmonitor/internal/export"
	"cashmonitor/internal/services"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	amountStyle  = cellStyle.Align(lipgloss.Right)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

var monthNames = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

func monthTitle(key core.MonthKey) string {
	return fmt.Sprintf("%s %d", monthNames[key.Month-1], key.Year)
}

func euro(m core.Money) string {
	return m.Format() + " €"
}

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// newTable returns a bordered table whose listed columns are right aligned.
func newTable(headers []string, rightAligned ...int) *table.Table {
	right := make(map[int]bool, len(rightAligned))
	for _, c := range rightAligned {
		right[c] = true
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return amountStyle
			default:
				return cellStyle
			}
		})
}

func renderMonth(w io.Writer, sheet *core.MonthSheet, prognosis *services.Prognosis) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(monthTitle(sheet.Key)))

	if len(sheet.Transactions) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("Keine Buchungen"))
	} else {
		t := newTable([]string{"ID", "Datum", "Typ", "Kategorie", "Betrag", "Beschreibung"}, 4)
		for _, tx := range sheet.Transactions {
			amount := euro(tx.Amount)
			if tx.Kind == core.Expense {
				amount = "-" + amount
			}
			t.Row(shortID(tx.ID), tx.Date.Format("02.01.2006"), export.KindLabel(tx.Kind), tx.Category, amount, tx.Description)
		}
		_, _ = fmt.Fprintln(w, t.String())
	}

	_, _ = fmt.Fprintf(w, "Einnahmen: %s   Ausgaben: %s   Saldo: %s\n",
		euro(sheet.TotalIncome()), euro(sheet.TotalExpense()), euro(sheet.Balance()))

	if prognosis != nil {
		_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(
			"Prognose (wiederkehrend): Einnahmen %s, Ausgaben %s, Saldo %s",
			euro(prognosis.Income), euro(prognosis.Expense), euro(prognosis.Balance))))
	}
}

func renderRecurring(w io.Writer, items []core.RecurringItem) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("Keine wiederkehrenden Buchungen"))
		return
	}
	t := newTable([]string{"ID", "Tag", "Typ", "Kategorie", "Betrag", "Beschreibung", "Aktiv"}, 1, 4)
	for _, it := range items {
		active := "ja"
		if !it.Active {
			active = "nein"
		}
		t.Row(shortID(it.ID), fmt.Sprint(it.Day), export.KindLabel(it.Kind), it.Category, euro(it.Amount), it.Description, active)
	}
	_, _ = fmt.Fprintln(w, t.String())
}

const progressWidth = 20

func progressBar(p services.Progress, color string) string {
	filled := p.Percent * progressWidth / 100
	if filled > progressWidth {
		filled = progressWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", filled))
	return bar + mutedStyle.Render(strings.Repeat("░", progressWidth-filled))
}

type goalView struct {
	Goal     core.SavingsGoal
	Progress services.Progress
}

func renderGoals(w io.Writer, goals []goalView) {
	if len(goals) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("Keine Sparziele"))
		return
	}
	for _, g := range goals {
		status := fmt.Sprintf("%d%%", g.Progress.Percent)
		if g.Progress.Complete {
			status += " " + successStyle.Render("erreicht")
		}
		_, _ = fmt.Fprintf(w, "%s %s  [%s]  %s\n", g.Goal.Icon, titleStyle.Render(g.Goal.Name), shortID(g.Goal.ID), mutedStyle.Render(g.Goal.Category))
		_, _ = fmt.Fprintf(w, "   %s %s / %s  %s\n", progressBar(g.Progress, g.Goal.Color), euro(g.Progress.Current), euro(g.Goal.TargetAmount), status)
	}
}

func renderTrend(w io.Writer, trend core.Trend) {
	if len(trend.Months) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("Keine Daten"))
		return
	}
	t := newTable([]string{"Monat", "Einnahmen", "Ausgaben", "Saldo", "Sparquote"}, 1, 2, 3, 4)
	for _, m := range trend.Months {
		t.Row(m.Key.String(), euro(m.Income), euro(m.Expense), euro(m.Balance), fmt.Sprintf("%.1f %%", m.SavingsRate))
	}
	_, _ = fmt.Fprintln(w, t.String())
	_, _ = fmt.Fprintf(w, "Summe Einnahmen: %s   Summe Ausgaben: %s\n", euro(trend.TotalIncome), euro(trend.TotalExpense))
	_, _ = fmt.Fprintf(w, "Ø Saldo: %s   Ø Sparquote: %.1f %%\n", euro(trend.AverageBalance), trend.AverageSavingsRate)

	top := trend.TopCategories(5)
	if len(top) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render("Top-Kategorien"))
	ct := newTable([]string{"Kategorie", "Betrag"}, 1)
	for _, c := range top {
		ct.Row(c.Name, euro(c.Amount))
	}
	_, _ = fmt.Fprintln(w, ct.String())
}
