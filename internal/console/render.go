package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// view writes styled text. Colour is only emitted when out is a terminal.
type view struct {
	out     io.Writer
	title   lipgloss.Style
	note    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	current lipgloss.Style
	down    lipgloss.Style
	border  lipgloss.Style
	cell    lipgloss.Style
}

func newView(out io.Writer) *view {
	r := lipgloss.NewRenderer(out)
	return &view{
		out:     out,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")),
		note:    r.NewStyle().Foreground(lipgloss.Color("#888888")),
		warn:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F")),
		err:     r.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		current: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FD75F")),
		down:    r.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#6C6C6C")),
		border:  r.NewStyle().Foreground(lipgloss.Color("#3C3C3C")),
		cell:    r.NewStyle().Padding(0, 1),
	}
}

func (v *view) printf(format string, args ...any) {
	fmt.Fprintf(v.out, format+"\n", args...)
}

func (v *view) notef(format string, args ...any) {
	fmt.Fprintln(v.out, v.note.Render(fmt.Sprintf(format, args...)))
}

func (v *view) warnf(format string, args ...any) {
	fmt.Fprintln(v.out, v.warn.Render(fmt.Sprintf(format, args...)))
}

func (v *view) errorf(format string, args ...any) {
	fmt.Fprintln(v.out, v.err.Render("error: "+fmt.Sprintf(format, args...)))
}

func (v *view) heading(text string) {
	fmt.Fprintln(v.out, v.title.Render("== "+text+" =="))
}

func (v *view) prompt(text string) {
	fmt.Fprint(v.out, text)
}

// renderOrder prints the turn order as a table. The acting combatant is
// marked with ">" and combatants waiting for the next round with "+".
func (c *Console) renderOrder() {
	list, pending, current := c.roster()
	rows := make([][]string, 0, len(list))
	for i, cb := range list {
		marker := ""
		switch {
		case cb.ID == current:
			marker = ">"
		case pending[cb.ID]:
			marker = "+"
		}
		name := cb.Name
		switch {
		case cb.ID == current:
			name = c.view.current.Render(name)
		case cb.Defeated():
			name = c.view.down.Render(name) + " (down)"
		}
		ac := "-"
		if cb.ArmorClass != nil {
			ac = fmt.Sprint(*cb.ArmorClass)
		}
		rows = append(rows, []string{
			marker,
			fmt.Sprint(i + 1),
			name,
			cb.Kind.String(),
			fmt.Sprintf("%d/%d", cb.CurrentHP, cb.MaxHP),
			ac,
			fmt.Sprint(cb.Initiative),
			strings.Join(cb.Conditions, ", "),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(c.view.border).
		Headers("", "#", "Name", "Kind", "HP", "AC", "Init", "Conditions").
		Rows(rows...).
		StyleFunc(func(_, _ int) lipgloss.Style { return c.view.cell })
	fmt.Fprintln(c.view.out, t.String())
	if len(pending) > 0 {
		c.view.notef("+ joins at the start of the next round")
	}
}

// renderEntry prints one encounter summary.
func (c *Console) renderEntry(e combat.LogEntry) {
	c.view.printf("%s  %d round(s)", e.EndedAt.Local().Format("2006-01-02 15:04"), e.Rounds)
	if len(e.Survivors) > 0 {
		parts := make([]string, len(e.Survivors))
		for i, s := range e.Survivors {
			parts[i] = fmt.Sprintf("%s %d/%d", s.Name, s.FinalHP, s.MaxHP)
		}
		c.view.printf("  survivors: %s", strings.Join(parts, ", "))
	}
	if len(e.Defeated) > 0 {
		parts := make([]string, len(e.Defeated))
		for i, d := range e.Defeated {
			parts[i] = fmt.Sprintf("%s (%s)", d.Name, d.Kind)
		}
		c.view.printf("  defeated:  %s", strings.Join(parts, ", "))
	}
}
