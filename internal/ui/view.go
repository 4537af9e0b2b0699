package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/desertthunder/sdos/internal/render"
)

const progressWidth = 24

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case LoadingView:
		return m.renderLoading()
	case ResultsView:
		return m.renderResults()
	case MessageView:
		return m.renderMessage()
	default:
		return ""
	}
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("What connects two artists?"))
	b.WriteString("\n")

	for i, label := range []string{"From", "To"} {
		f := m.fields[i]
		line := fmt.Sprintf("%-5s %s", label, f.input.View())
		if f.artist.ID > 0 {
			line += " " + styles.ok.Render(fmt.Sprintf("✓ #%d", f.artist.ID))
		}
		b.WriteString(line + "\n")
	}

	if len(m.suggestions.Items()) > 0 {
		b.WriteString("\n" + m.suggestions.View() + "\n")
	} else if m.searching {
		b.WriteString("\n" + styles.muted.Render("searching...") + "\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n" + m.help.ShortHelpView(m.keys.formHelp()))
	return b.String()
}

func (m *Model) renderLoading() string {
	msg := m.progress.Message
	if msg == "" {
		msg = "Finding a connection..."
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.interrupt})
	return fmt.Sprintf("%s\n\n%s %s\n\n%s", styles.title.Render("Searching"), m.spinner.View(), msg, helpView)
}

func (m *Model) renderResults() string {
	if m.result == nil {
		return ""
	}
	r := formatter.NewRoute(m.result.Path, m.shown.Seconds, m.result)

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s → %s", r.Source, r.Target)))
	b.WriteString("\n")
	b.WriteString(styles.muted.Render(formatter.Degrees(m.result.Len())))
	b.WriteString("\n\n")

	for i := range m.result.Cards {
		if !m.result.Visible(i) {
			continue
		}
		b.WriteString(m.renderCard(i))
		b.WriteString("\n")
	}

	if m.alternating {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderCard(i int) string {
	c := m.result.Cards[i]

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s → %s\n", c.Number, c.FromName, c.ToName)
	if c.Title == "" {
		b.WriteString(styles.muted.Render("no track"))
	} else {
		fmt.Fprintf(&b, "♪ %q", c.Title)
	}

	if ctl := m.control(i); ctl != nil {
		_, fraction, visible := ctl.snapshot()
		b.WriteString("  " + ctl.icon())
		if visible {
			b.WriteString(" " + styles.progressBar(fraction, progressWidth))
		}
	}

	_, state := m.result.CoverSource(i)
	b.WriteString("\n" + styles.muted.Render(coverGlyph(state)+" cover "+state.String()))
	if len(c.Links) > 0 {
		names := make([]string, len(c.Links))
		for j, l := range c.Links {
			names[j] = fmt.Sprintf("%d %s", j+1, l.Service)
		}
		b.WriteString(styles.muted.Render("  links: " + strings.Join(names, " · ")))
	}

	style := styles.card
	if i == m.selected {
		style = styles.selectedCard()
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(b.String())
}

func (m *Model) renderMessage() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.reset, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", styles.title.Render("sdos"), styles.warn.Render(m.message), helpView)
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return "\n" + styles.err.Render(m.status)
	}
	return "\n" + styles.help.Render(m.status)
}

func (m *Model) control(i int) *cardControl {
	if i < 0 || i >= len(m.controls) {
		return nil
	}
	return m.controls[i]
}

func coverGlyph(s render.CoverState) string {
	switch s {
	case render.CoverResolved:
		return "▣"
	case render.CoverDefault:
		return "▢"
	default:
		return "░"
	}
}
