package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"forum-server/internal/reveal"
	"forum-server/internal/spoiler"
	"forum-server/internal/util"
	"forum-server/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	hiddenSpan    = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("236"))
	revealedSpan  = lipgloss.NewStyle().Background(lipgloss.Color("227")).Foreground(lipgloss.Color("0"))
	gateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Italic(true)
)

// spoilerSpanCount counts the inline spans of a body.
func spoilerSpanCount(raw string) int {
	return spoiler.Count(raw)
}

// renderSegments renders a parsed body with per-span reveal state applied.
// Hidden spans are shown as a redacted block of the same visible width so
// the layout does not shift when they reveal.
func renderSegments(raw, docID string, store *reveal.Store) string {
	segments := spoiler.Parse(raw)
	var b strings.Builder
	span := 0
	for _, seg := range segments {
		if !seg.Spoiler {
			b.WriteString(seg.Text)
			continue
		}
		if store.IsRevealed(docID, span) {
			b.WriteString(revealedSpan.Render(seg.Text))
		} else {
			b.WriteString(hiddenSpan.Render(strings.Repeat("█", len([]rune(seg.Text)))))
		}
		span++
	}
	return b.String()
}

// renderBody applies the whole-body gate before any segment work.
func renderBody(raw, docID string, wholeSpoiler bool, store *reveal.Store) string {
	if wholeSpoiler && !store.WholeRevealed(docID) {
		return gateStyle.Render("[spoiler: press R to reveal]")
	}
	return renderSegments(raw, docID, store)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.pane {
	case PaneDetail:
		b.WriteString(m.renderDetail())
	default:
		b.WriteString(m.renderList())
	}

	if m.composing {
		b.WriteString("\n" + m.composer.View() + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	st := m.selector.State()
	var tabs []string

	style := tabStyle
	if st.BoardFilter == nil && st.Scope == view.ScopeAll {
		style = activeTab
	}
	tabs = append(tabs, style.Render("[a]ll"))

	for i, board := range m.boards {
		if i >= 9 {
			break
		}
		style = tabStyle
		if st.BoardFilter != nil && *st.BoardFilter == board.ID {
			style = activeTab
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("[%d]%s", i+1, board.Name)))
	}

	style = tabStyle
	if st.Scope == view.ScopeMine {
		style = activeTab
	}
	tabs = append(tabs, style.Render("[m]ine"))

	who := "anonymous"
	if m.identity != nil {
		who = m.identity.DisplayName()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + mutedStyle.Render("  "+who)
}

func (m Model) renderList() string {
	if m.loading {
		return mutedStyle.Render("  fetching posts...")
	}
	if len(m.posts) == 0 {
		return mutedStyle.Render("  no posts")
	}
	var b strings.Builder
	now := time.Now()
	for i, post := range m.posts {
		cursor := "  "
		style := titleStyle
		if i == m.selectedRow {
			cursor = "> "
			style = selectedStyle
		}
		author := post.Owner.DisplayName()
		if author == "" {
			author = fmt.Sprintf("user %d", post.OwnerID)
		}
		tag := ""
		if post.IsSpoiler {
			tag = gateStyle.Render(" [spoiler]")
		}
		b.WriteString(cursor + style.Render(post.Title) + tag + "\n")
		b.WriteString("  " + mutedStyle.Render(author+" · "+util.RelTime(post.CreatedAt.Time, now)) + "\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	post := m.currentPost()
	if post == nil {
		return mutedStyle.Render("  nothing selected")
	}
	doc := postDocID(post.ID)
	now := time.Now()
	author := post.Owner.DisplayName()
	if author == "" {
		author = fmt.Sprintf("user %d", post.OwnerID)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(post.Title) + "\n")
	b.WriteString(mutedStyle.Render(author+" · "+util.RelTime(post.CreatedAt.Time, now)) + "\n\n")
	b.WriteString(renderBody(post.Content, doc, post.IsSpoiler, m.reveal) + "\n\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d comments", len(m.comments))) + "\n")
	for _, c := range m.comments {
		cAuthor := c.User.DisplayName()
		if cAuthor == "" {
			cAuthor = fmt.Sprintf("user %d", c.UserID)
		}
		b.WriteString(mutedStyle.Render("  "+cAuthor+" · "+util.RelTime(c.CreatedAt.Time, now)) + "\n")
		b.WriteString("  " + renderBody(c.Content, commentDocID(c.ID), c.IsSpoiler, m.reveal) + "\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	var parts []string
	if m.errMsg != "" {
		parts = append(parts, errStyle.Render(m.errMsg))
	}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	help := "j/k move · enter open · r reveal span · R reveal post · c comment · v/V vote · g refresh · q quit"
	parts = append(parts, mutedStyle.Render(help))
	return strings.Join(parts, "  ")
}
