// Package tui provides a Bubble Tea terminal client for the forum.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"forum-server/internal/forum"
	"forum-server/internal/reveal"
	"forum-server/internal/view"
)

// Pane is the currently focused screen.
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
)

// Options configures the TUI.
type Options struct {
	Context context.Context
	Client  *forum.Client
	Token   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx    context.Context
	client *forum.Client
	token  string

	// View orchestration shared with the web client.
	selector     *view.Selector
	listGuard    view.Guard
	commentGuard view.Guard
	reveal       *reveal.Store

	// Data state
	identity *forum.Identity
	boards   []forum.Board
	posts    []forum.Post
	comments []forum.Comment
	loading  bool
	errMsg   string
	status   string

	// UI state
	pane        Pane
	selectedRow int
	width       int
	height      int
	ready       bool

	// Comment composer
	composing bool
	composer  textinput.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	client := opts.Client
	if opts.Token != "" {
		client = client.WithToken(opts.Token)
	}
	composer := textinput.New()
	composer.Placeholder = "write a comment, ||spoilers|| allowed"
	composer.CharLimit = 2000

	return Model{
		ctx:      ctx,
		client:   client,
		token:    opts.Token,
		selector: view.NewSelector(),
		reveal:   reveal.New(),
		pane:     PaneList,
		composer: composer,
	}
}

// Messages

type boardsMsg struct {
	boards []forum.Board
	err    error
}

type identityMsg struct {
	identity *forum.Identity
	err      error
}

type postsMsg struct {
	ticket view.Ticket
	posts  []forum.Post
	err    error
}

type commentsMsg struct {
	ticket   view.Ticket
	comments []forum.Comment
	err      error
}

type actionDoneMsg struct {
	status string
	err    error
}

type commentPostedMsg struct {
	postID int64
}

// Commands

func (m Model) fetchBoardsCmd() tea.Cmd {
	return func() tea.Msg {
		boards, err := m.client.ListBoards(m.ctx)
		return boardsMsg{boards: boards, err: err}
	}
}

func (m Model) fetchIdentityCmd() tea.Cmd {
	return func() tea.Msg {
		ident, err := m.client.Me(m.ctx)
		return identityMsg{identity: ident, err: err}
	}
}

// fetchPostsCmd runs the list fetch the stale-response guard issued. The
// guard ticket travels with the result so completion order cannot clobber
// a newer filter change.
func (m Model) fetchPostsCmd(ticket view.Ticket, spec view.FetchSpec) tea.Cmd {
	return func() tea.Msg {
		posts, err := m.client.ListPosts(m.ctx, spec.Query())
		return postsMsg{ticket: ticket, posts: posts, err: err}
	}
}

func (m Model) fetchCommentsCmd(ticket view.Ticket, postID int64) tea.Cmd {
	return func() tea.Msg {
		comments, err := m.client.ListComments(m.ctx, postID)
		return commentsMsg{ticket: ticket, comments: comments, err: err}
	}
}

func (m Model) createCommentCmd(postID int64, content string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.client.CreateComment(m.ctx, postID, content, false)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return commentPostedMsg{postID: postID}
	}
}

func (m Model) voteCmd(postID int64, dir int) tea.Cmd {
	return func() tea.Msg {
		err := m.client.Vote(m.ctx, postID, dir)
		label := "upvoted"
		if dir < 0 {
			label = "downvoted"
		}
		return actionDoneMsg{status: label, err: err}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.fetchBoardsCmd(),
	}
	if m.token != "" {
		cmds = append(cmds, m.fetchIdentityCmd())
	}
	if cmd := m.beginListFetch(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// beginListFetch resolves the current filter state and issues a guarded
// fetch for it. Resolution failure (mine without identity) reverts the
// selector and surfaces the error.
func (m *Model) beginListFetch() tea.Cmd {
	spec, err := m.selector.Resolve(m.identity)
	if err != nil {
		m.errMsg = "log in to view your posts"
		return nil
	}
	key := fmt.Sprintf("list:%d:%d:%d", spec.Kind, spec.BoardID, spec.UserID)
	ticket := m.listGuard.Begin(key)
	m.loading = true
	return m.fetchPostsCmd(ticket, spec)
}

func (m *Model) beginCommentFetch(postID int64) tea.Cmd {
	ticket := m.commentGuard.Begin(fmt.Sprintf("comments:%d", postID))
	return m.fetchCommentsCmd(ticket, postID)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case boardsMsg:
		if msg.err == nil {
			m.boards = msg.boards
		}
		return m, nil

	case identityMsg:
		if msg.err != nil {
			m.errMsg = "login failed, token rejected"
			return m, nil
		}
		m.identity = msg.identity
		return m, nil

	case postsMsg:
		if !m.listGuard.Commit(msg.ticket) {
			// A newer filter change was issued while this fetch was in
			// flight; its result is stale and must not land.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = "could not load posts"
			m.posts = nil
			return m, nil
		}
		m.errMsg = ""
		m.posts = msg.posts
		if m.selectedRow >= len(m.posts) {
			m.selectedRow = 0
		}
		return m, nil

	case commentsMsg:
		if !m.commentGuard.Commit(msg.ticket) {
			return m, nil
		}
		if msg.err != nil {
			m.comments = nil
			return m, nil
		}
		m.comments = msg.comments
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.errMsg = actionErrText(msg.err)
		} else {
			m.status = msg.status
			m.errMsg = ""
		}
		return m, nil

	case commentPostedMsg:
		m.status = "comment posted"
		m.errMsg = ""
		// Only refresh if the user is still looking at that post.
		if post := m.currentPost(); post != nil && post.ID == msg.postID && m.pane == PaneDetail {
			return m, m.beginCommentFetch(msg.postID)
		}
		return m, nil
	}

	return m, nil
}

func actionErrText(err error) string {
	if forum.IsUnauthorized(err) {
		return "log in first"
	}
	return err.Error()
}

// applyFilterTransition clears selection-scoped state after a filter
// change, exactly like the web client does.
func (m *Model) applyFilterTransition() {
	m.comments = nil
	m.reveal.Reset()
	m.commentGuard.Invalidate()
	m.pane = PaneList
	m.selectedRow = 0
	m.status = ""
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.composing {
		switch key {
		case "esc":
			m.composing = false
			m.composer.Reset()
			m.composer.Blur()
			return m, nil
		case "enter":
			post := m.currentPost()
			content := strings.TrimSpace(m.composer.Value())
			m.composing = false
			m.composer.Reset()
			m.composer.Blur()
			if post == nil || content == "" {
				return m, nil
			}
			return m, m.createCommentCmd(post.ID, content)
		default:
			var cmd tea.Cmd
			m.composer, cmd = m.composer.Update(msg)
			return m, cmd
		}
	}

	switch key {
	case "ctrl+c", "q":
		if m.pane == PaneDetail {
			m.pane = PaneList
			m.selector.ClearSelection()
			return m, nil
		}
		return m, tea.Quit

	case "a":
		if m.selector.SelectAll().RefetchList {
			m.applyFilterTransition()
			return m, m.beginListFetch()
		}
		return m, nil

	case "m":
		effect, err := m.selector.SelectMine(m.identity)
		m.applyFilterTransition()
		if err != nil {
			m.errMsg = "log in to view your posts"
			if effect.RefetchList {
				return m, m.beginListFetch()
			}
			return m, nil
		}
		return m, m.beginListFetch()

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key[0] - '1')
		if idx >= len(m.boards) {
			return m, nil
		}
		m.selector.SelectBoard(m.boards[idx].ID)
		m.applyFilterTransition()
		return m, m.beginListFetch()

	case "j", "down":
		if m.pane == PaneList && m.selectedRow < len(m.posts)-1 {
			m.selectedRow++
		}
		return m, nil

	case "k", "up":
		if m.pane == PaneList && m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil

	case "enter":
		if m.pane != PaneList || m.selectedRow >= len(m.posts) {
			return m, nil
		}
		post := m.posts[m.selectedRow]
		effect := m.selector.SelectEntity(post.ID)
		m.comments = nil
		m.reveal.Reset()
		m.pane = PaneDetail
		if effect.FetchComments {
			return m, m.beginCommentFetch(post.ID)
		}
		return m, nil

	case "esc":
		if m.pane == PaneDetail {
			m.pane = PaneList
			m.selector.ClearSelection()
		}
		return m, nil

	case "r":
		return m.revealNextSpan(), nil

	case "R":
		if post := m.currentPost(); post != nil && m.pane == PaneDetail {
			m.reveal.RevealWhole(postDocID(post.ID))
		}
		return m, nil

	case "c":
		if m.pane != PaneDetail || m.currentPost() == nil {
			return m, nil
		}
		if m.token == "" {
			m.errMsg = "log in to comment"
			return m, nil
		}
		m.composing = true
		return m, m.composer.Focus()

	case "g":
		m.status = ""
		return m, m.beginListFetch()

	case "v":
		if post := m.currentPost(); post != nil && m.token != "" {
			return m, m.voteCmd(post.ID, 1)
		}
		m.errMsg = "log in to vote"
		return m, nil

	case "V":
		if post := m.currentPost(); post != nil && m.token != "" {
			return m, m.voteCmd(post.ID, -1)
		}
		m.errMsg = "log in to vote"
		return m, nil
	}

	return m, nil
}

func (m Model) currentPost() *forum.Post {
	if m.selectedRow >= len(m.posts) {
		return nil
	}
	return &m.posts[m.selectedRow]
}

// revealNextSpan reveals the first still-hidden inline span of the post
// under the cursor. Repeated presses walk the spans in document order.
func (m Model) revealNextSpan() Model {
	post := m.currentPost()
	if post == nil {
		return m
	}
	doc := postDocID(post.ID)
	count := spoilerSpanCount(post.Content)
	for i := 0; i < count; i++ {
		if !m.reveal.IsRevealed(doc, i) {
			m.reveal.Toggle(doc, i)
			return m
		}
	}
	return m
}

func postDocID(id int64) string {
	return fmt.Sprintf("post:%d", id)
}

func commentDocID(id int64) string {
	return fmt.Sprintf("comment:%d", id)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
