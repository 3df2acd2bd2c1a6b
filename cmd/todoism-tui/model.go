// ABOUTME: Bubble Tea model for browsing and editing items over the API
// ABOUTME: Every mutation is a server call followed by a reload

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389/todoism/internal/client"
)

// pageSize is the number of items fetched per load.
const pageSize = 100

const requestTimeout = 10 * time.Second

var filters = []string{"all", "active", "completed"}

// itemsAPI is the subset of the API client the model drives.
type itemsAPI interface {
	Me(ctx context.Context) (*client.User, error)
	Items(ctx context.Context, filter string, page, perPage int) (*client.Collection, error)
	Create(ctx context.Context, body string) (*client.Item, error)
	Edit(ctx context.Context, id int64, body string) error
	Toggle(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ClearCompleted(ctx context.Context) error
}

// listItem adapts client.Item to list.Item.
type listItem struct {
	client.Item
}

func (i listItem) Title() string       { return i.Body }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Body }

// itemDelegate renders one item per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	line := mutedStyle.Render(boxUnchecked) + " " + it.Body
	if it.Done {
		line = successStyle.Render(boxChecked) + " " + doneStyle.Render(it.Body)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// Messages produced by commands.
type (
	loadedMsg struct {
		user  *client.User
		items *client.Collection
	}
	mutatedMsg struct{ status string }
	errMsg     struct{ err error }
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAdd
	modeEdit
)

type model struct {
	api    itemsAPI
	list   list.Model
	ti     textinput.Model
	filter int
	user   *client.User

	mode     inputMode
	editID   int64
	inputErr string

	status  string
	err     error
	loading bool

	width, height int
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	clearBind  = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done"))
	filterBind = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter"))
	reloadBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
)

func newModel(api itemsAPI) model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	short := func() []key.Binding {
		return []key.Binding{toggleBind, addBind, editBind, deleteBind, filterBind}
	}
	l.AdditionalShortHelpKeys = short
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return append(short(), clearBind, reloadBind)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 500

	m := model{api: api, list: l, ti: ti, loading: true}
	m.list.Title = m.title()
	return m
}

func (m model) currentFilter() string {
	return filters[m.filter]
}

func (m model) title() string {
	t := titleStyle.Render("Todos") + " " + mutedStyle.Render("["+m.currentFilter()+"]")
	if m.user == nil {
		return t
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d", t,
		successStyle.Render("✔"), m.user.Completed,
		pendingStyle.Render("•"), m.user.Active,
		accentStyle.Render("Total"), m.user.All,
	)
}

// load fetches the current user and the first page of the current filter.
func (m model) load() tea.Cmd {
	api, filter := m.api, m.currentFilter()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, err := api.Me(ctx)
		if err != nil {
			return errMsg{err}
		}
		items, err := api.Items(ctx, filter, 1, pageSize)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{user: user, items: items}
	}
}

// mutate runs fn against the API and reports status on success.
func (m model) mutate(status string, fn func(ctx context.Context, api itemsAPI) error) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := fn(ctx, api); err != nil {
			return errMsg{err}
		}
		return mutatedMsg{status: status}
	}
}

func (m model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

func (m model) Init() tea.Cmd {
	return m.load()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = nil
		m.user = msg.user
		items := make([]list.Item, 0, len(msg.items.Items))
		for _, it := range msg.items.Items {
			items = append(items, listItem{it})
		}
		cmd := m.list.SetItems(items)
		m.list.Title = m.title()
		return m, cmd

	case mutatedMsg:
		m.status = msg.status
		m.loading = true
		return m, m.load()

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}

	if m.mode != modeBrowse {
		return m.updateInput(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if next, cmd, handled := m.handleKey(k); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) handleKey(k tea.KeyMsg) (model, tea.Cmd, bool) {
	switch k.String() {
	case "q", "ctrl+c":
		return m, tea.Quit, true

	case "tab":
		m.filter = (m.filter + 1) % len(filters)
		m.list.ResetSelected()
		m.list.Title = m.title()
		m.loading = true
		return m, m.load(), true

	case "r":
		m.loading = true
		m.status = ""
		return m, m.load(), true

	case " ":
		it, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		state := "completed"
		if it.Done {
			state = "active"
		}
		return m, m.mutate(fmt.Sprintf("#%d is now %s", it.ID, state), func(ctx context.Context, api itemsAPI) error {
			return api.Toggle(ctx, it.ID)
		}), true

	case "d":
		it, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		return m, m.mutate(fmt.Sprintf("deleted #%d", it.ID), func(ctx context.Context, api itemsAPI) error {
			return api.Delete(ctx, it.ID)
		}), true

	case "c":
		return m, m.mutate("cleared completed items", func(ctx context.Context, api itemsAPI) error {
			return api.ClearCompleted(ctx)
		}), true

	case "a":
		m.mode = modeAdd
		m.inputErr = ""
		m.ti.SetValue("")
		m.ti.Placeholder = "What needs to be done?"
		m.resize()
		return m, m.ti.Focus(), true

	case "e":
		it, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		m.mode = modeEdit
		m.editID = it.ID
		m.inputErr = ""
		m.ti.SetValue(it.Body)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit item..."
		m.resize()
		return m, m.ti.Focus(), true
	}
	return m, nil, false
}

func (m model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.closeInput()
			return m, nil
		case "enter":
			body := strings.TrimSpace(m.ti.Value())
			if body == "" {
				m.inputErr = "Body cannot be empty"
				return m, nil
			}
			mode, id := m.mode, m.editID
			m.closeInput()
			if mode == modeAdd {
				return m, m.mutate("added item", func(ctx context.Context, api itemsAPI) error {
					_, err := api.Create(ctx, body)
					return err
				})
			}
			return m, m.mutate(fmt.Sprintf("edited #%d", id), func(ctx context.Context, api itemsAPI) error {
				return api.Edit(ctx, id, body)
			})
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *model) closeInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *model) resize() {
	if m.width == 0 {
		return
	}
	h := m.height - 5
	if m.mode != modeBrowse {
		h -= 4
	}
	m.list.SetSize(m.width-4, max(h, 1))
}

func (m model) View() string {
	content := m.list.View()

	if m.mode != modeBrowse {
		title := "Add new item"
		if m.mode == modeEdit {
			title = fmt.Sprintf("Edit #%d", m.editID)
		}
		if m.inputErr != "" {
			title += " " + errorStyle.Render(m.inputErr)
		}
		content += "\n" + panelStyle.Render(title+"\n"+m.ti.View())
	}

	switch {
	case m.err != nil:
		content += "\n" + errorStyle.Render("✖ "+errorText(m.err))
	case m.loading:
		content += "\n" + mutedStyle.Render("loading...")
	case m.status != "":
		content += "\n" + successStyle.Render("✔ "+m.status)
	}

	return panelStyle.Render(content)
}

func errorText(err error) string {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return "token rejected: run todoism-cli login again"
	}
	return err.Error()
}
