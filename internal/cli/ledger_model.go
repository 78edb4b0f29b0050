package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/alexanderramin/timesheet/internal/calendar"
	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/ledger"
	"github.com/alexanderramin/timesheet/internal/service"
)

// ledgerLoadedMsg signals that a session load finished.
type ledgerLoadedMsg struct{ err error }

type rowSavedMsg struct {
	key string
	row ledger.Row
	err error
}

type rowDeletedMsg struct {
	key string
	err error
}

type csvExportedMsg struct {
	path string
	err  error
}

// ledgerModel is the interactive month ledger.
type ledgerModel struct {
	app     *App
	actor   *domain.User
	owner   *domain.User
	catalog *service.Catalog
	session *ledger.Session

	periods []domain.Period
	pidx    int
	cursor  int

	status    string
	statusErr bool

	form     *huh.Form
	formVals *entryForm
	picker   *huh.Form
	pickedID string

	keys ledgerKeyMap
	help help.Model
}

func newLedgerModel(app *App, target *ledgerTarget, catalog *service.Catalog) *ledgerModel {
	m := &ledgerModel{
		app:     app,
		actor:   target.actor,
		owner:   target.owner,
		catalog: catalog,
		session: newSession(app, target.actor, app.config().Ledger.ShowEmptyDays),
		periods: target.periods,
		keys:    defaultLedgerKeys(),
		help:    help.New(),
	}
	m.pidx = slices.IndexFunc(m.periods, target.period.Same)
	if m.pidx < 0 {
		m.pidx = len(m.periods) - 1
	}
	return m
}

func (m *ledgerModel) period() domain.Period {
	return m.periods[m.pidx]
}

func (m *ledgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *ledgerModel) loadCmd() tea.Cmd {
	session := m.session
	period, owner := m.period(), *m.owner
	return func() tea.Msg {
		return ledgerLoadedMsg{err: session.Load(context.Background(), period, owner)}
	}
}

func (m *ledgerModel) saveCmd(key string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		row, err := session.Save(context.Background(), key)
		return rowSavedMsg{key: key, row: row, err: err}
	}
}

func (m *ledgerModel) deleteCmd(key string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return rowDeletedMsg{key: key, err: session.Delete(context.Background(), key)}
	}
}

func (m *ledgerModel) exportCmd() tea.Cmd {
	app, session, period := m.app, m.session, m.period()
	return func() tea.Msg {
		path, err := saveLedgerCSV(app, "", period, session)
		return csvExportedMsg{path: path, err: err}
	}
}

func (m *ledgerModel) setStatus(msg string) {
	m.status, m.statusErr = msg, false
}

// setError shows err unless it reports a result that a newer load made
// irrelevant.
func (m *ledgerModel) setError(err error) {
	if errors.Is(err, ledger.ErrStaleLoad) {
		return
	}
	m.status, m.statusErr = describeError(err), true
}

func describeError(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		parts := make([]string, 0, len(ve.Fields))
		for _, f := range slices.Sorted(maps.Keys(ve.Fields)) {
			parts = append(parts, f+": "+ve.Fields[f])
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}

func (m *ledgerModel) clampCursor() {
	n := len(m.session.Rows())
	m.cursor = max(min(m.cursor, n-1), 0)
}

func (m *ledgerModel) currentRow() (ledger.Row, bool) {
	rows := m.session.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return ledger.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *ledgerModel) focusKey(key string) {
	if i := slices.IndexFunc(m.session.Rows(), func(r ledger.Row) bool { return r.Key() == key }); i >= 0 {
		m.cursor = i
	}
}

func (m *ledgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case ledgerLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.clampCursor()
		return m, nil

	case rowSavedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.focusKey(msg.row.Key())
		m.setStatus("Saved " + msg.row.Entry.DateString())
		return m, nil

	case rowDeletedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.clampCursor()
		m.setStatus("Deleted")
		return m, nil

	case csvExportedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("Saved " + msg.path)
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.picker != nil {
		return m.updatePicker(msg)
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(keyMsg)
	}
	return m, nil
}

func (m *ledgerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.session.Rows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PrevMonth):
		if m.pidx > 0 {
			m.pidx--
			m.cursor = 0
			m.status = ""
			return m, m.loadCmd()
		}
	case key.Matches(msg, m.keys.NextMonth):
		if m.pidx < len(m.periods)-1 {
			m.pidx++
			m.cursor = 0
			m.status = ""
			return m, m.loadCmd()
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Add):
		return m, m.add()
	case key.Matches(msg, m.keys.Duplicate):
		if row, ok := m.currentRow(); ok {
			if _, err := m.session.Duplicate(row.Key()); err != nil {
				m.setError(err)
			}
		}
	case key.Matches(msg, m.keys.Edit):
		if row, ok := m.currentRow(); ok {
			return m, m.openForm(row)
		}
	case key.Matches(msg, m.keys.Save):
		if row, ok := m.currentRow(); ok {
			return m, m.saveCmd(row.Key())
		}
	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.currentRow(); ok {
			return m, m.deleteCmd(row.Key())
		}
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.SwitchUser):
		if !m.actor.IsAdmin {
			m.setError(fmt.Errorf("only admins can open another user's ledger: %w", service.ErrForbidden))
			return m, nil
		}
		m.pickedID = m.owner.ID
		m.picker = userPicker(m.catalog, &m.pickedID)
		return m, m.picker.Init()
	}
	return m, nil
}

// add inserts a blank row and opens it for editing. On a placeholder row
// the new row takes the placeholder's date.
func (m *ledgerModel) add() tea.Cmd {
	var date time.Time
	if row, ok := m.currentRow(); ok && row.Kind() == ledger.KindPlaceholder {
		date = row.Entry.Date
	}
	row, err := m.session.AddBlank()
	if err != nil {
		m.setError(err)
		return nil
	}
	if !date.IsZero() {
		fields := row.Entry.Fields()
		fields.Date = date
		if row, err = m.session.Edit(row.Key(), fields); err != nil {
			m.setError(err)
			return nil
		}
	}
	m.cursor = 0
	return m.openForm(row)
}

func (m *ledgerModel) openForm(row ledger.Row) tea.Cmd {
	if !m.session.IsEditable(row) {
		if row.Kind() == ledger.KindPlaceholder {
			m.setError(ledger.ErrPlaceholderRow)
		} else {
			m.setError(ledger.ErrLockedPeriod)
		}
		return nil
	}
	m.formVals = newEntryForm(row)
	m.form = m.formVals.build(m.catalog)
	return m.form.Init()
}

func (m *ledgerModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form, m.formVals = nil, nil
		m.setStatus("Cancelled")
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		vals := m.formVals
		m.form, m.formVals = nil, nil
		return m, tea.Batch(cmd, m.submitForm(vals))
	case huh.StateAborted:
		m.form, m.formVals = nil, nil
		return m, nil
	}
	return m, cmd
}

// submitForm applies the form values to the row and saves it.
func (m *ledgerModel) submitForm(vals *entryForm) tea.Cmd {
	row, ok := m.session.Row(vals.key)
	if !ok {
		m.setError(ledger.ErrRowNotFound)
		return nil
	}
	fields, err := vals.fields(row.Entry.Fields())
	if err != nil {
		m.setError(err)
		return nil
	}
	if _, err := m.session.Edit(vals.key, fields); err != nil {
		m.setError(err)
		return nil
	}
	return m.saveCmd(vals.key)
}

func (m *ledgerModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.picker = nil
		return m, nil
	}
	form, cmd := m.picker.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.picker = f
	}
	if m.picker.State != huh.StateCompleted {
		return m, cmd
	}
	m.picker = nil
	return m, m.switchOwner(m.pickedID)
}

// switchOwner opens the ledger of the user with id on the current month.
func (m *ledgerModel) switchOwner(id string) tea.Cmd {
	for _, u := range m.catalog.Users {
		if u.ID != id {
			continue
		}
		periods := ledgerPeriods(m.app, m.actor, u)
		if len(periods) == 0 {
			m.setError(fmt.Errorf("user %q has no start date", u.Username))
			return nil
		}
		current, _ := calendar.Current(periods, m.app.now())
		m.owner, m.periods = u, periods
		m.pidx = slices.IndexFunc(periods, current.Same)
		m.cursor = 0
		m.setStatus("Opened " + u.Name())
		return m.loadCmd()
	}
	m.setError(fmt.Errorf("user %q not found", id))
	return nil
}

func (m *ledgerModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Bold(formatter.LedgerTitle(m.period(), m.owner.Name())) + "\n\n")

	if m.form != nil {
		b.WriteString(m.form.View() + "\n")
		b.WriteString(formatter.Dim("esc cancel") + "\n")
		return b.String()
	}
	if m.picker != nil {
		b.WriteString(m.picker.View() + "\n")
		return b.String()
	}

	state, loadErr := m.session.State()
	switch state {
	case ledger.StateEmpty, ledger.StateLoading:
		b.WriteString(formatter.Dim("Loading…") + "\n")
	case ledger.StateLoadFailed:
		b.WriteString(formatter.Error(loadErr) + "\n")
		b.WriteString(formatter.Dim("Press r to retry.") + "\n")
	case ledger.StateReady:
		rows := m.session.Rows()
		cells := make([][]string, len(rows))
		for i, r := range rows {
			cells[i] = formatter.LedgerRow(r, m.session.Busy(r.Key()))
		}
		if len(rows) == 0 {
			b.WriteString(formatter.Dim("No entries this month. Press a to add one.") + "\n\n")
		}
		b.WriteString(formatter.Table{
			Headers:   formatter.LedgerHeaders,
			Rows:      cells,
			Footer:    formatter.SummaryFooter(m.session.Summary()),
			Highlight: m.cursor,
		}.Render())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(formatter.StyleRed.Render(m.status))
		} else {
			b.WriteString(formatter.StyleGreen.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
