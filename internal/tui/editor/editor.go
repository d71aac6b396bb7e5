// ABOUTME: Device form screen rendering a deviceform.Form with bubbles inputs
// ABOUTME: Maps keys to form operations and shows suggestions, locks, and progress

package editor

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ptisa/inventory-admin/internal/client"
	"github.com/ptisa/inventory-admin/internal/deviceform"
	"github.com/ptisa/inventory-admin/internal/tui/icons"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
	"github.com/ptisa/inventory-admin/internal/tui/toast"
)

// CancelledMsg is sent when the user leaves the form without saving
type CancelledMsg struct{}

// maxSuggestions caps the candidate list under the email field
const maxSuggestions = 6

// Editor is the interactive view of one form instance
type Editor struct {
	form       *deviceform.Form
	inputs     map[deviceform.Field]textinput.Model
	focus      int
	suggestion int
	spinner    spinner.Model
	err        string
	errField   deviceform.Field
}

// New wraps a form. The form is opened by Init.
func New(form *deviceform.Form) *Editor {
	s := spinner.New()
	s.Spinner = spinner.Dot

	e := &Editor{
		form:       form,
		inputs:     make(map[deviceform.Field]textinput.Model),
		suggestion: -1,
		spinner:    s,
	}
	for _, f := range deviceform.Fields {
		if f.IsSelection() {
			continue
		}
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.Placeholder = placeholder(f)
		e.inputs[f] = in
	}
	e.focus = e.nextEditable(-1, 1)
	e.focusInput()
	return e
}

func placeholder(f deviceform.Field) string {
	switch f {
	case deviceform.FieldUserEmail:
		return "type to search users"
	case deviceform.FieldPrice:
		return "e.g. 1500000"
	case deviceform.FieldNote:
		return "optional"
	}
	return ""
}

// Form returns the wrapped form
func (e *Editor) Form() *deviceform.Form { return e.form }

// Close discards the form; late results are dropped
func (e *Editor) Close() { e.form.Close() }

// Focused returns the field with focus
func (e *Editor) Focused() deviceform.Field { return deviceform.Fields[e.focus] }

// Init implements tea.Model
func (e *Editor) Init() tea.Cmd {
	return tea.Batch(e.form.Open(), e.spinner.Tick, textinput.Blink)
}

func (e *Editor) busy() bool {
	return (!e.form.Ready() && e.form.CatalogErr() == nil) || e.form.LoadingUserID() || e.form.Submitting()
}

// Update implements tea.Model
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !e.busy() {
			return e, nil
		}
		var cmd tea.Cmd
		e.spinner, cmd = e.spinner.Update(msg)
		return e, cmd

	case tea.KeyMsg:
		return e.updateKey(msg)
	}

	cmd := e.form.Update(msg)
	e.syncInputs()
	return e, cmd
}

func (e *Editor) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := e.Focused()
	suggestions := e.visibleSuggestions()

	switch msg.String() {
	case "esc":
		return e, func() tea.Msg { return CancelledMsg{} }
	case "ctrl+r":
		if !e.form.Ready() {
			return e, tea.Batch(e.form.Open(), e.spinner.Tick)
		}
		return e, nil
	}
	// Nothing is entered until the catalogs have joined
	if !e.form.Ready() {
		return e, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return e, e.submit()
	case "tab":
		return e, e.move(1)
	case "shift+tab":
		return e, e.move(-1)
	case "down":
		if field == deviceform.FieldUserEmail && len(suggestions) > 0 {
			e.suggestion = min(e.suggestion+1, len(suggestions)-1)
			return e, nil
		}
		return e, e.move(1)
	case "up":
		if field == deviceform.FieldUserEmail && e.suggestion >= 0 {
			e.suggestion--
			return e, nil
		}
		return e, e.move(-1)
	case "enter":
		if field == deviceform.FieldUserEmail && e.suggestion >= 0 && e.suggestion < len(suggestions) {
			e.selectCandidate(suggestions[e.suggestion])
			return e, nil
		}
		return e, e.move(1)
	case "left", "right":
		if field.IsSelection() {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			e.cycle(field, step)
			return e, nil
		}
	}

	if field.IsSelection() || !e.form.Editable(field) {
		return e, nil
	}

	in := e.inputs[field]
	before := in.Value()
	in, cmd := in.Update(msg)
	e.inputs[field] = in
	if in.Value() == before {
		return e, cmd
	}

	e.clearError(field)
	if field == deviceform.FieldUserEmail {
		e.suggestion = -1
		return e, tea.Batch(cmd, e.form.OnEmailInputChange(in.Value()))
	}
	if err := e.form.Set(field, in.Value()); err != nil {
		e.err = err.Error()
	}
	return e, cmd
}

// move shifts focus to the next editable field. Leaving the email field with
// typed text and no chosen candidate resolves the address directly.
func (e *Editor) move(step int) tea.Cmd {
	var cmd tea.Cmd
	if e.Focused() == deviceform.FieldUserEmail && e.form.Editable(deviceform.FieldUserEmail) {
		if e.form.Draft().UserID == "" {
			cmd = tea.Batch(e.form.OnEmailBlurredWithoutSelection(e.inputs[deviceform.FieldUserEmail].Value()), e.spinner.Tick)
		}
		e.suggestion = -1
	}

	e.blurInput()
	e.focus = e.nextEditable(e.focus, step)
	return tea.Batch(cmd, e.focusInput())
}

func (e *Editor) nextEditable(from, step int) int {
	n := len(deviceform.Fields)
	for i := 1; i <= n; i++ {
		idx := ((from+step*i)%n + n) % n
		if e.form.Editable(deviceform.Fields[idx]) {
			return idx
		}
	}
	return 0
}

func (e *Editor) focusInput() tea.Cmd {
	if in, ok := e.inputs[e.Focused()]; ok {
		cmd := in.Focus()
		e.inputs[e.Focused()] = in
		return cmd
	}
	return nil
}

func (e *Editor) blurInput() {
	if in, ok := e.inputs[e.Focused()]; ok {
		in.Blur()
		e.inputs[e.Focused()] = in
	}
}

func (e *Editor) cycle(field deviceform.Field, step int) {
	items := e.form.Catalogs().For(field)
	if len(items) == 0 {
		return
	}
	draft := e.form.Draft()
	current := draft.Get(field)
	idx := -1
	for i, it := range items {
		if strconv.Itoa(it.ID) == current {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = len(items) - 1
	default:
		idx = (idx + step + len(items)) % len(items)
	}
	if err := e.form.Set(field, strconv.Itoa(items[idx].ID)); err != nil {
		e.err = err.Error()
		return
	}
	e.clearError(field)
}

func (e *Editor) selectCandidate(u client.User) {
	e.form.OnCandidateSelected(u)
	e.suggestion = -1
	e.clearError(deviceform.FieldUserEmail)
	e.syncInputs()
}

func (e *Editor) submit() tea.Cmd {
	cmd, err := e.form.Submit()
	if err != nil {
		e.err = err.Error()
		var verr *deviceform.ValidationError
		if errors.As(err, &verr) {
			e.errField = verr.Field
		}
		return toast.Error(err.Error())
	}
	e.err = ""
	e.errField = ""
	return tea.Batch(cmd, e.spinner.Tick)
}

func (e *Editor) clearError(field deviceform.Field) {
	if e.errField == "" || e.errField == field {
		e.err = ""
		e.errField = ""
	}
}

// syncInputs copies draft values into the inputs that do not match. The
// focused email input is the source of its own text and is left alone.
func (e *Editor) syncInputs() {
	d := e.form.Draft()
	for f, in := range e.inputs {
		v := d.Get(f)
		if f == deviceform.FieldUserEmail && f == e.Focused() && d.UserID == "" {
			continue
		}
		if in.Value() != v {
			in.SetValue(v)
			e.inputs[f] = in
		}
	}
}

func (e *Editor) visibleSuggestions() []client.User {
	s := e.form.Suggestions()
	if len(s) > maxSuggestions {
		s = s[:maxSuggestions]
	}
	return s
}

// Shortcuts lists the keys for the footer
func (e *Editor) Shortcuts() []string {
	return []string{"Tab Next", "←→ Choose", "ctrl+s Save", "Esc Cancel"}
}

// View implements tea.Model
func (e *Editor) View() string {
	var sb strings.Builder

	title := "Register device"
	if e.form.Mode() == deviceform.ModeEdit {
		title = "Edit device " + e.form.Draft().Code
	}
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")

	if !e.form.Ready() {
		if err := e.form.CatalogErr(); err != nil {
			sb.WriteString(styles.StatusCritical.Render("Could not load catalogs: " + err.Error()))
			sb.WriteString("\n")
			sb.WriteString(styles.Help.Render("ctrl+r retry  esc back"))
			return sb.String()
		}
		sb.WriteString(e.spinner.View() + " Loading catalogs...")
		return sb.String()
	}

	for i, f := range deviceform.Fields {
		label := styles.FieldLabel.Render(f.Label())
		if i == e.focus {
			label = styles.FocusedLabel.Render(f.Label())
		}
		sb.WriteString(label)
		sb.WriteString(e.renderValue(f, i == e.focus))
		sb.WriteString("\n")
		if f == deviceform.FieldUserEmail && i == e.focus {
			sb.WriteString(e.renderSuggestions())
		}
	}

	if e.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(e.err))
	} else if msg := e.form.LastError(); msg != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(msg))
	}
	if e.form.Submitting() {
		sb.WriteString("\n")
		sb.WriteString(e.spinner.View() + " Saving...")
	}
	return sb.String()
}

func (e *Editor) renderValue(f deviceform.Field, focused bool) string {
	d := e.form.Draft()

	if !e.form.Editable(f) {
		v := d.Get(f)
		if f.IsSelection() {
			v = deviceform.NameFor(e.form.Catalogs().For(f), v)
		}
		return styles.Locked.Render(v + " " + icons.Lock.String())
	}

	if f.IsSelection() {
		name := deviceform.NameFor(e.form.Catalogs().For(f), d.Get(f))
		if name == "" {
			name = "(select)"
		}
		if focused {
			return styles.Selected.Render("‹ " + name + " ›")
		}
		return name
	}

	out := e.inputs[f].View()
	if f == deviceform.FieldUserEmail {
		switch {
		case e.form.LoadingUserID():
			out += " " + e.spinner.View() + " validating"
		case d.UserID != "":
			out += " " + styles.StatusOK.Render(icons.CheckOK.String())
		}
	}
	return out
}

func (e *Editor) renderSuggestions() string {
	var sb strings.Builder
	for i, u := range e.visibleSuggestions() {
		line := icons.User.String() + " " + u.Email
		if u.Location != nil && u.Location.Name != "" {
			line += "  " + icons.Location.String() + " " + u.Location.Name
		}
		pad := strings.Repeat(" ", 16)
		if i == e.suggestion {
			sb.WriteString(pad + styles.Selected.Render("> "+line) + "\n")
		} else {
			sb.WriteString(pad + "  " + line + "\n")
		}
	}
	return sb.String()
}
