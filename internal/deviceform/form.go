// ABOUTME: Device create/edit form with a server-resolved user reference
// ABOUTME: Operations return tea.Cmds; results come back as messages through Update

package deviceform

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ptisa/inventory-admin/internal/client"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce delays the suggestion search after the last keystroke
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrClosed is returned by operations on a closed form
	ErrClosed = errors.New("form is closed")
	// ErrFieldLocked is returned when editing a field the mode does not allow
	ErrFieldLocked = errors.New("field cannot be changed when editing")
	// ErrCatalogsNotLoaded is returned when a selection is made before the catalogs join
	ErrCatalogsNotLoaded = errors.New("catalogs are still loading")
	// ErrDerivedField is returned by Set for the user email, which goes through the lookup
	ErrDerivedField = errors.New("user email is set through the lookup operations")
	// ErrSubmitInFlight is returned by a second Submit before the first answers
	ErrSubmitInFlight = errors.New("a submit is already in progress")
)

// Backend is the part of the API the form talks to
type Backend interface {
	SearchUsers(ctx context.Context, partialEmail string) ([]client.User, error)
	UserByEmail(ctx context.Context, email string) (*client.User, error)
	Locations(ctx context.Context) ([]client.CatalogItem, error)
	Statuses(ctx context.Context) ([]client.CatalogItem, error)
	Brands(ctx context.Context) ([]client.CatalogItem, error)
	Models(ctx context.Context) ([]client.CatalogItem, error)
	CreateDevice(ctx context.Context, in *client.DevicePayload) (*client.Device, error)
	UpdateDevice(ctx context.Context, id int, in *client.DevicePayload) (*client.Device, error)
}

// Mode tells whether the form creates a device or edits one
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Catalogs are the reference lists behind the selection fields
type Catalogs struct {
	Locations []client.CatalogItem
	Statuses  []client.CatalogItem
	Brands    []client.CatalogItem
	Models    []client.CatalogItem
}

// For returns the catalog that backs a selection field
func (c *Catalogs) For(f Field) []client.CatalogItem {
	if c == nil {
		return nil
	}
	switch f {
	case FieldBrand:
		return c.Brands
	case FieldModel:
		return c.Models
	case FieldStatus:
		return c.Statuses
	case FieldLocation:
		return c.Locations
	}
	return nil
}

// LoadCatalogs fetches every catalog concurrently and succeeds only if all do
func LoadCatalogs(ctx context.Context, b Backend) (*Catalogs, error) {
	var cats Catalogs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cats.Locations, err = b.Locations(gctx); return err })
	g.Go(func() (err error) { cats.Statuses, err = b.Statuses(gctx); return err })
	g.Go(func() (err error) { cats.Brands, err = b.Brands(gctx); return err })
	g.Go(func() (err error) { cats.Models, err = b.Models(gctx); return err })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &cats, nil
}

// formSeq gives every form instance its own message address
var formSeq atomic.Uint64

// CatalogsLoadedMsg carries the joined catalog fetch
type CatalogsLoadedMsg struct {
	formID   uint64
	Catalogs *Catalogs
	Err      error
}

type suggestDebounceMsg struct {
	formID uint64
	gen    uint64
	text   string
}

// SuggestionsMsg carries the candidates for one generation of email input
type SuggestionsMsg struct {
	formID uint64
	gen    uint64
	Users  []client.User
	Err    error
}

type userResolvedMsg struct {
	formID uint64
	gen    uint64
	user   *client.User
	err    error
}

type submittedMsg struct {
	formID uint64
	device *client.Device
	err    error
}

// SavedMsg is emitted once the backend accepted the draft
type SavedMsg struct {
	Mode   Mode
	Device *client.Device
}

// SaveFailedMsg is emitted when the backend rejected the draft.
// Message is the server's text when it sent one.
type SaveFailedMsg struct {
	Message string
	Err     error
}

// Option configures a Form
type Option func(*Form)

// WithDebounce overrides the suggestion delay
func WithDebounce(d time.Duration) Option {
	return func(f *Form) { f.debounce = d }
}

// Form owns one draft. Nothing is shared between instances.
type Form struct {
	id       uint64
	backend  Backend
	mode     Mode
	deviceID int
	pending  *client.Device
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	draft      Draft
	catalogs   *Catalogs
	catalogErr error
	// unfilled holds edit-mode fields the listed device could not populate
	unfilled map[Field]bool

	emailGen    uint64
	suggestions []client.User

	resolveGen    uint64
	loadingUserID bool

	submitting bool
	lastErr    string
}

// New creates an empty form for registering a device
func New(b Backend, opts ...Option) *Form {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Form{
		id:       formSeq.Add(1),
		backend:  b,
		mode:     ModeCreate,
		debounce: DefaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewEdit creates a form for an existing device. Its display names are
// mapped back to identifiers once the catalogs have loaded.
func NewEdit(b Backend, device client.Device, opts ...Option) *Form {
	f := New(b, opts...)
	f.mode = ModeEdit
	f.deviceID = device.ID
	f.pending = &device
	return f
}

// Open starts the catalog fetch
func (f *Form) Open() tea.Cmd {
	if f.closed {
		return nil
	}
	id, ctx, b := f.id, f.ctx, f.backend
	return func() tea.Msg {
		cats, err := LoadCatalogs(ctx, b)
		return CatalogsLoadedMsg{formID: id, Catalogs: cats, Err: err}
	}
}

// Close discards the form. Results of requests still in flight are dropped.
func (f *Form) Close() {
	if f.closed {
		return
	}
	f.closed = true
	f.cancel()
	f.suggestions = nil
	f.loadingUserID = false
}

// Update applies a message produced by one of this form's commands.
// Messages addressed to other forms, or arriving after Close, are ignored.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if f.closed {
		return nil
	}

	switch msg := msg.(type) {
	case CatalogsLoadedMsg:
		if msg.formID != f.id {
			return nil
		}
		if msg.Err != nil {
			f.catalogErr = msg.Err
			slog.Warn("Catalog load failed", "error", msg.Err)
			return nil
		}
		f.catalogs = msg.Catalogs
		f.catalogErr = nil
		if f.pending != nil {
			f.populate(*f.pending)
			f.pending = nil
			if f.draft.UserID == "" && f.draft.UserEmail != "" {
				return f.resolve(f.draft.UserEmail)
			}
		}

	case suggestDebounceMsg:
		if msg.formID != f.id || msg.gen != f.emailGen {
			return nil
		}
		return f.search(msg.gen, msg.text)

	case SuggestionsMsg:
		if msg.formID != f.id || msg.gen != f.emailGen {
			return nil
		}
		if msg.Err != nil {
			slog.Debug("User suggestions unavailable", "error", msg.Err)
			f.suggestions = nil
			return nil
		}
		f.suggestions = msg.Users

	case userResolvedMsg:
		if msg.formID != f.id || msg.gen != f.resolveGen {
			return nil
		}
		f.loadingUserID = false
		if msg.err != nil || msg.user == nil || msg.user.ID == 0 {
			slog.Debug("User resolve failed", "email", f.draft.UserEmail, "error", msg.err)
			f.draft.UserID = ""
			if f.mode == ModeEdit {
				f.unlock(FieldUserEmail)
			}
			return nil
		}
		f.draft.UserID = strconv.Itoa(msg.user.ID)

	case submittedMsg:
		if msg.formID != f.id {
			return nil
		}
		f.submitting = false
		if msg.err != nil {
			f.lastErr = submitMessage(msg.err)
			out := SaveFailedMsg{Message: f.lastErr, Err: msg.err}
			return func() tea.Msg { return out }
		}
		f.lastErr = ""
		out := SavedMsg{Mode: f.mode, Device: msg.device}
		return func() tea.Msg { return out }
	}

	return nil
}

// Set changes a plain field or a catalog selection
func (f *Form) Set(field Field, value string) error {
	if f.closed {
		return ErrClosed
	}
	if field == FieldUserEmail {
		return ErrDerivedField
	}
	if !f.Editable(field) {
		return ErrFieldLocked
	}
	if field.IsSelection() && f.catalogs == nil {
		return ErrCatalogsNotLoaded
	}
	f.draft.set(field, value)
	return nil
}

// OnEmailInputChange records typed email text and schedules a debounced
// suggestion search. Each call starts a new generation; older results are dropped.
func (f *Form) OnEmailInputChange(text string) tea.Cmd {
	if f.closed || !f.Editable(FieldUserEmail) {
		return nil
	}
	f.draft.UserEmail = text
	// The id was derived from the previous text
	f.draft.UserID = ""
	f.resolveGen++
	f.loadingUserID = false

	f.emailGen++
	gen := f.emailGen
	if strings.TrimSpace(text) == "" {
		f.suggestions = nil
		return nil
	}

	id := f.id
	return tea.Tick(f.debounce, func(time.Time) tea.Msg {
		return suggestDebounceMsg{formID: id, gen: gen, text: text}
	})
}

func (f *Form) search(gen uint64, text string) tea.Cmd {
	id, ctx, b := f.id, f.ctx, f.backend
	return func() tea.Msg {
		users, err := b.SearchUsers(ctx, strings.TrimSpace(text))
		return SuggestionsMsg{formID: id, gen: gen, Users: users, Err: err}
	}
}

// OnCandidateSelected takes the user from a suggestion. The candidate's
// location fills the location field only when it is still unset.
func (f *Form) OnCandidateSelected(candidate client.User) {
	if f.closed || !f.Editable(FieldUserEmail) || candidate.ID == 0 {
		return
	}
	f.emailGen++
	f.suggestions = nil
	f.resolveGen++
	f.loadingUserID = false

	f.draft.UserID = strconv.Itoa(candidate.ID)
	f.draft.UserEmail = candidate.Email
	if candidate.Location != nil && candidate.Location.ID != 0 && strings.TrimSpace(f.draft.LocationID) == "" {
		f.draft.LocationID = strconv.Itoa(candidate.Location.ID)
	}
}

// OnEmailBlurredWithoutSelection resolves typed text directly. Submission is
// blocked until the answer arrives.
func (f *Form) OnEmailBlurredWithoutSelection(text string) tea.Cmd {
	if f.closed || !f.Editable(FieldUserEmail) {
		return nil
	}
	text = strings.TrimSpace(text)
	if text != f.draft.UserEmail {
		f.draft.UserEmail = text
		f.draft.UserID = ""
	}
	f.emailGen++
	f.suggestions = nil

	if text == "" {
		f.draft.UserID = ""
		return nil
	}
	if f.draft.UserID != "" {
		return nil
	}

	return f.resolve(text)
}

func (f *Form) resolve(email string) tea.Cmd {
	f.resolveGen++
	gen := f.resolveGen
	f.loadingUserID = true

	id, ctx, b := f.id, f.ctx, f.backend
	return func() tea.Msg {
		user, err := b.UserByEmail(ctx, email)
		return userResolvedMsg{formID: id, gen: gen, user: user, err: err}
	}
}

// Submit validates the draft and, when it passes, sends it to the backend.
// A rejected draft is left untouched and no request is made.
func (f *Form) Submit() (tea.Cmd, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if f.submitting {
		return nil, ErrSubmitInFlight
	}
	if err := Validate(f.draft, f.loadingUserID); err != nil {
		return nil, err
	}
	payload, err := Payload(f.draft)
	if err != nil {
		return nil, err
	}

	f.submitting = true
	id, ctx, b, mode, deviceID := f.id, f.ctx, f.backend, f.mode, f.deviceID
	return func() tea.Msg {
		var device *client.Device
		var err error
		if mode == ModeEdit {
			device, err = b.UpdateDevice(ctx, deviceID, payload)
		} else {
			device, err = b.CreateDevice(ctx, payload)
		}
		return submittedMsg{formID: id, device: device, err: err}
	}, nil
}

// Editable reports whether the mode allows changing the field. In edit
// mode a locked field stays open when the listed device left it blank.
func (f *Form) Editable(field Field) bool {
	if f.mode == ModeCreate || f.unfilled[field] {
		return true
	}
	switch field {
	case FieldStatus, FieldLocation, FieldNote, FieldPrice:
		return true
	}
	return false
}

// Draft returns a copy of the current draft
func (f *Form) Draft() Draft { return f.draft }

// Mode returns whether the form creates or edits
func (f *Form) Mode() Mode { return f.mode }

// DeviceID is the record being edited, zero when creating
func (f *Form) DeviceID() int { return f.deviceID }

// Ready reports whether all catalogs have loaded
func (f *Form) Ready() bool { return f.catalogs != nil }

// Catalogs returns the loaded catalogs, nil before the join completes
func (f *Form) Catalogs() *Catalogs { return f.catalogs }

// CatalogErr is the error of the last failed catalog load
func (f *Form) CatalogErr() error { return f.catalogErr }

// Suggestions returns the candidates for the latest email input
func (f *Form) Suggestions() []client.User { return f.suggestions }

// LoadingUserID reports whether a resolve-by-email is in flight
func (f *Form) LoadingUserID() bool { return f.loadingUserID }

// Submitting reports whether a submit is waiting for the backend
func (f *Form) Submitting() bool { return f.submitting }

// LastError is the message of the last failed submit
func (f *Form) LastError() string { return f.lastErr }

// Closed reports whether Close was called
func (f *Form) Closed() bool { return f.closed }

// populate fills the draft from a listed device, mapping display names to ids
func (f *Form) populate(d client.Device) {
	f.draft = Draft{
		Code:          d.Code,
		BrandID:       lookupID(f.catalogs.Brands, d.Brand),
		ModelID:       lookupID(f.catalogs.Models, d.Model),
		Serial:        d.Serial,
		Specification: d.Specification,
		Type:          d.Type,
		Note:          d.Note,
		Price:         strconv.FormatFloat(d.Price, 'f', -1, 64),
		StatusID:      lookupID(f.catalogs.Statuses, d.Status),
		LocationID:    lookupID(f.catalogs.Locations, d.Location),
		UserEmail:     d.UserEmail,
	}
	if d.UserID > 0 {
		f.draft.UserID = strconv.Itoa(d.UserID)
	}
	for _, field := range lockedInEdit {
		if strings.TrimSpace(f.draft.Get(field)) == "" {
			f.unlock(field)
		}
	}
}

var lockedInEdit = []Field{
	FieldCode, FieldBrand, FieldModel, FieldSerial, FieldSpecification, FieldType, FieldUserEmail,
}

func (f *Form) unlock(field Field) {
	if f.unfilled == nil {
		f.unfilled = make(map[Field]bool)
	}
	f.unfilled[field] = true
}

func lookupID(items []client.CatalogItem, name string) string {
	name = strings.TrimSpace(name)
	for _, it := range items {
		if strings.EqualFold(strings.TrimSpace(it.Name), name) {
			return strconv.Itoa(it.ID)
		}
	}
	return ""
}

// NameFor returns the display name of a catalog selection
func NameFor(items []client.CatalogItem, id string) string {
	for _, it := range items {
		if strconv.Itoa(it.ID) == id {
			return it.Name
		}
	}
	return ""
}

func submitMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgSaveFailed
}
