// Package correction drives the multi-step interactive flows that edit the
// attendance ledger: select a record, enter a new time or pick a kind, then
// confirm. Flow state is transient and process-local; it never touches the
// persisted schema.
package correction

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Taiyaki256/discord-kintai/internal/ledger"
	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/parser"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
	"github.com/Taiyaki256/discord-kintai/internal/view"
)

// State is a position in the correction flow.
type State int

const (
	StateIdle State = iota
	StateSelectingAction
	StateSelectingTarget
	StateAwaitingNewRecordKind
	StateAwaitingTimeInput
	StateAwaitingConfirmation
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelectingAction:
		return "selecting_action"
	case StateSelectingTarget:
		return "selecting_target"
	case StateAwaitingNewRecordKind:
		return "awaiting_new_record_kind"
	case StateAwaitingTimeInput:
		return "awaiting_time_input"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Action is what the user chose to do with the day's records.
type Action int

const (
	ActionNone Action = iota
	ActionEdit
	ActionDelete
	ActionAdd
)

// PendingChange holds a parsed but unconfirmed mutation.
type PendingChange struct {
	Kind    models.EventKind // for Add
	NewTime time.Time
}

// Flow is one in-flight correction session.
type Flow struct {
	ID              string
	UserID          uint
	Date            timeutil.Date
	InvokingContext string // opaque handle back to the surface that started the flow

	State         State
	Action        Action
	TargetEventID uint // 0 until a record is selected; stays 0 for add and delete-all
	DeleteAll     bool
	Pending       *PendingChange
	ExpiresAt     time.Time
	Page          int
}

// FlowTTL is how long a flow may sit between interactions.
const FlowTTL = 5 * time.Minute

// pageSize matches the selection widget's item limit.
const pageSize = 25

// CommitResult describes what a confirmed flow did to the ledger.
type CommitResult struct {
	Action  Action
	Event   models.AttendanceEvent // the touched event, zero for delete-all
	Deleted int                    // events removed (delete paths)
}

// Manager owns every in-flight flow, keyed by flow id. Expiry is enforced on
// each incoming interaction; Sweep exists only to reclaim memory for
// abandoned flows.
type Manager struct {
	mu    sync.Mutex
	flows map[string]*Flow
	svc   *ledger.Service
	clock timeutil.Clock
	ttl   time.Duration
}

func NewManager(svc *ledger.Service, clock timeutil.Clock) *Manager {
	return &Manager{
		flows: make(map[string]*Flow),
		svc:   svc,
		clock: clock,
		ttl:   FlowTTL,
	}
}

// SetTTL overrides how long a flow may idle between interactions. Zero or
// negative values keep the current deadline.
func (m *Manager) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		m.ttl = ttl
	}
}

// Begin starts a correction flow over one user's date and returns the flow
// with the date's ledger for display.
func (m *Manager) Begin(userID uint, date timeutil.Date, invokingContext string) (Flow, view.LedgerView, error) {
	lv, err := m.ledgerView(userID, date, 0)
	if err != nil {
		return Flow{}, view.LedgerView{}, err
	}

	f := &Flow{
		ID:              uuid.NewString(),
		UserID:          userID,
		Date:            date,
		InvokingContext: invokingContext,
		State:           StateSelectingAction,
		ExpiresAt:       m.clock.Now().Add(m.ttl),
	}

	m.mu.Lock()
	m.flows[f.ID] = f
	m.mu.Unlock()
	return *f, lv, nil
}

// Choose picks what to do with the day's records. Edit and Delete need at
// least one existing record; without any the flow is destroyed and the user
// must re-invoke.
func (m *Manager) Choose(flowID string, action Action) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return Flow{}, err
	}
	if f.State != StateSelectingAction {
		return Flow{}, m.badTransition(f, "choose")
	}

	switch action {
	case ActionEdit, ActionDelete:
		events, err := m.svc.DayEvents(f.UserID, f.Date)
		if err != nil {
			delete(m.flows, f.ID)
			return Flow{}, err
		}
		if len(events) == 0 {
			delete(m.flows, f.ID)
			return Flow{}, ledger.ErrNoRecordsToEdit
		}
		f.Action = action
		f.State = StateSelectingTarget
	case ActionAdd:
		f.Action = action
		f.State = StateAwaitingNewRecordKind
	default:
		return Flow{}, fmt.Errorf("unknown correction action %d", action)
	}

	m.touch(f)
	return *f, nil
}

// PickTarget selects the record the flow operates on. The edit path moves on
// to time input; the delete path goes straight to confirmation.
func (m *Manager) PickTarget(flowID string, eventID uint) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return Flow{}, err
	}
	if f.State != StateSelectingTarget {
		return Flow{}, m.badTransition(f, "pick target")
	}

	f.TargetEventID = eventID
	switch f.Action {
	case ActionEdit:
		f.State = StateAwaitingTimeInput
	case ActionDelete:
		f.State = StateAwaitingConfirmation
	default:
		return Flow{}, m.badTransition(f, "pick target")
	}

	m.touch(f)
	return *f, nil
}

// PickAll selects every record of the date for deletion.
func (m *Manager) PickAll(flowID string) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return Flow{}, err
	}
	if f.State != StateSelectingTarget || f.Action != ActionDelete {
		return Flow{}, m.badTransition(f, "pick all")
	}

	f.TargetEventID = 0
	f.DeleteAll = true
	f.State = StateAwaitingConfirmation
	m.touch(f)
	return *f, nil
}

// PickKind sets the kind of the record the add path will create.
func (m *Manager) PickKind(flowID string, kind models.EventKind) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return Flow{}, err
	}
	if f.State != StateAwaitingNewRecordKind {
		return Flow{}, m.badTransition(f, "pick kind")
	}
	if !kind.Valid() {
		return Flow{}, fmt.Errorf("%w: %q", ledger.ErrUnknownEventKind, kind)
	}

	f.Pending = &PendingChange{Kind: kind}
	f.TargetEventID = 0
	f.State = StateAwaitingTimeInput
	m.touch(f)
	return *f, nil
}

// SubmitTime parses and validates "HH:MM" input. A rejected input leaves the
// flow in AwaitingTimeInput so the user can resubmit until the flow expires;
// an accepted one moves on to confirmation.
func (m *Manager) SubmitTime(flowID string, text string) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return Flow{}, err
	}
	if f.State != StateAwaitingTimeInput {
		return Flow{}, m.badTransition(f, "submit time")
	}

	tod, err := parser.ParseClockTime(text)
	if err != nil {
		return *f, err
	}
	ts := timeutil.Combine(f.Date, tod)

	events, err := m.svc.DayEvents(f.UserID, f.Date)
	if err != nil {
		delete(m.flows, f.ID)
		return Flow{}, err
	}
	if err := ledger.ValidateNewEvent(events, ts, f.TargetEventID, m.clock.Now()); err != nil {
		return *f, err
	}

	if f.Pending == nil {
		f.Pending = &PendingChange{}
	}
	f.Pending.NewTime = ts
	f.State = StateAwaitingConfirmation
	m.touch(f)
	return *f, nil
}

// Confirm commits the pending mutation. The flow is destroyed in the same
// critical section that commits, so a duplicate confirm finds no flow and
// fails with ErrSessionExpired instead of applying the mutation twice.
func (m *Manager) Confirm(flowID string) (CommitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return CommitResult{}, err
	}
	if f.State != StateAwaitingConfirmation {
		return CommitResult{}, m.badTransition(f, "confirm")
	}

	// At most one commit per flow instance, even if the commit itself fails.
	delete(m.flows, f.ID)

	res := CommitResult{Action: f.Action}
	switch f.Action {
	case ActionEdit:
		if f.Pending == nil {
			return CommitResult{}, fmt.Errorf("correction flow %s has no pending time", f.ID)
		}
		res.Event, err = m.svc.EditEventTime(f.TargetEventID, f.Pending.NewTime)
	case ActionAdd:
		if f.Pending == nil {
			return CommitResult{}, fmt.Errorf("correction flow %s has no pending record", f.ID)
		}
		res.Event, err = m.svc.AddEvent(f.UserID, f.Pending.Kind, f.Pending.NewTime)
	case ActionDelete:
		if f.DeleteAll {
			var events []models.AttendanceEvent
			events, err = m.svc.DayEvents(f.UserID, f.Date)
			if err == nil {
				res.Deleted = len(events)
				err = m.svc.DeleteDay(f.UserID, f.Date)
			}
		} else {
			res.Deleted = 1
			err = m.svc.DeleteEvent(f.TargetEventID)
		}
	default:
		return CommitResult{}, m.badTransition(f, "confirm")
	}
	if err != nil {
		return CommitResult{}, err
	}
	return res, nil
}

// Decline discards the pending mutation and destroys the flow.
func (m *Manager) Decline(flowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return err
	}
	if f.State != StateAwaitingConfirmation {
		return m.badTransition(f, "decline")
	}
	delete(m.flows, f.ID)
	return nil
}

// Cancel destroys the flow from any state without touching the ledger.
func (m *Manager) Cancel(flowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flows[flowID]; !ok {
		return ledger.ErrSessionExpired
	}
	delete(m.flows, flowID)
	return nil
}

// Get returns a snapshot of a live flow.
func (m *Manager) Get(flowID string) (Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := m.liveFlow(flowID)
	if err != nil {
		return Flow{}, err
	}
	return *f, nil
}

// LedgerPage returns one page of the flow's date ledger for selection.
func (m *Manager) LedgerPage(flowID string, page int) (view.LedgerView, error) {
	m.mu.Lock()
	f, err := m.liveFlow(flowID)
	if err != nil {
		m.mu.Unlock()
		return view.LedgerView{}, err
	}
	if page < 0 {
		page = 0
	}
	f.Page = page
	userID, date := f.UserID, f.Date
	m.mu.Unlock()

	return m.ledgerView(userID, date, page)
}

// Sweep drops every expired flow and returns how many it removed. Expiry is
// already enforced per interaction; sweeping only reclaims memory.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	removed := 0
	for id, f := range m.flows {
		if now.After(f.ExpiresAt) {
			delete(m.flows, id)
			removed++
		}
	}
	return removed
}

// liveFlow looks a flow up and enforces expiry. Callers hold m.mu.
func (m *Manager) liveFlow(flowID string) (*Flow, error) {
	f, ok := m.flows[flowID]
	if !ok {
		return nil, ledger.ErrSessionExpired
	}
	if m.clock.Now().After(f.ExpiresAt) {
		delete(m.flows, flowID)
		return nil, ledger.ErrSessionExpired
	}
	return f, nil
}

// touch extends the flow's deadline after a successful interaction.
func (m *Manager) touch(f *Flow) {
	f.ExpiresAt = m.clock.Now().Add(m.ttl)
}

func (m *Manager) badTransition(f *Flow, interaction string) error {
	return fmt.Errorf("cannot %s in state %s", interaction, f.State)
}

func (m *Manager) ledgerView(userID uint, date timeutil.Date, page int) (view.LedgerView, error) {
	events, err := m.svc.DayEvents(userID, date)
	if err != nil {
		return view.LedgerView{}, err
	}
	return BuildLedgerView(date, events, page), nil
}

// BuildLedgerView pages a date's events into selection rows.
func BuildLedgerView(date timeutil.Date, events []models.AttendanceEvent, page int) view.LedgerView {
	lv := view.LedgerView{Date: date, Page: page}

	start := page * pageSize
	if start > len(events) {
		start = len(events)
	}
	end := start + pageSize
	if end > len(events) {
		end = len(events)
	}
	lv.HasMore = end < len(events)

	for _, ev := range events[start:end] {
		entry := view.LedgerEntry{
			SelectionKey: fmt.Sprintf("%d", ev.ID),
			Kind:         ev.Kind.Label(),
			Clock:        timeutil.FormatClock(ev.Timestamp),
			Modified:     ev.Modified,
		}
		if ev.Modified && ev.OriginalTimestamp != nil {
			entry.OriginalClock = timeutil.FormatClock(*ev.OriginalTimestamp)
		}
		lv.Entries = append(lv.Entries, entry)
	}
	return lv
}
