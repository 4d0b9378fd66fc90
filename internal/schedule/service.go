package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	redisclient "github.com/hackgods/clinidesk/internal/redis"
)

var ErrWorkspaceBusy = errors.New("workspace is being modified, please retry")

// Workspace is the scheduling session of one owner.
type Workspace struct {
	Book     *Book
	Editor   *Editor
	Calendar *Calendar
}

// EditorPatch carries the modal fields a client changed. Nil fields are left
// alone.
type EditorPatch struct {
	Start             *time.Time `json:"start,omitempty"`
	Duration          *int       `json:"duration,omitempty"`
	PatientID         *string    `json:"patient_id,omitempty"`
	AppointmentTypeID *string    `json:"appointment_type_id,omitempty"`
	Payer             *string    `json:"payer,omitempty"`
	Status            *Status    `json:"status,omitempty"`
	Title             *string    `json:"title,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
}

type Service struct {
	store    Store
	locker   redisclient.Locker
	log      *zap.Logger
	now      func() time.Time
	defaults WorkHours
	shared   bool
	newID    func() string
	loc      *time.Location
	lockWait time.Duration

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithDefaultWorkHours sets the hours an owner starts with before saving any.
func WithDefaultWorkHours(wh WorkHours) ServiceOption {
	return func(s *Service) { s.defaults = wh.clone() }
}

// WithSharedStore reloads events and work hours from the store on every call,
// for stores written by more than one server instance.
func WithSharedStore() ServiceOption {
	return func(s *Service) { s.shared = true }
}

// WithLocation sets the clinic time zone. Day boundaries for stats and the
// work-hour check on selections are taken in loc instead of the offsets the
// server clock or the client happen to carry.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) { s.loc = loc }
}

// WithLockWait bounds how long a call keeps retrying an owner lock held by
// another request before failing with ErrWorkspaceBusy.
func WithLockWait(d time.Duration) ServiceOption {
	return func(s *Service) { s.lockWait = d }
}

// WithEventIDs replaces the generator used for ids minted on save.
func WithEventIDs(fn func() string) ServiceOption {
	return func(s *Service) { s.newID = fn }
}

func NewService(store Store, locker redisclient.Locker, log *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		locker:     locker,
		log:        log,
		now:        time.Now,
		defaults:   DefaultWorkHours(),
		lockWait:   2 * time.Second,
		workspaces: make(map[string]*Workspace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const lockRetryInterval = 25 * time.Millisecond

// withWorkspace runs fn on the owner's workspace while holding the owner lock.
// A lock held elsewhere is retried until lockWait runs out.
func (s *Service) withWorkspace(ctx context.Context, ownerID string, fn func(ctx context.Context, ws *Workspace) error) error {
	deadline := time.Now().Add(s.lockWait)
	for {
		err := s.locker.WithOwnerLock(ctx, ownerID, func(lockCtx context.Context) error {
			ws, err := s.workspace(lockCtx, ownerID)
			if err != nil {
				return err
			}
			return fn(lockCtx, ws)
		})
		if !errors.Is(err, redisclient.ErrLockNotAcquired) {
			return err
		}
		if !time.Now().Before(deadline) {
			return ErrWorkspaceBusy
		}

		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// clock is the current time in the clinic location when one is set.
func (s *Service) clock() time.Time {
	now := s.now()
	if s.loc != nil {
		return now.In(s.loc)
	}
	return now
}

func (s *Service) workspace(ctx context.Context, ownerID string) (*Workspace, error) {
	s.mu.Lock()
	ws, ok := s.workspaces[ownerID]
	s.mu.Unlock()

	if ok && !s.shared {
		return ws, nil
	}

	catalog, err := s.store.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	events, err := s.store.LoadEvents(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	wh, found, err := s.store.LoadWorkHours(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load work hours: %w", err)
	}
	if !found {
		wh = s.defaults.clone()
	}

	var bookOpts []BookOption
	if s.newID != nil {
		bookOpts = append(bookOpts, WithIDGenerator(s.newID))
	}
	book := NewBook(events, wh, bookOpts...)

	if ok {
		// keep the open draft across reloads
		ws.Editor.SetCatalog(catalog)
		ws.Book = book
		ws.Calendar = NewCalendar(book, ws.Editor)
		return ws, nil
	}

	editor := NewEditor(catalog, s.clock)
	ws = &Workspace{Book: book, Editor: editor, Calendar: NewCalendar(book, editor)}

	s.mu.Lock()
	s.workspaces[ownerID] = ws
	s.mu.Unlock()

	s.log.Debug("workspace loaded",
		zap.String("owner_id", ownerID),
		zap.Int("events", book.Len()),
	)
	return ws, nil
}

// Events renders the owner's appointments for the calendar widget.
func (s *Service) Events(ctx context.Context, ownerID string) ([]WidgetEvent, error) {
	var out []WidgetEvent
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		out = Render(ws.Book.Events())
		return nil
	})
	return out, err
}

func (s *Service) Stats(ctx context.Context, ownerID string) (Snapshot, error) {
	var out Snapshot
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		out = ws.Book.Stats(s.clock())
		return nil
	})
	return out, err
}

func (s *Service) Options(ctx context.Context, ownerID string) (WidgetOptions, error) {
	var out WidgetOptions
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		out = Options(ws.Book.WorkHours())
		return nil
	})
	return out, err
}

// Lookups returns the catalog the editor selects from.
func (s *Service) Lookups(ctx context.Context, ownerID string) (Catalog, error) {
	var out Catalog
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		out = ws.Editor.Catalog()
		return nil
	})
	return out, err
}

func (s *Service) Select(ctx context.Context, ownerID string, r Range) (EditorState, error) {
	var out EditorState
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		if s.loc != nil {
			r = Range{Start: r.Start.In(s.loc), End: r.End.In(s.loc)}
		}
		var err error
		out, err = ws.Calendar.OnSelect(r)
		return err
	})
	return out, err
}

func (s *Service) Click(ctx context.Context, ownerID string, id EventID) (EditorState, error) {
	var out EditorState
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		var err error
		out, err = ws.Calendar.OnEventClick(id)
		return err
	})
	return out, err
}

func (s *Service) Drop(ctx context.Context, ownerID string, id EventID, r Range) (Event, error) {
	return s.move(ctx, ownerID, id, r, "dropped", func(ws *Workspace) (Event, error) {
		return ws.Calendar.OnEventDrop(id, r)
	})
}

func (s *Service) Resize(ctx context.Context, ownerID string, id EventID, r Range) (Event, error) {
	return s.move(ctx, ownerID, id, r, "resized", func(ws *Workspace) (Event, error) {
		return ws.Calendar.OnEventResize(id, r)
	})
}

func (s *Service) move(ctx context.Context, ownerID string, id EventID, r Range, verb string, apply func(*Workspace) (Event, error)) (Event, error) {
	var out Event
	err := s.withWorkspace(ctx, ownerID, func(lockCtx context.Context, ws *Workspace) error {
		prev, ok := ws.Book.Find(id)
		if !ok {
			return ErrEventNotFound
		}
		moved, err := apply(ws)
		if err != nil {
			return err
		}
		if err := s.store.UpsertEvent(lockCtx, ownerID, moved); err != nil {
			_, _ = ws.Book.Move(id, prev.Start, prev.End)
			return fmt.Errorf("persist event: %w", err)
		}
		out = moved
		return nil
	})
	if err == nil {
		s.log.Info("event "+verb,
			zap.String("owner_id", ownerID),
			zap.String("event_id", id.String()),
			zap.Time("start", r.Start),
			zap.Time("end", r.End),
		)
	}
	return out, err
}

func (s *Service) EditorState(ctx context.Context, ownerID string) (EditorState, error) {
	var out EditorState
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		out = ws.Editor.State()
		return nil
	})
	return out, err
}

// OpenEditor opens a blank draft when id is nil, otherwise a copy of the event.
func (s *Service) OpenEditor(ctx context.Context, ownerID string, id *EventID) (EditorState, error) {
	var out EditorState
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		if id == nil {
			out = ws.Editor.Open(nil)
			return nil
		}
		e, ok := ws.Book.Find(*id)
		if !ok {
			return ErrEventNotFound
		}
		out = ws.Editor.Open(&e)
		return nil
	})
	return out, err
}

// UpdateEditor applies every field of p or none of them.
func (s *Service) UpdateEditor(ctx context.Context, ownerID string, p EditorPatch) (EditorState, error) {
	var out EditorState
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		before := *ws.Editor
		if err := applyPatch(ws.Editor, p); err != nil {
			*ws.Editor = before
			return err
		}
		out = ws.Editor.State()
		return nil
	})
	return out, err
}

func applyPatch(ed *Editor, p EditorPatch) error {
	if !ed.IsOpen() {
		return ErrEditorClosed
	}
	if p.Duration != nil {
		if err := ed.SetDuration(*p.Duration); err != nil {
			return err
		}
	}
	if p.Start != nil {
		if err := ed.SetDateTime(*p.Start); err != nil {
			return err
		}
	}
	if p.PatientID != nil {
		if err := ed.SelectPatient(*p.PatientID); err != nil {
			return err
		}
	}
	if p.AppointmentTypeID != nil {
		if err := ed.SelectAppointmentType(*p.AppointmentTypeID); err != nil {
			return err
		}
	}
	if p.Payer != nil {
		if err := ed.SelectPayer(*p.Payer); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if err := ed.SetStatus(*p.Status); err != nil {
			return err
		}
	}
	// an explicit title wins over the one derived from the patient
	if p.Title != nil {
		if err := ed.SetTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Notes != nil {
		if err := ed.SetNotes(*p.Notes); err != nil {
			return err
		}
	}
	return nil
}

// SaveEditor commits the draft to the book and then to the store. A store
// failure rolls the book and the editor back.
func (s *Service) SaveEditor(ctx context.Context, ownerID string) (Event, error) {
	var out Event
	err := s.withWorkspace(ctx, ownerID, func(lockCtx context.Context, ws *Workspace) error {
		before := *ws.Editor
		draftID := ws.Editor.State().Draft.ID
		prev, existed := ws.Book.Find(draftID)

		saved, err := ws.Editor.Save(ws.Book)
		if err != nil {
			return err
		}

		if err := s.store.UpsertEvent(lockCtx, ownerID, saved); err != nil {
			if existed {
				_, _ = ws.Book.Save(prev)
			} else {
				ws.Book.Delete(saved.ID)
			}
			*ws.Editor = before
			return fmt.Errorf("persist event: %w", err)
		}
		out = saved
		return nil
	})
	if err == nil {
		s.log.Info("event saved",
			zap.String("owner_id", ownerID),
			zap.String("event_id", out.ID.String()),
			zap.String("status", string(out.Status)),
		)
	}
	return out, err
}

// DeleteEditor removes the edited event. Deleting an unsaved draft only
// closes the editor. A store failure puts the event back where it was and
// leaves the editor open on it.
func (s *Service) DeleteEditor(ctx context.Context, ownerID string) (bool, error) {
	var removed bool
	err := s.withWorkspace(ctx, ownerID, func(lockCtx context.Context, ws *Workspace) error {
		before := *ws.Editor
		id := ws.Editor.State().Draft.ID
		idx := ws.Book.index(id)
		prev, _ := ws.Book.Find(id)

		ok, err := ws.Editor.Delete(ws.Book)
		if err != nil {
			return err
		}
		if ok && !id.IsDraft() {
			if err := s.store.DeleteEvent(lockCtx, ownerID, id); err != nil {
				ws.Book.Restore(prev, idx)
				*ws.Editor = before
				return fmt.Errorf("delete event: %w", err)
			}
			s.log.Info("event deleted",
				zap.String("owner_id", ownerID),
				zap.String("event_id", id.String()),
			)
		}
		removed = ok
		return nil
	})
	return removed, err
}

func (s *Service) CloseEditor(ctx context.Context, ownerID string) error {
	return s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		ws.Editor.Close()
		return nil
	})
}

func (s *Service) WorkHours(ctx context.Context, ownerID string) (WorkHours, error) {
	var out WorkHours
	err := s.withWorkspace(ctx, ownerID, func(_ context.Context, ws *Workspace) error {
		out = ws.Book.WorkHours()
		return nil
	})
	return out, err
}

// UpdateWorkHours replaces the non-empty fields of wh on the active hours and
// validates the result as a whole.
func (s *Service) UpdateWorkHours(ctx context.Context, ownerID string, wh WorkHours) (WorkHours, error) {
	return s.changeWorkHours(ctx, ownerID, func(cur WorkHours) (WorkHours, error) {
		next := cur.clone()
		if wh.StartTime != "" {
			next.StartTime = wh.StartTime
		}
		if wh.EndTime != "" {
			next.EndTime = wh.EndTime
		}
		if wh.DaysOfWeek != nil {
			next.DaysOfWeek = wh.DaysOfWeek
		}
		return next.Normalize()
	})
}

func (s *Service) ToggleDay(ctx context.Context, ownerID string, day int) (WorkHours, error) {
	return s.changeWorkHours(ctx, ownerID, func(cur WorkHours) (WorkHours, error) {
		return cur.ToggleDay(day)
	})
}

func (s *Service) changeWorkHours(ctx context.Context, ownerID string, change func(WorkHours) (WorkHours, error)) (WorkHours, error) {
	var out WorkHours
	err := s.withWorkspace(ctx, ownerID, func(lockCtx context.Context, ws *Workspace) error {
		cur := ws.Book.WorkHours()
		next, err := change(cur)
		if err != nil {
			return err
		}
		if next, err = ws.Book.SetWorkHours(next); err != nil {
			return err
		}
		if err := s.store.SaveWorkHours(lockCtx, ownerID, next); err != nil {
			_, _ = ws.Book.SetWorkHours(cur)
			return fmt.Errorf("persist work hours: %w", err)
		}
		out = next
		return nil
	})
	return out, err
}
