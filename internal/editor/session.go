package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cv-builder/internal/apperr"
	"cv-builder/internal/model"
	"cv-builder/internal/render"

	"go.uber.org/zap"
)

// SaveStatus reports the outcome of the most recent save.
type SaveStatus struct {
	At  time.Time `json:"at"`
	Err string    `json:"error,omitempty"`
}

// Session is the editable document of one signed-in user. Mutations are
// serialized; every mutation notifies subscribers and restarts the save
// debounce.
type Session struct {
	userID string
	m      *Manager

	// saveMu is held from taking the snapshot until Store.Save returns, so
	// saves reach the store in mutation order.
	saveMu sync.Mutex

	mu       sync.Mutex
	doc      *model.Resume
	dirty    bool
	seq      uint64
	timer    Timer
	subs     map[int]func(*model.Resume)
	nextSub  int
	lastSave SaveStatus
	template render.TemplateID
}

func newSession(m *Manager, userID string, doc *model.Resume) *Session {
	doc.Normalize()
	return &Session{
		userID:   userID,
		m:        m,
		doc:      doc,
		subs:     map[int]func(*model.Resume){},
		template: render.Default,
	}
}

func (s *Session) UserID() string { return s.userID }

// Snapshot returns a deep copy of the current document.
func (s *Session) Snapshot() *model.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Template is the layout currently shown in the preview and used by export.
func (s *Session) Template() render.TemplateID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

// SetTemplate switches the preview layout. It is not part of the document
// and does not schedule a save.
func (s *Session) SetTemplate(id render.TemplateID) {
	s.mu.Lock()
	s.template = id
	s.mu.Unlock()
}

// LastSave returns the status of the latest completed save.
func (s *Session) LastSave() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// Pending reports whether a change is waiting for the debounce to fire.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned func removes the subscription.
func (s *Session) Subscribe(fn func(*model.Resume)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Set stores value at path. A value that breaks the field's constraint is
// still stored; the returned *apperr.ValidationError only reports it.
func (s *Session) Set(path, value string) error {
	if path == PhotoPath {
		return fmt.Errorf("%w: %s", ErrReadOnlyPath, path)
	}
	var verr error
	err := s.mutate(func(doc *model.Resume) error {
		ref, err := resolve(doc, path)
		if err != nil {
			return err
		}
		*ref.ptr = value
		if msg, bad := ref.check(value); bad {
			verr = fieldError(path, msg)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return verr
}

// SetPhoto points the document at an uploaded photo (empty clears it) and
// returns the URI it replaced.
func (s *Session) SetPhoto(uri string) (string, error) {
	var previous string
	err := s.mutate(func(doc *model.Resume) error {
		previous = doc.PersonalInfo.PhotoURL
		doc.PersonalInfo.PhotoURL = uri
		return nil
	})
	return previous, err
}

// Append adds a blank entry to list and returns its new identifier.
func (s *Session) Append(list string) (string, error) {
	id := model.NewEntryID()
	err := s.mutate(func(doc *model.Resume) error {
		switch list {
		case ListExperience:
			doc.Experience = append(doc.Experience, model.Experience{ID: id})
		case ListEducation:
			doc.Education = append(doc.Education, model.Education{ID: id})
		case ListSkills:
			doc.Skills = append(doc.Skills, model.Skill{ID: id})
		default:
			return fmt.Errorf("%w: %q", ErrUnknownPath, list)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Remove deletes the entry at index. Other entries keep their identifiers
// and order.
func (s *Session) Remove(list string, index int) error {
	return s.mutate(func(doc *model.Resume) error {
		bad := fmt.Errorf("%w: %s[%d]", ErrUnknownPath, list, index)
		switch list {
		case ListExperience:
			if index < 0 || index >= len(doc.Experience) {
				return bad
			}
			doc.Experience = append(doc.Experience[:index], doc.Experience[index+1:]...)
		case ListEducation:
			if index < 0 || index >= len(doc.Education) {
				return bad
			}
			doc.Education = append(doc.Education[:index], doc.Education[index+1:]...)
		case ListSkills:
			if index < 0 || index >= len(doc.Skills) {
				return bad
			}
			doc.Skills = append(doc.Skills[:index], doc.Skills[index+1:]...)
		default:
			return bad
		}
		return nil
	})
}

// Replace swaps in a whole document. Entries without an identifier (or with
// a repeated one) get a fresh one. The photo reference is kept from the
// current document. Field constraint failures are reported but the document
// is stored either way.
func (s *Session) Replace(doc *model.Resume) error {
	next := doc.Clone()
	if next == nil {
		next = &model.Resume{}
	}
	next.Normalize()
	if err := s.mutate(func(cur *model.Resume) error {
		next.PersonalInfo.PhotoURL = cur.PersonalInfo.PhotoURL
		*cur = *next.Clone()
		return nil
	}); err != nil {
		return err
	}
	return model.ValidateFields(next)
}

// mutate applies fn under the session lock. When fn succeeds subscribers
// are notified and a save is scheduled.
func (s *Session) mutate(fn func(*model.Resume) error) error {
	s.mu.Lock()
	if err := fn(s.doc); err != nil {
		s.mu.Unlock()
		return err
	}
	s.dirty = true
	s.schedule()
	snap := s.doc.Clone()
	subs := make([]func(*model.Resume), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// schedule restarts the debounce. Callers hold s.mu.
func (s *Session) schedule() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.timer = s.m.after(s.m.opts.Debounce, func() { s.fire(seq) })
}

// fire saves the latest snapshot unless a newer mutation restarted the
// debounce in the meantime.
func (s *Session) fire(seq uint64) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if seq != s.seq || !s.dirty {
		s.mu.Unlock()
		return
	}
	snap, ok := s.takeLocked()
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.m.opts.SaveTimeout)
	defer cancel()
	s.save(ctx, snap)
}

// flush saves immediately if a change is pending.
func (s *Session) flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap, ok := s.takeLocked()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.save(ctx, snap)
}

func (s *Session) takeLocked() (*model.Resume, bool) {
	if !s.dirty {
		return nil, false
	}
	s.dirty = false
	s.timer = nil
	return s.doc.Clone(), true
}

func (s *Session) save(ctx context.Context, snap *model.Resume) error {
	err := apperr.Persistence("save", s.m.store.Save(ctx, s.userID, snap))
	s.m.metrics.Save(err)

	status := SaveStatus{At: s.m.now()}
	if err != nil {
		status.Err = err.Error()
		s.m.logger.Error("autosave failed", zap.String("user_id", s.userID), zap.Error(err))
	} else {
		s.m.logger.Debug("autosaved", zap.String("user_id", s.userID))
	}
	s.mu.Lock()
	s.lastSave = status
	s.mu.Unlock()
	return err
}
