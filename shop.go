package flagship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Options configures a Shop. Nil collaborators disable the matching feature.
type Options struct {
	Rates   RateSource
	Remote  BlobStore
	Advisor Advisor

	RefreshInterval time.Duration    // defaults to one hour
	AutoSyncDelay   time.Duration    // defaults to 5s
	Now             func() time.Time // defaults to time.Now
}

// Notice is a failure reported to the user instead of being returned to a
// caller, typically from a background task.
type Notice struct {
	At      time.Time `json:"at"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

const maxNotices = 50

type result struct {
	st  State
	err error
}

type call struct {
	cmd   Command // nil for reads
	reply chan result
}

// Shop owns the State of a running shop.
//
// All mutations go through a single goroutine started by Run, so commands
// never interleave. Each successful command is saved to the Store before the
// caller gets the new State.
type Shop struct {
	store Store
	opts  Options
	st    State // owned by Run

	calls chan call
	done  chan struct{}
	push  sync.Mutex // one push at a time
	wg    sync.WaitGroup

	mu      sync.Mutex
	notices []Notice
}

// Open loads the shop state from store.
func Open(ctx context.Context, store Store, opts Options) (*Shop, error) {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Hour
	}
	if opts.AutoSyncDelay <= 0 {
		opts.AutoSyncDelay = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	st, err := Load(ctx, store)
	if err != nil {
		return nil, err
	}
	return &Shop{
		store: store,
		opts:  opts,
		st:    st,
		calls: make(chan call),
		done:  make(chan struct{}),
	}, nil
}

// Run processes commands until ctx is done. It refreshes the exchange rate
// on start and then every RefreshInterval, and pushes the state to the remote
// store AutoSyncDelay after the last change when auto sync is on.
//
// Run must be called once. It returns after background tasks have stopped.
func (s *Shop) Run(ctx context.Context) error {
	bg, cancel := context.WithCancel(ctx)
	defer s.wg.Wait()
	defer close(s.done)
	defer cancel()

	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	var autosync *time.Timer
	var autosyncC <-chan time.Time
	defer func() {
		if autosync != nil {
			autosync.Stop()
		}
	}()

	s.background(bg, s.refresh)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.background(bg, s.refresh)
		case <-autosyncC:
			autosyncC = nil
			s.background(bg, s.autoPush)
		case c := <-s.calls:
			if c.cmd == nil {
				c.reply <- result{st: s.st.Clone()}
				continue
			}
			next, changed, err := s.apply(ctx, c.cmd)
			c.reply <- result{st: next, err: err}
			if err != nil || !changed || !s.triggersSync(c.cmd) {
				continue
			}
			if autosync != nil {
				autosync.Stop()
			}
			autosync = time.NewTimer(s.opts.AutoSyncDelay)
			autosyncC = autosync.C
		}
	}
}

func (s *Shop) background(ctx context.Context, task func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		task(ctx)
	}()
}

// apply runs cmd against the current state and saves the result. changed
// is false when cmd left the state as it was.
func (s *Shop) apply(ctx context.Context, cmd Command) (st State, changed bool, err error) {
	next, err := cmd.Apply(s.st)
	if errors.Is(err, ErrUnchanged) {
		log.WithField("command", cmd.What()).Debug("nothing to change")
		return s.st.Clone(), false, nil
	}
	if err != nil {
		log.WithError(err).WithField("command", cmd.What()).Debug("command refused")
		return s.st.Clone(), false, fmt.Errorf("%s: %w", cmd.What(), err)
	}
	s.st = next
	if err := Save(ctx, s.store, next); err != nil {
		log.WithError(err).Error("cannot save state")
		s.notify("storage", err)
	}
	log.WithField("command", cmd.What()).Debug("command applied")
	return next.Clone(), true, nil
}

func (s *Shop) triggersSync(cmd Command) bool {
	switch cmd.What() {
	case CmdMarkSynced, CmdRestore:
		return false
	}
	return s.opts.Remote != nil && s.st.SyncSettings.AutoSync
}

func (s *Shop) refresh(ctx context.Context) {
	if s.opts.Rates == nil {
		return
	}
	if _, err := s.RefreshRate(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Warn("rate refresh failed")
	}
}

func (s *Shop) autoPush(ctx context.Context) {
	if err := s.Push(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Warn("auto sync failed")
	}
}

func (s *Shop) do(ctx context.Context, cmd Command) (State, error) {
	c := call{cmd: cmd, reply: make(chan result, 1)}
	select {
	case s.calls <- c:
	case <-s.done:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	r := <-c.reply
	return r.st, r.err
}

// Dispatch applies cmd and returns the new state. A refused command leaves
// the state unchanged and returns the current one with the error.
func (s *Shop) Dispatch(ctx context.Context, cmd Command) (State, error) {
	if cmd == nil {
		return State{}, errors.New("nil command")
	}
	return s.do(ctx, cmd)
}

// Snapshot returns a copy of the current state.
func (s *Shop) Snapshot(ctx context.Context) (State, error) { return s.do(ctx, nil) }

// RefreshRate fetches the latest exchange rate and merges it.
func (s *Shop) RefreshRate(ctx context.Context) (State, error) {
	if s.opts.Rates == nil {
		return State{}, fmt.Errorf("%w: no rate source", ErrNotConfigured)
	}
	r, err := s.opts.Rates.LatestRate(ctx)
	if err != nil {
		s.notify("rates", err)
		return State{}, err
	}
	return s.Dispatch(ctx, UpdateRate{Rate: r})
}

// Push uploads the current state to the remote store.
func (s *Shop) Push(ctx context.Context) error {
	s.push.Lock()
	defer s.push.Unlock()
	st, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	synced, err := Push(ctx, s.opts.Remote, st, s.opts.Now())
	if err != nil {
		s.notify("sync", err)
		return err
	}
	_, err = s.Dispatch(ctx, synced)
	return err
}

// Pull replaces the current state with the remote blob key, or with the
// blob last pushed when key is empty.
func (s *Shop) Pull(ctx context.Context, key string) (State, error) {
	if key == "" {
		st, err := s.Snapshot(ctx)
		if err != nil {
			return State{}, err
		}
		key = st.SyncSettings.BlobKey
	}
	restore, err := Pull(ctx, s.opts.Remote, key)
	if err != nil {
		s.notify("sync", err)
		return State{}, err
	}
	return s.Dispatch(ctx, restore)
}

// Advise asks the advisor about the current state.
func (s *Shop) Advise(ctx context.Context) (string, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	text, err := Advise(ctx, s.opts.Advisor, st)
	if err != nil {
		s.notify("advice", err)
		return "", err
	}
	return text, nil
}

func (s *Shop) notify(source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, Notice{At: s.opts.Now(), Source: source, Message: err.Error()})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

// Notices returns the recent notices, oldest first.
func (s *Shop) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice(nil), s.notices...)
}
