// Package adminview is the operator's read model over pending access requests
//
// A mutation that succeeds removes its row locally and marks the request pending confirmation.
// One re-fetch after the confirm delay reconciles with the store: a row still listed then is
// flagged as lingering and shown again instead of staying hidden.
package adminview

import (
	"context"
	"slices"
	"sync"
	"time"

	"enrollgate/internal/core/gate"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/logger"
	"enrollgate/internal/services/api/access/domain"
)

// DefaultConfirmDelay absorbs typical replica or cache lag on the read path
const DefaultConfirmDelay = 400 * time.Millisecond

// Source is the authoritative side of the view; the access service and the HTTP client both satisfy it
type Source interface {
	ListPending(ctx context.Context, kind gate.ContentKind) (domain.Listing, error)
	Approve(ctx context.Context, requestID string) (domain.Resolution, error)
	Deny(ctx context.Context, requestID string, in domain.DenyInput) (domain.Resolution, error)
	DeleteOrphaned(ctx context.Context, requestID string) (domain.Resolution, error)
}

// RowState is where a listed row sits in the mutation lifecycle
type RowState uint8

const (
	// Live rows are as the store last reported them
	Live RowState = iota
	// Lingering rows survived the confirmatory re-fetch after a successful resolution
	Lingering
)

// Row is one listed request
type Row struct {
	domain.PendingRow
	State RowState
}

// Snapshot is an immutable copy of the view
type Snapshot struct {
	Kind      gate.ContentKind
	Rows      []Row
	Faults    []domain.Fault
	FetchedAt time.Time

	// Confirming lists request ids removed locally whose re-fetch has not run yet
	Confirming []string
}

// IntegrityFault reports whether the last listing saw a request and an enrollment on one pair
func (s Snapshot) IntegrityFault() bool { return len(s.Faults) > 0 }

// Empty is true only for a clean listing with nothing pending
func (s Snapshot) Empty() bool { return len(s.Rows) == 0 && len(s.Faults) == 0 }

// Options configures a View
type Options struct {
	Kind         gate.ContentKind // empty lists both kinds
	ConfirmDelay time.Duration
	Logger       *logger.Logger

	// Sleep waits out the confirm delay; tests replace it
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// View holds the latest listing and the ids awaiting confirmation
type View struct {
	src   Source
	kind  gate.ContentKind
	delay time.Duration
	log   logger.Logger
	sleep func(context.Context, time.Duration) error
	now   func() time.Time

	mu        sync.Mutex
	rows      []Row
	faults    []domain.Fault
	fetchedAt time.Time
	pending   map[string]struct{}
	lingering map[string]struct{}

	wg sync.WaitGroup
}

// New builds a view over src; nothing is fetched until Refresh
func New(src Source, o Options) *View {
	if src == nil {
		panic("adminview: nil source")
	}
	if o.ConfirmDelay <= 0 {
		o.ConfirmDelay = DefaultConfirmDelay
	}
	if o.Logger == nil {
		o.Logger = logger.Named("adminview")
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &View{
		src:       src,
		kind:      o.Kind,
		delay:     o.ConfirmDelay,
		log:       *o.Logger,
		sleep:     o.Sleep,
		now:       o.Now,
		pending:   map[string]struct{}{},
		lingering: map[string]struct{}{},
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Refresh replaces the listing; ids still pending confirmation stay hidden
func (v *View) Refresh(ctx context.Context) (Snapshot, error) {
	l, err := v.src.ListPending(ctx, v.kind)
	if err != nil {
		return v.Snapshot(), err
	}
	v.mu.Lock()
	v.apply(l)
	v.mu.Unlock()
	return v.Snapshot(), nil
}

// apply must hold mu
func (v *View) apply(l domain.Listing) {
	v.rows = v.rows[:0]
	for _, p := range l.Requests {
		if _, ok := v.pending[p.ID]; ok {
			continue
		}
		st := Live
		if _, ok := v.lingering[p.ID]; ok {
			st = Lingering
		}
		v.rows = append(v.rows, Row{PendingRow: p, State: st})
	}

	// lingering ids the store has since dropped are settled
	for id := range v.lingering {
		if !slices.ContainsFunc(l.Requests, func(p domain.PendingRow) bool { return p.ID == id }) {
			delete(v.lingering, id)
		}
	}

	v.faults = slices.Clone(l.Faults)
	for _, f := range v.faults {
		v.log.Error().
			Str("request_id", f.RequestID).
			Str("learner_id", f.LearnerID).
			Str("content_unit_id", f.ContentUnitID).
			Msg("integrity fault in pending listing")
	}
	v.fetchedAt = v.now().UTC()
}

// Snapshot copies the current state
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Kind:       v.kind,
		Rows:       slices.Clone(v.rows),
		Faults:     slices.Clone(v.faults),
		FetchedAt:  v.fetchedAt,
		Confirming: make([]string, 0, len(v.pending)),
	}
	for id := range v.pending {
		s.Confirming = append(s.Confirming, id)
	}
	slices.Sort(s.Confirming)
	return s
}

// Approve resolves id through the source, then reconciles the view
func (v *View) Approve(ctx context.Context, id string) (domain.Resolution, error) {
	return v.mutate(ctx, id, func() (domain.Resolution, error) { return v.src.Approve(ctx, id) })
}

// Deny rejects id through the source, then reconciles the view
func (v *View) Deny(ctx context.Context, id, reason string) (domain.Resolution, error) {
	return v.mutate(ctx, id, func() (domain.Resolution, error) {
		return v.src.Deny(ctx, id, domain.DenyInput{Reason: reason})
	})
}

// DeleteOrphaned discards an orphaned id through the source, then reconciles the view
func (v *View) DeleteOrphaned(ctx context.Context, id string) (domain.Resolution, error) {
	return v.mutate(ctx, id, func() (domain.Resolution, error) { return v.src.DeleteOrphaned(ctx, id) })
}

// mutate removes the row optimistically when the request is gone from the store:
// on success, and on NotFound, which means another resolver got there first
func (v *View) mutate(ctx context.Context, id string, call func() (domain.Resolution, error)) (domain.Resolution, error) {
	res, err := call()
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return res, err
	}

	v.mu.Lock()
	v.rows = slices.DeleteFunc(v.rows, func(r Row) bool { return r.ID == id })
	v.pending[id] = struct{}{}
	delete(v.lingering, id)
	v.mu.Unlock()

	v.wg.Add(1)
	go v.confirm(context.WithoutCancel(ctx), id)
	return res, err
}

// confirm is the single re-fetch owed to one mutation
func (v *View) confirm(ctx context.Context, id string) {
	defer v.wg.Done()

	if err := v.sleep(ctx, v.delay); err != nil {
		v.settle(id, nil, err)
		return
	}
	l, err := v.src.ListPending(ctx, v.kind)
	v.settle(id, &l, err)
}

func (v *View) settle(id string, l *domain.Listing, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.pending, id)
	if err != nil {
		// the optimistic removal stands; the next Refresh decides
		v.log.Warn().Err(err).Str("request_id", id).Msg("confirm re-fetch failed")
		return
	}
	if slices.ContainsFunc(l.Requests, func(p domain.PendingRow) bool { return p.ID == id }) {
		v.lingering[id] = struct{}{}
		v.log.Warn().Str("request_id", id).Dur("after", v.delay).Msg("resolved request still listed after confirm re-fetch")
	}
	v.apply(*l)
}

// Settle waits for every outstanding confirm re-fetch
func (v *View) Settle() { v.wg.Wait() }
