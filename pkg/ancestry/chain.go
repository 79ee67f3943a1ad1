package ancestry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kraitsura/qa_viewer/pkg/model"
	"github.com/kraitsura/qa_viewer/pkg/source"
)

const (
	// DefaultPageSize is how many ancestors a scroll-triggered batch resolves.
	DefaultPageSize = 5

	// InitialOverflowSize is the first-batch cap. The first batch is
	// min(InitialOverflowSize, chain length) so that a chain slightly longer
	// than one page still overflows the host viewport and the scroll trigger
	// has something to fire on.
	InitialOverflowSize = 8

	// DefaultBatchTimeout bounds one batch of lookups. A fetch that hangs
	// past it settles as failed items instead of pending forever.
	DefaultBatchTimeout = 10 * time.Second
)

// ResolvedAncestor is one chain entry as the view consumes it. Body is nil
// while the entry is pending or failed; Failed entries are retained so the
// chain keeps its length and positions even when a node was deleted or
// unreachable.
type ResolvedAncestor struct {
	Ref    model.AncestorRef
	Body   model.Node
	Failed bool
}

// Pending reports whether the entry is still in flight.
func (r ResolvedAncestor) Pending() bool {
	return r.Body == nil && !r.Failed
}

// ChainStore owns the incremental-loading state for one open ancestry view.
//
// The raw ancestor list is immutable input supplied at Initialize. Entries at
// depth 0 are the direct parent and excluded; the rest are sorted ascending
// by depth (stable, deduplicated by id) and resolved in batches: concurrently
// within a batch, serially across batches. State survives closing and
// reopening the view for the same subject; only a subject switch resets it.
type ChainStore struct {
	src          source.Source
	log          zerolog.Logger
	batchTimeout time.Duration

	mu          sync.Mutex
	initialized bool
	subjectID   string
	gen         uint64
	sorted      []model.AncestorRef
	items       map[string]*ResolvedAncestor
	loadedCount int
	inflight    int
	hasMore     bool
	loading     bool
}

// NewChainStore creates an empty store over the given source.
func NewChainStore(src source.Source, log zerolog.Logger) *ChainStore {
	return &ChainStore{
		src:          src,
		log:          log,
		batchTimeout: DefaultBatchTimeout,
		items:        make(map[string]*ResolvedAncestor),
	}
}

// SetBatchTimeout overrides the per-batch timeout. Zero restores the default.
func (s *ChainStore) SetBatchTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		d = DefaultBatchTimeout
	}
	s.batchTimeout = d
}

// Initialize binds the store to a subject and its raw ancestor list.
//
// When the subject is unchanged and entries were already resolved this is a
// no-op, so closing and reopening the view re-displays instantly without
// re-fetching. Otherwise all state is discarded, the list is filtered to
// depth > 0 and sorted, and any batch still in flight for the old subject is
// superseded: its results will be dropped on arrival.
//
// The return value reports whether the store was (re)initialized; the caller
// should then kick off the first batch of InitialBatchSize entries.
func (s *ChainStore) Initialize(subjectID string, raw []model.AncestorRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The ancestor list for a subject is immutable input, so a repeat
	// Initialize for the bound subject always reuses what is cached or in
	// flight; only a subject switch resets.
	if s.initialized && subjectID == s.subjectID {
		return false
	}

	s.initialized = true
	s.gen++
	s.subjectID = subjectID
	s.sorted = normalizeAncestors(raw)
	s.items = make(map[string]*ResolvedAncestor, len(s.sorted))
	s.loadedCount = 0
	s.inflight = 0
	s.loading = false
	s.hasMore = len(s.sorted) > 0
	return true
}

// InitialBatchSize returns how many entries the first batch after Initialize
// should resolve.
func (s *ChainStore) InitialBatchSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sorted) < InitialOverflowSize {
		return len(s.sorted)
	}
	return InitialOverflowSize
}

// LoadNextBatch resolves the next pageSize entries of the chain. Entries are
// fetched concurrently; the batch settles as a unit and merges in chain
// order, so completion order never leaks into render order.
//
// The call is a level-triggered no-op when a batch is already in flight,
// when the chain is exhausted, or when the store was never initialized, so
// scroll handlers may invoke it as often as they like. A per-entry failure
// (or a node that no longer exists) settles that entry as failed without
// aborting its siblings.
//
// Returns the number of entries consumed. A batch whose subject was switched
// away mid-flight is discarded entirely and consumes nothing.
func (s *ChainStore) LoadNextBatch(ctx context.Context, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	s.mu.Lock()
	if s.loading || !s.hasMore || s.loadedCount >= len(s.sorted) {
		s.mu.Unlock()
		return 0, nil
	}
	end := s.loadedCount + pageSize
	if end > len(s.sorted) {
		end = len(s.sorted)
	}
	batch := make([]model.AncestorRef, end-s.loadedCount)
	copy(batch, s.sorted[s.loadedCount:end])
	s.loading = true
	s.inflight = len(batch)
	gen := s.gen
	subjectID := s.subjectID
	timeout := s.batchTimeout
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolved := make([]*ResolvedAncestor, len(batch))
	g := new(errgroup.Group)
	for i, ref := range batch {
		g.Go(func() error {
			item := &ResolvedAncestor{Ref: ref}
			node, err := source.NodeByRef(ctx, s.src, ref.ID, ref.Kind)
			switch {
			case err != nil:
				s.log.Warn().Err(err).Str("id", ref.ID).Str("subject", subjectID).Msg("ancestor fetch failed")
				item.Failed = true
			case node == nil:
				s.log.Debug().Str("id", ref.ID).Msg("ancestor no longer exists")
				item.Failed = true
			default:
				item.Body = node
			}
			resolved[i] = item
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		// Subject switched while the batch was in flight; the store was
		// reset and these results belong to the old subject.
		return 0, nil
	}

	for _, item := range resolved {
		if _, ok := s.items[item.Ref.ID]; ok {
			continue
		}
		s.items[item.Ref.ID] = item
	}
	s.loadedCount += len(batch)
	s.inflight = 0
	s.hasMore = s.loadedCount < len(s.sorted)
	s.loading = false
	return len(batch), nil
}

// SubjectID returns the id of the subject the store is bound to.
func (s *ChainStore) SubjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subjectID
}

// HasMore reports whether unresolved chain entries remain.
func (s *ChainStore) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Loading reports whether a batch is currently in flight.
func (s *ChainStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ShouldLoadMore reports whether a scroll trigger should request a batch:
// more entries remain and none are in flight.
func (s *ChainStore) ShouldLoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore && !s.loading
}

// ChainLength returns the total number of chain entries for the subject.
func (s *ChainStore) ChainLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sorted)
}

// LoadedCount returns how many entries have been consumed by settled batches.
func (s *ChainStore) LoadedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedCount
}

// ResolvedCount returns how many entries have settled (resolved or failed).
func (s *ChainStore) ResolvedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns the visible chain in depth order: every entry whose batch
// has been requested, as a snapshot. Entries still in flight appear as
// pending placeholders so the view can render a per-item loading affordance.
func (s *ChainStore) Items() []ResolvedAncestor {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := s.loadedCount + s.inflight
	if visible > len(s.sorted) {
		visible = len(s.sorted)
	}
	out := make([]ResolvedAncestor, 0, visible)
	for _, ref := range s.sorted[:visible] {
		if item, ok := s.items[ref.ID]; ok {
			out = append(out, *item)
		} else {
			out = append(out, ResolvedAncestor{Ref: ref})
		}
	}
	return out
}

// normalizeAncestors turns the raw backend list into the chain the view
// walks: depth 0 entries (the direct parent) dropped, the rest sorted
// ascending by depth with ties keeping their original relative order, and
// duplicate ids dropped keeping the first occurrence.
func normalizeAncestors(raw []model.AncestorRef) []model.AncestorRef {
	chain := make([]model.AncestorRef, 0, len(raw))
	for _, ref := range raw {
		if ref.Depth > 0 && ref.ID != "" && ref.Kind.IsValid() {
			chain = append(chain, ref)
		}
	}
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].Depth < chain[j].Depth
	})

	seen := make(map[string]bool, len(chain))
	deduped := chain[:0]
	for _, ref := range chain {
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		deduped = append(deduped, ref)
	}
	return deduped
}
