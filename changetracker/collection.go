package changetracker

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// EqualFunc decides whether two elements are the same collection member.
// Membership differences (items added/removed) are computed entirely under
// this predicate.
type EqualFunc[T any] func(a, b *T) bool

// TrackedCollection tracks per-element field changes plus membership changes
// of a caller-owned sequence.
//
// The original sequence is a frozen copy taken at construction; the current
// sequence is the caller's own slice, referenced through a pointer so that
// elements the caller appends or removes directly are visible to membership
// diffing. Elements that bypass Add this way surface only through ItemsAdded,
// never through per-element diffing; elements removed directly keep their
// Trackable and still surface in per-element diffs. Both asymmetries are
// intended pass-through behavior.
type TrackedCollection[T any] struct {
	original   []*T
	current    *[]*T
	trackables []*Trackable[T]
	equals     EqualFunc[T]
	changes    []ElementChange[T]
	cfg        config
}

// TrackAll starts tracking every element of the current sequence. All element
// Trackables share the same inclusion filter and codec settings.
//
// The equality predicate is the caller's to supply; a nil equals falls back
// to pointer identity, under which membership detection degenerates to
// reference identity.
func TrackAll[T any](current *[]*T, equals EqualFunc[T], opts ...Option) (*TrackedCollection[T], error) {
	if current == nil {
		return nil, ErrNilSequenceSupplied
	}

	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	if equals == nil {
		equals = func(a, b *T) bool { return a == b }
	}

	collection := &TrackedCollection[T]{
		original:   slices.Clone(*current),
		current:    current,
		trackables: make([]*Trackable[T], 0, len(*current)),
		equals:     equals,
		cfg:        cfg,
	}

	for _, item := range *current {
		trackable, buildErr := newTrackable(item, cfg)
		if buildErr != nil {
			return nil, buildErr
		}

		collection.trackables = append(collection.trackables, trackable)
	}

	return collection, nil
}

// HasChanges diffs every tracked element against its baseline and computes
// the membership differences between the current and the original sequence.
// It returns true iff at least one element's fields changed or at least one
// element was added or removed.
//
// Element diffs run concurrently; each Trackable owns its snapshots, so the
// diffs share no mutable state and each writes its result into its own slot.
// The accumulated element changes are available via ElementChanges afterward,
// in sequence order.
func (c *TrackedCollection[T]) HasChanges() (bool, error) {
	started := time.Now()

	c.changes = nil

	results := make([]*ElementChange[T], len(c.trackables))
	diffErrs := make([]error, len(c.trackables))

	var wg sync.WaitGroup
	for i, trackable := range c.trackables {
		wg.Add(1)

		go func(slot int, trackable *Trackable[T]) {
			defer wg.Done()

			changed, err := trackable.HasChanges()
			if err != nil {
				diffErrs[slot] = err
				return
			}

			if changed {
				results[slot] = &ElementChange[T]{
					Value:      trackable.Value(),
					TrackingID: trackable.TrackingID(),
					BeforeJSON: trackable.BeforeJSON(),
					AfterJSON:  trackable.AfterJSON(),
				}
			}
		}(i, trackable)
	}
	wg.Wait()

	if err := errors.Join(diffErrs...); err != nil {
		c.cfg.recordDiffDuration(operationCollectionDiff, time.Since(started), statusError)
		c.cfg.recordSerializationError(operationCollectionDiff)
		c.cfg.logError(logMsgCollectionDiffFailed, err)

		return false, err
	}

	changes := make([]ElementChange[T], 0, len(results))
	for _, result := range results {
		if result != nil {
			changes = append(changes, *result)
		}
	}
	c.changes = changes

	added := difference(*c.current, c.original, c.equals)
	removed := difference(c.original, *c.current, c.equals)

	duration := time.Since(started)
	c.cfg.recordDiffDuration(operationCollectionDiff, duration, statusSuccess)
	c.cfg.logDebug(logMsgCollectionDiffCompleted,
		logAttrChangedItems, len(changes),
		logAttrItemsAdded, len(added),
		logAttrItemsRemoved, len(removed),
		logAttrDurationMS, c.cfg.toMilliseconds(duration))

	return len(changes) > 0 || len(added) > 0 || len(removed) > 0, nil
}

// ElementChanges returns the per-element changes accumulated by the most
// recent HasChanges call, in sequence order.
func (c *TrackedCollection[T]) ElementChanges() []ElementChange[T] {
	return slices.Clone(c.changes)
}

// Add appends item to the current sequence and starts tracking it with the
// collection's shared settings. Items appended directly to the caller's slice
// instead surface only through ItemsAdded.
func (c *TrackedCollection[T]) Add(item *T) error {
	trackable, err := newTrackable(item, c.cfg)
	if err != nil {
		return err
	}

	*c.current = append(*c.current, item)
	c.trackables = append(c.trackables, trackable)

	return nil
}

// Remove deletes the first element equal to item from the current sequence
// and stops tracking every element equal to it. It reports whether an element
// was removed from the sequence.
func (c *TrackedCollection[T]) Remove(item *T) bool {
	index := slices.IndexFunc(*c.current, func(candidate *T) bool {
		return c.equals(item, candidate)
	})
	if index >= 0 {
		*c.current = slices.Delete(*c.current, index, index+1)
	}

	c.trackables = slices.DeleteFunc(c.trackables, func(trackable *Trackable[T]) bool {
		return c.equals(item, trackable.Value())
	})

	return index >= 0
}

// ItemsAdded returns the elements present in the current sequence but not in
// the original one, as a multiset difference under the collection's equality.
func (c *TrackedCollection[T]) ItemsAdded() []*T {
	return difference(*c.current, c.original, c.equals)
}

// ItemsRemoved returns the elements present in the original sequence but not
// in the current one, as a multiset difference under the collection's equality.
func (c *TrackedCollection[T]) ItemsRemoved() []*T {
	return difference(c.original, *c.current, c.equals)
}

// ItemsAddedJSON returns ItemsAdded with each element independently rendered
// through the encoder.
func (c *TrackedCollection[T]) ItemsAddedJSON() ([]string, error) {
	return c.encodeItems(c.ItemsAdded())
}

// ItemsRemovedJSON returns ItemsRemoved with each element independently
// rendered through the encoder.
func (c *TrackedCollection[T]) ItemsRemovedJSON() ([]string, error) {
	return c.encodeItems(c.ItemsRemoved())
}

func (c *TrackedCollection[T]) encodeItems(items []*T) ([]string, error) {
	encoded := make([]string, 0, len(items))

	for _, item := range items {
		rendered, err := c.cfg.encode(item)
		if err != nil {
			joinedErr := errors.Join(ErrEncodingItemFailed, err)
			c.cfg.recordSerializationError(operationCollectionDiff)
			c.cfg.logError(logMsgCollectionDiffFailed, joinedErr)

			return nil, joinedErr
		}

		encoded = append(encoded, rendered)
	}

	return encoded, nil
}

// difference returns the multiset difference a minus b under equals: every
// occurrence in b cancels at most one equal occurrence in a.
func difference[T any](a []*T, b []*T, equals EqualFunc[T]) []*T {
	remaining := slices.Clone(b)
	diff := make([]*T, 0)

	for _, item := range a {
		matched := slices.IndexFunc(remaining, func(candidate *T) bool {
			return equals(item, candidate)
		})
		if matched >= 0 {
			remaining = slices.Delete(remaining, matched, matched+1)
			continue
		}

		diff = append(diff, item)
	}

	return diff
}
