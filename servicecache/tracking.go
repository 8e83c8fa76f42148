package servicecache

import (
	"context"

	"github.com/tidehook/servicecache/store"
)

// trackingKeyPrefix names the store key holding the key index for one group
// when the backend has no native tag support.
const trackingKeyPrefix = "tracking:"

// trackingIndex is the tracked-mode fallback: a per-group record of every
// fingerprint ever written, persisted in the same store as the cached
// values. The record is a fingerprint -> fingerprint map for O(1) membership.
//
// The read-modify-write in add is not guarded against concurrent writers on
// the same group; two racing first-time writes can drop one registration,
// leaving a fingerprint that Clear cannot find until TTL expiry. Accepted
// fallback-mode limitation.
type trackingIndex struct {
	store store.Store
}

func trackingKey(groupTag string) string {
	return trackingKeyPrefix + groupTag
}

func (t trackingIndex) read(ctx context.Context, groupTag string) (map[string]string, error) {
	found, raw, err := t.store.Get(ctx, trackingKey(groupTag))
	if err != nil {
		return nil, err
	}
	if !found {
		// A missing record is an empty set, not an error.
		return map[string]string{}, nil
	}
	record, err := store.As[map[string]string](raw)
	if err != nil {
		return nil, err
	}
	// In-process stores hand back the stored map itself; clone before the
	// caller mutates it.
	clone := make(map[string]string, len(record)+1)
	for k, v := range record {
		clone[k] = v
	}
	return clone, nil
}

// add registers a fingerprint under its group. Idempotent. The record is
// written with permanent retention so it outlives the entries it indexes.
func (t trackingIndex) add(ctx context.Context, groupTag, fp string) error {
	record, err := t.read(ctx, groupTag)
	if err != nil {
		return err
	}
	record[fp] = fp
	return t.store.Set(ctx, trackingKey(groupTag), record, store.Forever)
}

// drainAndClear returns every fingerprint registered under the group and
// removes the tracking record itself. Deleting the cached entries is the
// caller's responsibility.
func (t trackingIndex) drainAndClear(ctx context.Context, groupTag string) ([]string, error) {
	record, err := t.read(ctx, groupTag)
	if err != nil {
		return nil, err
	}
	fps := make([]string, 0, len(record))
	for fp := range record {
		fps = append(fps, fp)
	}
	if _, err := t.store.Forget(ctx, trackingKey(groupTag)); err != nil {
		return nil, err
	}
	return fps, nil
}
