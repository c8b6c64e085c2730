package flagship

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// BlobStore is a remote store of whole snapshots.
//
// Create stores a new blob and returns the key that identifies it. Update
// and Fetch return an error wrapping ErrNotFound for unknown keys.
type BlobStore interface {
	Create(ctx context.Context, data []byte) (key string, err error)
	Update(ctx context.Context, key string, data []byte) error
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Push uploads st to blobs. A state with no blob key yet creates a new blob;
// otherwise the existing blob is updated, or recreated if the remote lost it.
//
// The returned command records the sync and must be applied by the caller.
func Push(ctx context.Context, blobs BlobStore, st State, now time.Time) (MarkSynced, error) {
	if blobs == nil {
		return MarkSynced{}, fmt.Errorf("%w: no remote store", ErrNotConfigured)
	}
	// sync settings are local to each device
	payload := st.Clone()
	payload.SyncSettings = SyncSettings{}
	var buf bytes.Buffer
	if err := EncodeState(&buf, payload); err != nil {
		return MarkSynced{}, err
	}

	key := st.SyncSettings.BlobKey
	if key != "" {
		err := blobs.Update(ctx, key, buf.Bytes())
		switch {
		case err == nil:
			return MarkSynced{Key: key, At: now}, nil
		case !errors.Is(err, ErrNotFound):
			return MarkSynced{}, fmt.Errorf("cannot update blob %q: %w", key, err)
		}
		log.WithField("key", key).Warn("remote blob is gone, creating a new one")
	}
	key, err := blobs.Create(ctx, buf.Bytes())
	if err != nil {
		return MarkSynced{}, fmt.Errorf("cannot create blob: %w", err)
	}
	return MarkSynced{Key: key, At: now}, nil
}

// Pull downloads the blob identified by key and returns the command that
// replaces the local state with it.
func Pull(ctx context.Context, blobs BlobStore, key string) (Restore, error) {
	if blobs == nil {
		return Restore{}, fmt.Errorf("%w: no remote store", ErrNotConfigured)
	}
	if key == "" {
		return Restore{}, fmt.Errorf("%w: no blob key to pull from", ErrNotConfigured)
	}
	data, err := blobs.Fetch(ctx, key)
	if err != nil {
		return Restore{}, fmt.Errorf("cannot fetch blob %q: %w", key, err)
	}
	st, err := DecodeState(bytes.NewReader(data), SchemaVersion)
	if err != nil {
		return Restore{}, fmt.Errorf("cannot read blob %q: %w", key, err)
	}
	return Restore{Snapshot: st}, nil
}
