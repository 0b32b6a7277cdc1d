package savegame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keymaster/internal/economy"
	"github.com/verte-zerg/keymaster/internal/logger"
)

// KV is a key-value store holding one blob per slot.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// Adapter moves engine state in and out of one slot of a KV store.
type Adapter struct {
	kv        KV
	slot      string
	log       *slog.Logger
	now       func() time.Time
	installID string
}

// NewAdapter returns an adapter for slot. A nil logger discards output.
func NewAdapter(kv KV, slot string, log *slog.Logger) *Adapter {
	if log == nil {
		log = logger.Discard()
	}
	return &Adapter{
		kv:   kv,
		slot: slot,
		log:  log.With("slot", slot),
		now:  time.Now,
	}
}

// Slot returns the slot name.
func (a *Adapter) Slot() string {
	return a.slot
}

// InstallID returns the id carried by every blob of this install.
func (a *Adapter) InstallID() string {
	if a.installID == "" {
		a.installID = uuid.NewString()
	}
	return a.installID
}

// Save writes a snapshot of e.
func (a *Adapter) Save(ctx context.Context, e *economy.Engine) error {
	data, err := Encode(e.Snapshot(), e.Stats(), Meta{InstallID: a.InstallID(), SavedAt: a.now()})
	if err != nil {
		return err
	}
	if err := a.kv.Put(ctx, a.slot, data); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	return nil
}

// Load restores e from the slot. A missing or corrupt blob leaves e at its
// defaults and reports false; corruption is logged, not returned.
func (a *Adapter) Load(ctx context.Context, e *economy.Engine) (bool, error) {
	data, ok, err := a.kv.Get(ctx, a.slot)
	if err != nil {
		return false, fmt.Errorf("failed to read save: %w", err)
	}
	if !ok {
		e.Reset()
		return false, nil
	}
	if err := a.restore(data, e); err != nil {
		a.log.Warn("Ignoring corrupt save", "error", err)
		e.Reset()
		return false, nil
	}
	return true, nil
}

// Reset deletes the slot and reinitialises e. The next save gets a new install id.
func (a *Adapter) Reset(ctx context.Context, e *economy.Engine) error {
	if err := a.kv.Delete(ctx, a.slot); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	e.Reset()
	a.installID = ""
	return nil
}

// Export returns the raw blob stored in the slot.
func (a *Adapter) Export(ctx context.Context) ([]byte, error) {
	data, ok, err := a.kv.Get(ctx, a.slot)
	if err != nil {
		return nil, fmt.Errorf("failed to read save: %w", err)
	}
	if !ok {
		return nil, ErrNoSave
	}
	return data, nil
}

// Import decodes data into e and saves it to the slot. Unlike Load, a corrupt
// blob is returned as an error wrapping ErrCorrupt and e is left unchanged.
func (a *Adapter) Import(ctx context.Context, data []byte, e *economy.Engine) error {
	state, meta, err := Decode(data, e.Catalog())
	if err != nil {
		return err
	}
	a.adopt(meta)
	a.logDropped(e.Restore(state))
	return a.Save(ctx, e)
}

func (a *Adapter) restore(data []byte, e *economy.Engine) error {
	state, meta, err := Decode(data, e.Catalog())
	if err != nil {
		return err
	}
	a.adopt(meta)
	a.logDropped(e.Restore(state))
	a.log.Debug("Loaded save", "version", meta.Version, "saved_at", meta.SavedAt)
	return nil
}

func (a *Adapter) adopt(meta Meta) {
	if meta.InstallID != "" {
		a.installID = meta.InstallID
	}
}

func (a *Adapter) logDropped(dropped []string) {
	for _, id := range dropped {
		a.log.Debug("Dropped unknown save entry", "entry", id)
	}
}

// IsCorrupt reports whether err came from decoding a damaged blob.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
