package world

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/storage"
)

// Store receives committed batches.
type Store interface {
	Apply(ctx context.Context, b storage.Batch) error
}

// commitTimeout bounds one Apply.
const commitTimeout = 10 * time.Second

// journal holds the encoded pre-image of every object first touched in the
// open transaction, the ids created in it and the header as it was. Tasks
// deferred in the transaction are scheduled only when it commits.
type journal struct {
	pre     map[ID][]byte
	created map[ID]bool
	later   []func()
	root    *Root
}

// Begin opens a transaction. Mutations made outside a transaction are
// persisted by the next Commit but cannot be rolled back.
func (w *World) Begin() error {
	if w.tx != nil {
		return ErrTxActive
	}
	w.tx = &journal{pre: map[ID][]byte{}, created: map[ID]bool{}}
	return nil
}

// InTx reports whether a transaction is open.
func (w *World) InTx() bool { return w.tx != nil }

func (w *World) touch(id ID) {
	w.dirty[id] = struct{}{}
	if w.tx == nil || w.tx.created[id] {
		return
	}
	if _, ok := w.tx.pre[id]; ok {
		return
	}
	o, ok := w.objects[id]
	if !ok {
		return
	}
	data, err := encodeObject(o)
	if err != nil {
		w.log.Error("journaling object", zap.Int64("object", int64(id)), zap.Error(err))
		return
	}
	w.tx.pre[id] = data
}

func (w *World) created(id ID) {
	w.dirty[id] = struct{}{}
	if w.tx != nil {
		w.tx.created[id] = true
	}
}

func (w *World) touchRoot() {
	w.rootDirty = true
	if w.tx != nil && w.tx.root == nil {
		r := w.Root()
		w.tx.root = &r
	}
}

// Commit persists every change since the last commit and closes the open
// transaction, if any. When the store rejects the batch the transaction is
// rolled back and the error returned.
func (w *World) Commit() error {
	batch, err := w.batch()
	if err != nil {
		w.Abort()
		return err
	}
	if w.store != nil && !batch.Empty() {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()
		if err := w.store.Apply(ctx, batch); err != nil {
			w.Abort()
			return fmt.Errorf("committing: %w", err)
		}
	}
	w.dirty = map[ID]struct{}{}
	w.rootDirty = false
	if tx := w.tx; tx != nil {
		w.tx = nil
		for _, schedule := range tx.later {
			schedule()
		}
	}
	return nil
}

func (w *World) batch() (storage.Batch, error) {
	var b storage.Batch
	ids := make([]ID, 0, len(w.dirty))
	for id := range w.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		o, ok := w.objects[id]
		if !ok {
			b.Delete = append(b.Delete, int64(id))
			continue
		}
		rec, err := Encode(o)
		if err != nil {
			return storage.Batch{}, err
		}
		b.Put = append(b.Put, rec)
	}
	if w.rootDirty {
		data, err := encodeRoot(w.root)
		if err != nil {
			return storage.Batch{}, err
		}
		b.Meta = map[string][]byte{storage.MetaRoot: data}
	}
	return b, nil
}

// Abort rolls back every object touched in the open transaction. Objects
// created in it are removed and tasks deferred in it are dropped. The id counter is not rolled back, so ids stay
// unique across aborts.
func (w *World) Abort() {
	tx := w.tx
	w.tx = nil
	if tx == nil {
		return
	}
	for id := range tx.created {
		w.unregister(id)
	}
	restored := make([]Object, 0, len(tx.pre))
	for id, data := range tx.pre {
		o, err := decodeObject(data)
		if err != nil {
			w.log.Error("restoring object", zap.Int64("object", int64(id)), zap.Error(err))
			continue
		}
		w.drop(id)
		restored = append(restored, o)
	}
	for _, o := range restored {
		w.attach(o)
		w.index(o)
		if w.ticking {
			w.arm(o.Core().ID)
		}
	}
	if tx.root != nil {
		next := w.root.NextID
		w.root = *tx.root
		w.root.NextID = next
	}
}

// RunTx runs fn in a transaction, committing when it returns nil and
// aborting when it returns an error or panics. Inside an open transaction fn
// simply joins it.
func (w *World) RunTx(fn func() error) error {
	if w.tx != nil {
		return protect(fn)
	}
	if err := w.Begin(); err != nil {
		return err
	}
	if err := protect(fn); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func encodeObject(o Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&o); err != nil {
		return nil, fmt.Errorf("encoding %s %d: %w", ClassName(o), o.Core().ID, err)
	}
	return buf.Bytes(), nil
}

func decodeObject(data []byte) (Object, error) {
	var o Object
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&o); err != nil {
		return nil, fmt.Errorf("decoding object: %w", err)
	}
	return o, nil
}

func encodeRoot(r Root) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, fmt.Errorf("encoding root: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode renders o as a storage record.
func Encode(o Object) (storage.Record, error) {
	data, err := encodeObject(o)
	if err != nil {
		return storage.Record{}, err
	}
	return storage.Record{
		ID:    int64(o.Core().ID),
		Kind:  o.Kind().Catalog(),
		Class: ClassName(o),
		Data:  data,
	}, nil
}

// Load builds a world from a store snapshot. Objects of unknown classes are
// skipped and logged.
func Load(snap storage.Snapshot, opts Options) (*World, error) {
	w := New(opts)
	if data, ok := snap.Meta[storage.MetaRoot]; ok {
		var r Root
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
			return nil, fmt.Errorf("decoding root: %w", err)
		}
		w.root = r
	}
	var maxID ID
	for _, rec := range snap.Records {
		o, err := decodeObject(rec.Data)
		if err != nil {
			w.log.Error("loading object", zap.Int64("object", rec.ID), zap.String("class", rec.Class), zap.Error(err))
			continue
		}
		w.attach(o)
		w.index(o)
		maxID = max(maxID, o.Core().ID)
	}
	if w.root.NextID <= maxID {
		w.root.NextID = maxID + 1
	}
	return w, nil
}

// Snapshot encodes the whole world.
func (w *World) Snapshot() (storage.Snapshot, error) {
	var s storage.Snapshot
	ids := make([]ID, 0, len(w.objects))
	for id := range w.objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		rec, err := Encode(w.objects[id])
		if err != nil {
			return storage.Snapshot{}, err
		}
		s.Records = append(s.Records, rec)
	}
	data, err := encodeRoot(w.root)
	if err != nil {
		return storage.Snapshot{}, err
	}
	s.Meta = map[string][]byte{storage.MetaRoot: data}
	return s, nil
}
