// Package registry keeps model snapshots in Redis under a name.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/label"
	"github.com/jgreitemann/svm/logger"
	"github.com/jgreitemann/svm/model"
	"github.com/jgreitemann/svm/serialization"
	"github.com/jgreitemann/svm/utils"
)

// Registry stores one snapshot per name. Writes to the same name are
// serialized by a Redis lock.
type Registry struct {
	store  store
	prefix string
	format serialization.Format
}

// entry is what is stored under a key.
type entry struct {
	Format   serialization.Format `json:"format"`
	Checksum uint64               `json:"checksum"`
	Payload  []byte               `json:"payload"`
}

func newRegistry(s store, prefix string) *Registry {
	return &Registry{store: s, prefix: prefix, format: serialization.YAML}
}

// UseFormat sets the snapshot format of subsequent writes. Reads follow
// the format recorded with each entry.
func (r *Registry) UseFormat(f serialization.Format) {
	r.format = f
}

func (r *Registry) key(name string) string {
	return fmt.Sprintf("%s:%s", r.prefix, name)
}

// Put saves m under name, replacing whatever was there.
func Put[L comparable](ctx context.Context, r *Registry, name string, m *model.Model[L]) (err error) {
	registryLogger := logger.NewLogger("Model registry")
	key := r.key(name)

	var buf bytes.Buffer
	if err := serialization.Save(&buf, m, r.format); err != nil {
		return err
	}
	b, err := json.Marshal(entry{
		Format:   r.format,
		Checksum: utils.HashBytes(buf.Bytes()),
		Payload:  buf.Bytes(),
	})
	if err != nil {
		return err
	}

	releaseLock, err := r.store.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()
	if err := r.store.Set(ctx, key, b); err != nil {
		return err
	}
	registryLogger.Info().Str("key", key).Int("bytes", len(b)).Msg("model stored")
	return nil
}

// Get loads the model stored under name. A nil k takes the kernel from the
// snapshot.
func Get[L comparable](ctx context.Context, r *Registry, name string, space label.Space[L], k kernel.Kernel) (*model.Model[L], error) {
	registryLogger := logger.NewLogger("Model registry")
	key := r.key(name)

	b, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("registry: decoding %s: %w", key, err)
	}
	if sum := utils.HashBytes(e.Payload); sum != e.Checksum {
		registryLogger.Error().Str("key", key).Uint64("expected", e.Checksum).Uint64("actual", sum).Msg("corrupt model entry")
		return nil, fmt.Errorf("%w: %s", ErrChecksum, key)
	}
	m, err := serialization.Load(bytes.NewReader(e.Payload), space, k, e.Format)
	if err != nil {
		return nil, err
	}
	registryLogger.Debug().Str("key", key).Msg("model loaded")
	return m, nil
}

// Delete removes name. Deleting a missing name is ErrNotFound.
func (r *Registry) Delete(ctx context.Context, name string) error {
	key := r.key(name)
	releaseLock, err := r.store.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer releaseLock()
	found, err := r.store.Del(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

func (r *Registry) Close() error {
	return r.store.Close()
}
