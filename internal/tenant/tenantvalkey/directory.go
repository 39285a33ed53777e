// Package tenantvalkey shares directory lookups between resolver instances
// through valkey.
package tenantvalkey

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
)

const (
	objectTypeWhitelabel = "whitelabel"
	objectTypeAgency     = "agency"

	DefaultTTL = time.Minute
)

// Directory is a read-through tenant.Directory. Found records are kept in
// valkey for ttl; misses and errors of the next directory are never stored,
// and valkey failures fall back to the next directory.
type Directory struct {
	next   tenant.Directory
	valkey valkey.Client
	prefix string
	ttl    time.Duration
}

var _ tenant.Directory = (*Directory)(nil)

func NewDirectory(next tenant.Directory, valkeyClient valkey.Client, prefix string, ttl time.Duration) *Directory {
	if ttl < time.Second {
		ttl = DefaultTTL
	}
	return &Directory{
		next:   next,
		valkey: valkeyClient,
		prefix: strings.TrimSuffix(prefix, ":"),
		ttl:    ttl,
	}
}

func (d *Directory) FindVerifiedAgencyByDomain(ctx context.Context, domain string) (tenant.WhitelabelAgency, error) {
	return readThrough(ctx, d, objectTypeWhitelabel, domain, d.next.FindVerifiedAgencyByDomain)
}

func (d *Directory) FindAgencyBySlug(ctx context.Context, slug string) (tenant.Agency, error) {
	return readThrough(ctx, d, objectTypeAgency, slug, d.next.FindAgencyBySlug)
}

func readThrough[T any](ctx context.Context, d *Directory, objectType, id string, load func(context.Context, string) (T, error)) (T, error) {
	key := d.key(objectType, id)

	var cached T
	found, err := d.get(ctx, key, &cached)
	if err != nil {
		slogctx.Warn(ctx, "Could not read directory cache", "key", key, "error", err)
	}
	if found {
		return cached, nil
	}

	v, err := load(ctx, id)
	if err != nil {
		return v, err
	}

	if err := d.set(ctx, key, v); err != nil {
		slogctx.Warn(ctx, "Could not write directory cache", "key", key, "error", err)
	}

	return v, nil
}

func (d *Directory) get(ctx context.Context, key string, decodeInto any) (bool, error) {
	bytes, err := d.valkey.Do(ctx, d.valkey.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("executing get command: %w", err)
	}

	if err := json.Unmarshal(bytes, decodeInto); err != nil {
		return false, fmt.Errorf("unmarshaling json: %w", err)
	}

	return true, nil
}

func (d *Directory) set(ctx context.Context, key string, val any) error {
	bytes, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}

	cmd := d.valkey.B().Set().Key(key).Value(valkey.BinaryString(bytes)).ExSeconds(int64(d.ttl.Seconds())).Build()
	if err := d.valkey.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}

	return nil
}

func (d *Directory) key(objectType, id string) string {
	return fmt.Sprintf("%s:%s:%s", d.prefix, objectType, id)
}
