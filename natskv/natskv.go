// Package natskv implements caseflow.Store on a NATS JetStream key-value bucket.
// Each case is one JSON document keyed by its case id, so case ids are limited
// to the KV key alphabet: letters, digits and "-/_=.", not starting or ending
// with a dot. Other ids fail with caseflow.ErrInvalidCaseID.
package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/meikuraledutech/caseflow"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the bucket used when none is configured.
const DefaultBucket = "caseflow_cases"

// KVStore stores case graphs in a JetStream KV bucket.
type KVStore struct {
	js     jetstream.JetStream
	name   string
	bucket jetstream.KeyValue
}

var _ caseflow.Store = (*KVStore)(nil)

// New creates (or binds to) the bucket and returns a KVStore.
func New(ctx context.Context, js jetstream.JetStream, bucket string) (*KVStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	s := &KVStore{js: js, name: bucket}
	if err := s.CreateSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the bucket if it doesn't exist.
func (s *KVStore) CreateSchema(ctx context.Context) error {
	kv, err := s.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      s.name,
		Description: "Automation case flow graphs",
		History:     5,
	})
	if err != nil {
		return fmt.Errorf("caseflow: create kv bucket %s: %w", s.name, err)
	}
	s.bucket = kv
	return nil
}

// DropSchema deletes the bucket. The store is unusable until CreateSchema
// is called again.
func (s *KVStore) DropSchema(ctx context.Context) error {
	if err := s.js.DeleteKeyValue(ctx, s.name); err != nil && !errors.Is(err, jetstream.ErrBucketNotFound) {
		return fmt.Errorf("caseflow: delete kv bucket %s: %w", s.name, err)
	}
	s.bucket = nil
	return nil
}

func (s *KVStore) kv() (jetstream.KeyValue, error) {
	if s.bucket == nil {
		return nil, fmt.Errorf("caseflow: kv bucket %s not created", s.name)
	}
	return s.bucket, nil
}

// validKey reports whether caseID is usable as a JetStream KV key.
func validKey(caseID string) bool {
	if caseID == "" || strings.HasPrefix(caseID, ".") || strings.HasSuffix(caseID, ".") {
		return false
	}
	for _, r := range caseID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-/_=.", r):
		default:
			return false
		}
	}
	return true
}

func checkKey(caseID string) error {
	if !validKey(caseID) {
		return fmt.Errorf("%w: %q is not a valid kv key", caseflow.ErrInvalidCaseID, caseID)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, caseID string) (*caseflow.Graph, error) {
	if err := checkKey(caseID); err != nil {
		return nil, err
	}
	kv, err := s.kv()
	if err != nil {
		return nil, err
	}
	entry, err := kv.Get(ctx, caseID)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("caseflow: get %s: %w", caseID, err)
	}
	var g caseflow.Graph
	if err := json.Unmarshal(entry.Value(), &g); err != nil {
		return nil, fmt.Errorf("caseflow: decode %s: %w", caseID, err)
	}
	return &g, nil
}

func (s *KVStore) Put(ctx context.Context, caseID string, g *caseflow.Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return caseflow.ErrEmptyGraph
	}
	if err := checkKey(caseID); err != nil {
		return err
	}
	kv, err := s.kv()
	if err != nil {
		return err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("caseflow: encode %s: %w", caseID, err)
	}
	if _, err := kv.Put(ctx, caseID, data); err != nil {
		return fmt.Errorf("caseflow: put %s: %w", caseID, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, caseID string) error {
	if err := checkKey(caseID); err != nil {
		return err
	}
	kv, err := s.kv()
	if err != nil {
		return err
	}
	if err := kv.Purge(ctx, caseID); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("caseflow: delete %s: %w", caseID, err)
	}
	return nil
}

func (s *KVStore) List(ctx context.Context) ([]string, error) {
	kv, err := s.kv()
	if err != nil {
		return nil, err
	}
	keys, err := kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("caseflow: list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
