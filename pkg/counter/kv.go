/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go/jetstream"
)

const maxCASAttempts = 16

var errCASExhausted = errors.New("counter update kept conflicting")

// KVStore keeps the count in a JetStream key-value bucket so several coordinators, or
// a replacement box, share one total. Updates are compare-and-set on the revision.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore opens bucket, creating it when missing.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string) (*KVStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "patron-handler persisted counters",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", bucket, err)
	}

	return &KVStore{kv: kv}, nil
}

func (s *KVStore) Increment(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		entry, err := s.kv.Get(ctx, Key)

		switch {
		case errors.Is(err, jetstream.ErrKeyNotFound):
			_, err = s.kv.Create(ctx, Key, []byte("1"))
			if err == nil {
				return 1, nil
			}
		case err != nil:
			return 0, fmt.Errorf("failed to read counter: %w", err)
		default:
			n, perr := parse(entry.Value())
			if perr != nil {
				return 0, perr
			}

			n++

			_, err = s.kv.Update(ctx, Key, []byte(strconv.FormatInt(n, 10)), entry.Revision())
			if err == nil {
				return n, nil
			}
		}

		if !isConflict(err) {
			return 0, fmt.Errorf("failed to write counter: %w", err)
		}
	}

	return 0, errCASExhausted
}

func (s *KVStore) Value(ctx context.Context) (int64, error) {
	entry, err := s.kv.Get(ctx, Key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}

	return parse(entry.Value())
}

func parse(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrCorrupt, b)
	}

	return n, nil
}

func isConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError

	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}
