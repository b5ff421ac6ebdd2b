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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// FileStore keeps the count in a JSON object on disk. Other keys in the file are
// preserved. Writes go through a temporary file and a rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Increment(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, n, err := s.read()
	if err != nil {
		return 0, err
	}

	n++
	doc[Key] = json.RawMessage(strconv.FormatInt(n, 10))

	if err := s.write(doc); err != nil {
		return 0, err
	}

	return n, nil
}

func (s *FileStore) Value(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, n, err := s.read()

	return n, err
}

// read returns the whole document and the current count. A missing file is an empty
// document.
func (s *FileStore) read() (map[string]json.RawMessage, int64, error) {
	doc := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, 0, nil
	}

	if err != nil {
		return nil, 0, fmt.Errorf("failed to read counter file %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}

	raw, ok := doc[Key]
	if !ok {
		return doc, 0, nil
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}

	return doc, n, nil
}

func (s *FileStore) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp counter file: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write counter file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write counter file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace counter file: %w", err)
	}

	return nil
}
