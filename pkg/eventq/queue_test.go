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

package eventq

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	t.Parallel()

	q := New[int]()
	assert.Nil(t, q.Drain())

	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, q.Drain())
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Drain())
}

func TestQueueReadySignal(t *testing.T) {
	t.Parallel()

	q := New[string]()

	select {
	case <-q.Ready():
		t.Fatal("ready signalled on empty queue")
	default:
	}

	q.Push("a")
	q.Push("b")

	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready not signalled after push")
	}

	assert.Equal(t, []string{"a", "b"}, q.Drain())
}

func TestQueuePushIsVisibleAfterConcurrentProducers(t *testing.T) {
	t.Parallel()

	q := New[int]()

	const producers, perProducer = 8, 250

	var wg sync.WaitGroup

	for p := 0; p < producers; p++ {
		wg.Add(1)

		go func(base int) {
			defer wg.Done()

			for i := 0; i < perProducer; i++ {
				q.Push(base*perProducer + i)
			}
		}(p)
	}

	wg.Wait()

	items := q.Drain()
	require.Len(t, items, producers*perProducer)

	// Per-producer order is preserved.
	last := make(map[int]int)
	for _, v := range items {
		p := v / perProducer
		if prev, ok := last[p]; ok {
			require.Greater(t, v, prev)
		}

		last[p] = v
	}
}
