// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package audit 保存每一局的輸出與亂數紀錄，供事後查帳與回放。
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
)

// ErrNotFound 查無此局
var ErrNotFound = errs.NewWarn("round not found")

// Record 一局的審計紀錄。Draws 交給 Replay 即可重現同一局。
type Record struct {
	Round     dto.RoundResult `json:"round"`
	Draws     []uint64        `json:"draws,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store 審計紀錄的存放處
type Store interface {
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, roundID string) (*Record, error)
}

// NewRecord 複製 draws，呼叫端的 trace 緩衝下一局會被覆寫
func NewRecord(round dto.RoundResult, draws []uint64) *Record {
	return &Record{
		Round:     round,
		Draws:     append([]uint64(nil), draws...),
		CreatedAt: time.Now().UTC(),
	}
}

// MemoryStore 行程內的有界存放，超過容量時丟棄最舊的紀錄
type MemoryStore struct {
	mu    sync.RWMutex
	limit int
	order []string
	recs  map[string]*Record
}

func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = 10_000
	}
	return &MemoryStore{
		limit: limit,
		order: make([]string, 0, limit),
		recs:  make(map[string]*Record, limit),
	}
}

func (m *MemoryStore) Put(_ context.Context, rec *Record) error {
	if rec == nil || rec.Round.RoundID == "" {
		return errs.NewWarn("audit record without round id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := rec.Round.RoundID
	if _, ok := m.recs[id]; !ok {
		if len(m.order) >= m.limit {
			delete(m.recs, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, id)
	}
	m.recs[id] = rec
	return nil
}

func (m *MemoryStore) Get(_ context.Context, roundID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[roundID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recs)
}
