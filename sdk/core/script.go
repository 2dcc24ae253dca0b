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

package core

import (
	"encoding/binary"

	"github.com/zintix-labs/vaultways/errs"
)

// Script 是有限長度的亂數流：依序吐出事先給定的值。
//
// 用途：
//   - 回放：Core 開啟 trace 後記錄的是每次抽樣的回傳值，原樣交給 Script 即可重現同一局。
//   - 測試：直接指定停輪位置與倍數抽樣結果。
//
// 值用完之後 Exhausted() 為 true，之後的抽樣一律回傳 0，由 Core.Err 判定整局作廢。
type Script struct {
	vals      []uint64
	pos       int
	exhausted bool
}

func NewScript(vals ...uint64) *Script {
	return &Script{vals: vals}
}

func (s *Script) next() uint64 {
	if s.pos >= len(s.vals) {
		s.exhausted = true
		return 0
	}
	v := s.vals[s.pos]
	s.pos++
	return v
}

func (s *Script) Uint64() uint64 {
	return s.next()
}

func (s *Script) UintN(n uint) uint {
	if n == 0 {
		return 0
	}
	return uint(s.next() % uint64(n))
}

func (s *Script) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return int(s.next() % uint64(n))
}

func (s *Script) Exhausted() bool {
	return s.exhausted
}

// Remaining 剩餘可用值數量
func (s *Script) Remaining() int {
	return len(s.vals) - s.pos
}

func (s *Script) Snapshot() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(s.pos))
	return b, nil
}

func (s *Script) Restore(b []byte) error {
	if len(b) != 8 {
		return errs.NewWarn("script snapshot must be 8 bytes")
	}
	p := int(binary.BigEndian.Uint64(b))
	if p < 0 || p > len(s.vals) {
		return errs.NewWarn("script snapshot out of range")
	}
	s.pos = p
	s.exhausted = false
	return nil
}
