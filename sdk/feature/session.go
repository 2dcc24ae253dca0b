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

package feature

import (
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
)

// Session 免費遊戲場次控制器，並持有本場的 Collector。
type Session struct {
	Remaining  int
	Played     int
	Awarded    int
	Retriggers int

	Collector *Collector

	cfg    *spec.FreeSpinSetting
	active bool
}

// NewSession 建立（可重複使用的）Session
func NewSession(fs *spec.FreeSpinSetting, gs *spec.GoldSetting, gold, top int16) *Session {
	return &Session{
		cfg:       fs,
		Collector: NewCollector(gs, gold, top),
	}
}

// Start 以 scatter 數量開始一場免費遊戲，回傳獲得場次；數量不足回傳 0 且不開始。
func (s *Session) Start(scatters int) (int, error) {
	if s.active {
		return 0, errs.Invariant("free spin session already active")
	}
	award := s.cfg.Trigger.Award(scatters)
	if scatters < s.cfg.MinScatters || award == 0 {
		return 0, nil
	}
	s.Remaining, s.Played, s.Awarded, s.Retriggers = 0, 0, 0, 0
	s.Collector.Reset()
	s.active = true
	return s.grant(award), nil
}

// Retrigger 免費遊戲中再觸發，回傳追加場次
func (s *Session) Retrigger(scatters int) int {
	if !s.active || scatters < s.cfg.MinScatters {
		return 0
	}
	add := s.grant(s.cfg.Retrigger.Award(scatters))
	if add > 0 {
		s.Retriggers++
	}
	return add
}

// grant 依 max_total_spins 限制實際給予的場次
func (s *Session) grant(n int) int {
	if limit := s.cfg.MaxTotalSpins; limit > 0 && s.Awarded+n > limit {
		n = limit - s.Awarded
	}
	if n < 0 {
		n = 0
	}
	s.Awarded += n
	s.Remaining += n
	return n
}

// Next 一轉結束（贏分已結算）後扣一場，歸零即結束
func (s *Session) Next() error {
	if !s.active || s.Remaining <= 0 {
		return errs.Invariant("advance on an inactive free spin session")
	}
	s.Remaining--
	s.Played++
	if s.Remaining == 0 {
		s.active = false
	}
	return nil
}

// Stop 立即結束（end_on_cap）
func (s *Session) Stop() {
	s.Remaining = 0
	s.active = false
}

func (s *Session) Active() bool {
	return s.active
}

// EndOnCap 是否在封頂時結束
func (s *Session) EndOnCap() bool {
	return s.cfg.EndOnCap
}
