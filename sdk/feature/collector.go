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

// Package feature 實作免費遊戲的狀態機：金幣累積、圖標轉換與場次控制。
//
// 所有狀態都屬於單一 Session，Session 結束即隨之消滅，不跨局保存。
package feature

import (
	"slices"

	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
)

// GoldMeter 單調不減的金幣計數器
type GoldMeter struct {
	count int
}

// Add 累加金幣；n 為負代表上游計數錯誤
func (m *GoldMeter) Add(n int) error {
	if n < 0 {
		return errs.Invariantf("gold meter cannot decrease (add %d)", n)
	}
	m.count += n
	return nil
}

func (m *GoldMeter) Count() int {
	return m.count
}

// TransformationSet 只增不減的集合：其中的圖標在算分時視為頂級圖標
type TransformationSet struct {
	ids []int16
}

// Add 加入圖標，已存在時回傳 false
func (ts *TransformationSet) Add(id int16) bool {
	if slices.Contains(ts.ids, id) {
		return false
	}
	ts.ids = append(ts.ids, id)
	return true
}

func (ts *TransformationSet) Contains(id int16) bool {
	return slices.Contains(ts.ids, id)
}

func (ts *TransformationSet) Len() int {
	return len(ts.ids)
}

// IDs 依加入順序回傳（唯讀）
func (ts *TransformationSet) IDs() []int16 {
	return ts.ids
}

// Apply 把 src 複製到 dst，集合內的圖標改寫為 top；回傳被改寫的格數
func (ts *TransformationSet) Apply(dst, src []int16, top int16) int {
	copy(dst, src)
	if len(ts.ids) == 0 {
		return 0
	}
	n := 0
	for i, s := range dst {
		if ts.Contains(s) {
			dst[i] = top
			n++
		}
	}
	return n
}

// Collector 把盤面上的金幣累積到 GoldMeter，跨過門檻時擴充 TransformationSet。
//
// 門檻依遞增順序檢查；同一轉跨過多個門檻時全部套用（由低到高），
// 轉換從下一轉才生效（本轉在收集前已完成算分）。
type Collector struct {
	Meter GoldMeter
	Set   TransformationSet

	thresholds []spec.Threshold
	gold       int16
	top        int16
	next       int
}

func NewCollector(gs *spec.GoldSetting, gold, top int16) *Collector {
	return &Collector{
		thresholds: gs.Thresholds,
		gold:       gold,
		top:        top,
		Set:        TransformationSet{ids: make([]int16, 0, len(gs.Thresholds))},
	}
}

// Collect 收集原始盤面上所有金幣，回傳本轉金幣數與本轉新達成的門檻。
func (c *Collector) Collect(raw []int16) (int, []spec.Threshold, error) {
	n := 0
	for _, s := range raw {
		if s == c.gold {
			n++
		}
	}
	before, setBefore := c.Meter.Count(), c.Set.Len()
	if err := c.Meter.Add(n); err != nil {
		return 0, nil, err
	}
	start := c.next
	for c.next < len(c.thresholds) && c.Meter.Count() >= c.thresholds[c.next].Count {
		c.Set.Add(c.thresholds[c.next].ID)
		c.next++
	}
	if c.Meter.Count() < before || c.Set.Len() < setBefore {
		return 0, nil, errs.Invariant("collector state went backwards")
	}
	return n, c.thresholds[start:c.next], nil
}

// Transform 以目前的轉換集合產生算分用盤面
func (c *Collector) Transform(dst, raw []int16) int {
	return c.Set.Apply(dst, raw, c.top)
}

// Reset 清空（新的 Session 開始時呼叫）
func (c *Collector) Reset() {
	c.Meter = GoldMeter{}
	c.Set.ids = c.Set.ids[:0]
	c.next = 0
}
