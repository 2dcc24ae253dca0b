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

package buf

// FeatureKind 特色事件種類
type FeatureKind string

const (
	EventTrigger   FeatureKind = "trigger"
	EventBonusBuy  FeatureKind = "bonus_buy"
	EventRetrigger FeatureKind = "retrigger"
	EventGold      FeatureKind = "gold"
	EventTransform FeatureKind = "transform"
	EventWildMult  FeatureKind = "wild_multipliers"
	EventWinCap    FeatureKind = "wincap"
)

// FeatureEvent 特色事件：依發生順序記錄，Spin 指向 Spins 的索引（-1 代表不屬於任何一轉）。
//
// 各欄位意義依 Kind 而定：
//   - trigger / bonus_buy / retrigger：Count 為 scatter 數量，Value 為獲得場次
//   - gold：Count 為本轉金幣數，Value 為累積總數
//   - transform：Symbol 為被轉換的圖標，Value 為達成的門檻
//   - wild_multipliers：Mults 依欄優先順序列出本轉 wild 倍數
//   - wincap：Value 為封頂值，Count 為被捨棄的贏分
type FeatureEvent struct {
	Kind   FeatureKind
	Spin   int
	Count  int
	Value  int
	Symbol int16
	Mults  []int
}

// AddEvent 追加一筆特色事件，Spin 自動指向目前這一轉
func (rr *RoundResult) AddEvent(ev FeatureEvent) {
	ev.Spin = len(rr.Spins) - 1
	rr.Events = append(rr.Events, ev)
}

// EventCount 統計某種事件的次數
func (rr *RoundResult) EventCount(kind FeatureKind) int {
	n := 0
	for _, ev := range rr.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
