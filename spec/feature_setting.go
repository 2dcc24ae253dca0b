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

package spec

import (
	"slices"

	"github.com/zintix-labs/vaultways/errs"
)

// AwardTable scatter 數量 -> 免費遊戲場次
type AwardTable map[int]int

// Award 超出表格上限的數量以最高一檔計；低於最低一檔回傳 0
func (t AwardTable) Award(count int) int {
	best, bestKey := 0, -1
	for k, v := range t {
		if k <= count && k > bestKey {
			best, bestKey = v, k
		}
	}
	return best
}

// Keys 遞增排序的 scatter 數量
func (t AwardTable) Keys() []int {
	ks := make([]int, 0, len(t))
	for k := range t {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

func (t AwardTable) valid(name string, min int) error {
	if len(t) == 0 {
		return errs.Configurationf("free_spins.%s is empty", name)
	}
	for k, v := range t {
		if k < min {
			return errs.Configurationf("free_spins.%s: count %d below min_scatters %d", name, k, min)
		}
		if v <= 0 {
			return errs.Configurationf("free_spins.%s: count %d awards %d spins", name, k, v)
		}
	}
	if _, ok := t[min]; !ok {
		return errs.Configurationf("free_spins.%s: missing entry for %d scatters", name, min)
	}
	return nil
}

// FreeSpinSetting 免費遊戲觸發、再觸發與結束條件
//
// MaxTotalSpins 為 0 代表不限制總場次；EndOnCap 開啟時一旦累積贏分到達封頂即結束。
type FreeSpinSetting struct {
	MinScatters   int        `yaml:"min_scatters"     json:"min_scatters"`
	Trigger       AwardTable `yaml:"trigger"          json:"trigger"`
	Retrigger     AwardTable `yaml:"retrigger"        json:"retrigger"`
	MaxTotalSpins int        `yaml:"max_total_spins"  json:"max_total_spins"`
	EndOnCap      bool       `yaml:"end_on_cap"       json:"end_on_cap"`
}

func (fs *FreeSpinSetting) init(cols int) error {
	if fs.MinScatters < 1 || fs.MinScatters > cols {
		return errs.Configurationf("free_spins.min_scatters %d out of range", fs.MinScatters)
	}
	if err := fs.Trigger.valid("trigger", fs.MinScatters); err != nil {
		return err
	}
	if err := fs.Retrigger.valid("retrigger", fs.MinScatters); err != nil {
		return err
	}
	if fs.MaxTotalSpins < 0 {
		return errs.Configuration("free_spins.max_total_spins must be >= 0")
	}
	if fs.MaxTotalSpins > 0 && fs.MaxTotalSpins < fs.Trigger.Award(cols) {
		return errs.Configuration("free_spins.max_total_spins below largest trigger award")
	}
	return nil
}

// Threshold 累積金幣數量達到 Count 時，Symbol 轉換為頂級圖標
type Threshold struct {
	Count  int    `yaml:"count"   json:"count"`
	Symbol string `yaml:"symbol"  json:"symbol"`
	ID     int16  `yaml:"-"       json:"-"`
}

type GoldSetting struct {
	Thresholds []Threshold `yaml:"thresholds"  json:"thresholds"`
}

// init 門檻必須嚴格遞增，來源必須是非頂級的高分圖標且依基礎賠率遞增
func (gs *GoldSetting) init(st *SymbolTable) error {
	if len(gs.Thresholds) == 0 {
		return errs.Configuration("gold.thresholds is empty")
	}
	seen := map[int16]struct{}{}
	prevCount, prevPay := 0, -1
	for i := range gs.Thresholds {
		th := &gs.Thresholds[i]
		if th.Count <= prevCount {
			return errs.Configurationf("gold.thresholds must be strictly ascending at %d", th.Count)
		}
		id, ok := st.ID(th.Symbol)
		if !ok {
			return errs.Configurationf("gold.thresholds: unknown symbol %q", th.Symbol)
		}
		if st.Kinds[id] != KindPremium || id == st.Top {
			return errs.Configurationf("gold.thresholds: %s must be a premium symbol other than the top symbol", th.Symbol)
		}
		if _, dup := seen[id]; dup {
			return errs.Configurationf("gold.thresholds: %s listed twice", th.Symbol)
		}
		pay := st.Pay(id, st.Cols)
		if pay <= prevPay {
			return errs.Configurationf("gold.thresholds: %s must out-pay the previous source", th.Symbol)
		}
		seen[id] = struct{}{}
		th.ID = id
		prevCount, prevPay = th.Count, pay
	}
	return nil
}

// BonusBuySetting 購買免費遊戲時 scatter 數量的權重
type BonusBuySetting struct {
	ScatterWeights map[int]int `yaml:"scatter_weights"  json:"scatter_weights"`
}

// Counts / Weights 依 scatter 數量遞增輸出
func (bb *BonusBuySetting) Counts() []int {
	ks := make([]int, 0, len(bb.ScatterWeights))
	for k := range bb.ScatterWeights {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

func (bb *BonusBuySetting) Weights() []int {
	ks := bb.Counts()
	ws := make([]int, len(ks))
	for i, k := range ks {
		ws[i] = bb.ScatterWeights[k]
	}
	return ws
}

func (bb *BonusBuySetting) init(trigger AwardTable) error {
	if len(bb.ScatterWeights) == 0 {
		return nil
	}
	total := 0
	for k, w := range bb.ScatterWeights {
		if _, ok := trigger[k]; !ok {
			return errs.Configurationf("bonus_buy.scatter_weights: %d scatters has no trigger award", k)
		}
		if w < 0 {
			return errs.Configurationf("bonus_buy.scatter_weights: negative weight for %d", k)
		}
		total += w
	}
	if total == 0 {
		return errs.Configuration("bonus_buy.scatter_weights sum to zero")
	}
	return nil
}
