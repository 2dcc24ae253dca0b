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
	"fmt"
	"slices"

	"github.com/zintix-labs/vaultways/errs"
)

// ReelStrip 一條輪帶：循環排列的圖標 id。
type ReelStrip struct {
	Symbols []int16
}

// SymbolAt 回傳循環位置 pos 上的圖標（負數亦會繞回）。
func (r ReelStrip) SymbolAt(pos int) int16 {
	n := len(r.Symbols)
	p := pos % n
	if p < 0 {
		p += n
	}
	return r.Symbols[p]
}

func (r ReelStrip) Len() int {
	return len(r.Symbols)
}

// ReelSet 一個模式（主遊戲或免費遊戲）的整組輪帶。
type ReelSet struct {
	Strips []ReelStrip
}

// SymbolAt 回傳第 reel 軸、位置 pos 的圖標；reel 越界屬於程式錯誤，直接 panic。
func (rs *ReelSet) SymbolAt(reel, pos int) int16 {
	if reel < 0 || reel >= len(rs.Strips) {
		panic(fmt.Sprintf("reel index %d out of range [0,%d)", reel, len(rs.Strips)))
	}
	return rs.Strips[reel].SymbolAt(pos)
}

// WildMult 免費遊戲 wild 倍數及權重
type WildMult struct {
	Mult   int `yaml:"mult"    json:"mult"`
	Weight int `yaml:"weight"  json:"weight"`
}

// ModeSetting 單一模式的輪帶與 wild 規則
type ModeSetting struct {
	WildReels       []int      `yaml:"wild_reels"        json:"wild_reels"`
	WildMultipliers []WildMult `yaml:"wild_multipliers"  json:"wild_multipliers"`
	ReelsStr        [][]string `yaml:"reels"             json:"reels"`
	Reels           ReelSet    `yaml:"-"                 json:"-"`
}

// MultValues / MultWeights 拆開 wild 倍數表，給 sampler.NewWeightTable 使用
func (ms *ModeSetting) MultValues() []int {
	v := make([]int, len(ms.WildMultipliers))
	for i, w := range ms.WildMultipliers {
		v[i] = w.Mult
	}
	return v
}

func (ms *ModeSetting) MultWeights() []int {
	v := make([]int, len(ms.WildMultipliers))
	for i, w := range ms.WildMultipliers {
		v[i] = w.Weight
	}
	return v
}

// init 把圖標名稱轉成 id 並檢查：
// 每軸非空、wild 只能在 wild_reels、collector 只能出現在允許的模式。
func (ms *ModeSetting) init(name string, st *SymbolTable, cols int, allowCollector bool, needMults bool) error {
	if len(ms.ReelsStr) != cols {
		return errs.Configurationf("mode %s: %d reels, want %d", name, len(ms.ReelsStr), cols)
	}
	for _, r := range ms.WildReels {
		if r < 0 || r >= cols {
			return errs.Configurationf("mode %s: wild reel %d out of range", name, r)
		}
	}
	ms.Reels = ReelSet{Strips: make([]ReelStrip, cols)}
	for reel, names := range ms.ReelsStr {
		if len(names) == 0 {
			return errs.Configurationf("mode %s: reel %d is empty", name, reel)
		}
		strip := make([]int16, len(names))
		for pos, sn := range names {
			id, ok := st.ID(sn)
			if !ok {
				return errs.Configurationf("mode %s: reel %d pos %d unknown symbol %q", name, reel, pos, sn)
			}
			if id == st.Wild && !slices.Contains(ms.WildReels, reel) {
				return errs.Configurationf("mode %s: wild on reel %d outside wild_reels", name, reel)
			}
			if id == st.Collector && !allowCollector {
				return errs.Configurationf("mode %s: collector %s not allowed", name, sn)
			}
			strip[pos] = id
		}
		ms.Reels.Strips[reel] = ReelStrip{Symbols: strip}
	}

	if needMults {
		if len(ms.WildMultipliers) == 0 {
			return errs.Configurationf("mode %s: wild_multipliers required", name)
		}
		total := 0
		for _, w := range ms.WildMultipliers {
			if w.Mult < 1 || w.Weight < 0 {
				return errs.Configurationf("mode %s: invalid wild multiplier %+v", name, w)
			}
			total += w.Weight
		}
		if total == 0 {
			return errs.Configurationf("mode %s: wild multiplier weights sum to zero", name)
		}
	} else if len(ms.WildMultipliers) != 0 {
		return errs.Configurationf("mode %s: wild multipliers only apply in free spins", name)
	}
	return nil
}

// Modes 主遊戲與免費遊戲兩組輪帶
type Modes struct {
	Base ModeSetting `yaml:"base"  json:"base"`
	Free ModeSetting `yaml:"free"  json:"free"`
}
