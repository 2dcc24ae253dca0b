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

// Package gen 依輪帶與亂數流產生可見盤面，並在免費遊戲中為 wild 抽倍數。
package gen

import (
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/sdk/sampler"
	"github.com/zintix-labs/vaultways/spec"
)

// GridSampler 保存生成盤面所需的所有狀態。
// 會快取列數、行數、輪帶與輸出緩衝，以避免熱路徑重複配置。
//
// 每次 Sample 固定消耗 Cols 次停輪抽樣（第 0 軸先抽），
// 若該模式有 wild 倍數表，再依「軸由左至右、列由上至下」為每一格 wild 各抽一次。
type GridSampler struct {
	core  *core.Core
	Cols  int
	Rows  int
	reels *spec.ReelSet
	wild  int16
	mults *sampler.WeightTable // 主遊戲為 nil

	Grid  []int16 // row-major 盤面
	Mults []int   // 每格 wild 倍數：0 非 wild，主遊戲 wild 為 1
	Stops []int
}

// NewGridSampler 建立盤面生成器；mode 必須已通過設定檢查。
func NewGridSampler(c *core.Core, screen *spec.ScreenSetting, mode *spec.ModeSetting, wild int16) (*GridSampler, error) {
	if len(mode.Reels.Strips) != screen.Columns {
		return nil, errs.Configurationf("reel set has %d strips, screen has %d columns", len(mode.Reels.Strips), screen.Columns)
	}
	gs := &GridSampler{
		core:  c,
		Cols:  screen.Columns,
		Rows:  screen.Rows,
		reels: &mode.Reels,
		wild:  wild,
		Grid:  make([]int16, screen.ScreenSize),
		Mults: make([]int, screen.ScreenSize),
		Stops: make([]int, screen.Columns),
	}
	if len(mode.WildMultipliers) > 0 {
		wt, err := sampler.NewWeightTable(mode.MultValues(), mode.MultWeights())
		if err != nil {
			return nil, errs.WrapKind(err, errs.KindConfiguration, "wild multiplier table")
		}
		gs.mults = wt
	}
	return gs, nil
}

// Sample 生成盤面熱路徑函數，回傳的兩個 slice 會在下一次 Sample 被覆寫。
func (gs *GridSampler) Sample() ([]int16, []int) {
	for col := range gs.Cols {
		gs.Stops[col] = gs.core.IntN(gs.reels.Strips[col].Len())
	}
	gs.fill()
	gs.assignWild()
	return gs.Grid, gs.Mults
}

// SampleAt 以指定停輪位置生成盤面（不消耗停輪抽樣，wild 倍數照常抽）。
func (gs *GridSampler) SampleAt(stops []int) ([]int16, []int) {
	copy(gs.Stops, stops)
	gs.fill()
	gs.assignWild()
	return gs.Grid, gs.Mults
}

func (gs *GridSampler) fill() {
	cols := gs.Cols
	s := gs.Grid
	_ = s[(gs.Rows-1)*cols+(cols-1)] // BCE hint
	for col := range cols {
		stop := gs.Stops[col]
		for row := range gs.Rows {
			s[row*cols+col] = gs.reels.SymbolAt(col, stop+row)
		}
	}
}

// assignWild 依欄優先順序走訪 wild 格。
func (gs *GridSampler) assignWild() {
	cols := gs.Cols
	for col := range cols {
		for row := range gs.Rows {
			i := row*cols + col
			switch {
			case gs.Grid[i] != gs.wild:
				gs.Mults[i] = 0
			case gs.mults == nil:
				gs.Mults[i] = 1
			default:
				gs.Mults[i] = gs.mults.Draw(gs.core)
			}
		}
	}
}

// Count 統計盤面上 id 出現的次數
func Count(grid []int16, id int16) int {
	n := 0
	for _, s := range grid {
		if s == id {
			n++
		}
	}
	return n
}
