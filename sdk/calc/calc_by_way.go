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

// Package calc 以 ways 規則（由左至右、從第 0 軸起算）計算盤面分數。
package calc

import (
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/spec"
)

const minWaysSpan = 3

// WaysEvaluator 負責根據盤面計算 ways 輸贏。
//
// 熱路徑暫存全部預先配置，Evaluate 不做任何配置（命中格直接切自暫存區）。
type WaysEvaluator struct {
	st         *spec.SymbolTable
	Cols       int
	Rows       int
	ScreenSize int
	wild       int16

	symbolInCols []int   // [symN*cols] 每個圖標每軸數量
	symbolCounts []int   // [symN]
	hitMapFlat   []int16 // [symN*rc] 每個圖標的命中格（欄優先）
	wildInCols   []int   // [cols]
	wildMultCols []int   // [cols] 每軸 wild 倍數連乘
	wildPrefix   []int   // [cols+1] 前 c 軸的 wild 顆數
	wildHitFlat  []int16 // [rc]
}

// NewWaysEvaluator 建立算分器。
func NewWaysEvaluator(st *spec.SymbolTable, screen *spec.ScreenSetting) *WaysEvaluator {
	symN := st.Len()
	rc := screen.Columns * screen.Rows
	return &WaysEvaluator{
		st:           st,
		Cols:         screen.Columns,
		Rows:         screen.Rows,
		ScreenSize:   rc,
		wild:         st.Wild,
		symbolInCols: make([]int, symN*screen.Columns),
		symbolCounts: make([]int, symN),
		hitMapFlat:   make([]int16, symN*rc),
		wildInCols:   make([]int, screen.Columns),
		wildMultCols: make([]int, screen.Columns),
		wildPrefix:   make([]int, screen.Columns+1),
		wildHitFlat:  make([]int16, rc),
	}
}

// Evaluate 計算盤面所有 ways 中獎並寫入 rr 目前開啟的這一轉，回傳本轉贏分。
//
// grid 為轉換後的盤面；mults 為每格 wild 倍數（0 非 wild）。
// 每個派彩圖標各自獨立計算，不合併也不去重。
// 整段只由 wild 構成的連線只派一次，以該長度賠率最高的圖標計。
func (we *WaysEvaluator) Evaluate(betMult int, grid []int16, mults []int, rr *buf.RoundResult) (int, error) {
	if len(grid) != we.ScreenSize || len(mults) != we.ScreenSize {
		return 0, errs.Invariantf("grid size %d / mults size %d, want %d", len(grid), len(mults), we.ScreenSize)
	}
	if err := we.countCells(grid, mults); err != nil {
		return 0, err
	}

	cols := we.Cols
	rc := we.ScreenSize
	arr := we.symbolInCols
	wc := we.wildInCols
	total := 0

	for _, s := range we.st.Paying {
		base := int(s) * cols
		span, ways, own := 0, 1, 0
		for c := 0; c < cols; c++ {
			n := arr[base+c] + wc[c]
			if n == 0 {
				break
			}
			ways *= n
			own += arr[base+c]
			span++
		}
		// own == 0 代表整段都是 wild，統一由 allWild 處理
		if span < minWaysSpan || own == 0 {
			continue
		}
		pay := we.st.Pay(s, span)
		if pay == 0 {
			continue
		}
		if err := we.verify(grid, s, span, ways); err != nil {
			return 0, err
		}
		wm := we.wildFactor(span)
		win := pay * ways * wm * betMult
		start := int(s) * rc
		rr.RecordWin(buf.WinDetail{
			Win:      win,
			SymbolID: s,
			Count:    span,
			Ways:     ways,
			WildMult: wm,
			Pay:      pay,
		}, we.hitMapFlat[start:start+own], we.wildHitFlat[:we.wildPrefix[span]])
		total += win
	}

	w, err := we.allWild(betMult, grid, rr)
	if err != nil {
		return 0, err
	}
	return total + w, nil
}

// allWild 前導全 wild 軸數 >= 3 時，以該長度賠率最高的圖標派一次（同分取 id 較小者）。
func (we *WaysEvaluator) allWild(betMult int, grid []int16, rr *buf.RoundResult) (int, error) {
	wc := we.wildInCols
	span, ways := 0, 1
	for c := 0; c < we.Cols && wc[c] > 0; c++ {
		ways *= wc[c]
		span++
	}
	if span < minWaysSpan {
		return 0, nil
	}
	best, bestPay := int16(-1), 0
	for _, s := range we.st.Paying {
		if p := we.st.Pay(s, span); p > bestPay {
			best, bestPay = s, p
		}
	}
	if best < 0 {
		return 0, nil
	}
	if err := we.verify(grid, we.wild, span, ways); err != nil {
		return 0, err
	}
	wm := we.wildFactor(span)
	win := bestPay * ways * wm * betMult
	rr.RecordWin(buf.WinDetail{
		Win:      win,
		SymbolID: best,
		Count:    span,
		Ways:     ways,
		WildMult: wm,
		Pay:      bestPay,
		AllWild:  true,
	}, we.wildHitFlat[:we.wildPrefix[span]])
	return win, nil
}

func (we *WaysEvaluator) countCells(grid []int16, mults []int) error {
	cols, rows := we.Cols, we.Rows
	rc := we.ScreenSize
	symN := len(we.symbolCounts)

	clear(we.symbolInCols)
	clear(we.symbolCounts)
	clear(we.wildInCols)
	// hitMapFlat 不用清，覆寫即可

	arr := we.symbolInCols
	cnt := we.symbolCounts
	hits := we.hitMapFlat
	wHits := we.wildHitFlat
	wCnt := 0

	_ = grid[rc-1] // BCE hint
	for c := 0; c < cols; c++ {
		we.wildPrefix[c] = wCnt
		we.wildMultCols[c] = 1
		for r := 0; r < rows; r++ {
			i := r*cols + c
			s := grid[i]
			if uint(s) >= uint(symN) {
				return errs.Invariantf("unknown symbol id %d at cell %d", s, i)
			}
			if s == we.wild {
				m := mults[i]
				if m < 1 {
					return errs.Invariantf("wild at cell %d carries multiplier %d", i, m)
				}
				wHits[wCnt] = int16(i)
				wCnt++
				we.wildInCols[c]++
				we.wildMultCols[c] *= m
				continue
			}
			k := cnt[s]
			hits[int(s)*rc+k] = int16(i)
			cnt[s]++
			arr[int(s)*cols+c]++
		}
	}
	we.wildPrefix[cols] = wCnt
	return nil
}

// wildFactor 連線範圍內每一格 wild 的倍數連乘（同軸多格各自計入）
func (we *WaysEvaluator) wildFactor(span int) int {
	m := 1
	for c := 0; c < span; c++ {
		m *= we.wildMultCols[c]
	}
	return m
}

// verify 直接從盤面重算連線：必須從第 0 軸連續、ways 等於各軸命中數連乘且 >= 1。
func (we *WaysEvaluator) verify(grid []int16, s int16, span int, ways int) error {
	prod := 1
	for c := 0; c < span; c++ {
		n := 0
		for r := 0; r < we.Rows; r++ {
			g := grid[r*we.Cols+c]
			if g == s || g == we.wild {
				n++
			}
		}
		if n == 0 {
			return errs.Invariantf("symbol %s span %d has a gap at reel %d", we.st.Name(s), span, c)
		}
		prod *= n
	}
	if prod != ways || ways < 1 {
		return errs.Invariantf("symbol %s ways %d, recount %d", we.st.Name(s), ways, prod)
	}
	return nil
}
