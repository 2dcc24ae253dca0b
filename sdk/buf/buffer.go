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

// Package buf 保存一局（含所有免費遊戲）的完整紀錄：盤面快照、算分細項、特色事件與結算。
//
// 同一個 RoundResult 由 Machine 重複使用，Reset 只回卷長度、不釋放容量。
// 結算（Payout.Settle）之前的內容不對外；對外輸出只看已結算的結果。
package buf

import (
	"github.com/zintix-labs/vaultways/spec"
)

const capRoundGrow int = 64 // 預配 spin 數量

// SpinKind 單次旋轉的種類
type SpinKind uint8

const (
	SpinBase SpinKind = iota
	SpinFree
)

func (k SpinKind) String() string {
	if k == SpinFree {
		return "free"
	}
	return "base"
}

// WinDetail 一筆 ways 中獎：Count 為連線軸數（固定從第 0 軸起算）。
//
// Win = Pay * Ways * WildMult * betMult（單位 bet_unit）
type WinDetail struct {
	Win           int
	SymbolID      int16
	Count         int
	Ways          int
	WildMult      int
	Pay           int
	AllWild       bool
	HitsFlatStart int
	HitsFlatLen   int
}

// SpinRecord 單次旋轉的索引資訊，盤面與細項存在 RoundResult 的攤平緩衝區。
type SpinRecord struct {
	Kind         SpinKind
	Index        int // 免費遊戲第幾轉（從 1 起算）；主遊戲為 0
	Stops        []int
	GridStart    int // Grids 中原始盤面起點；轉換後盤面緊接其後
	MultStart    int
	DetailsStart int
	DetailsEnd   int
	Win          int
	Scatters     int
	Gold         int
	Meter        int // 本轉結束後的金幣累積
	Remaining    int // 本轉結束後剩餘場次
}

// RoundResult 一局的完整結果（主遊戲 + 可能的免費遊戲）。
type RoundResult struct {
	GameName string
	GameID   spec.GID
	BetMode  string
	BetMult  int
	BetUnit  int
	CapUnits int

	ScreenSize int
	Grids      []int16 // 每轉 2*ScreenSize：原始盤面 + 轉換後盤面
	Mults      []int   // 每轉 ScreenSize
	HitsFlat   []int16
	Details    []WinDetail
	Spins      []SpinRecord
	Events     []FeatureEvent

	BaseWin         int
	FreeWin         int
	TotalWin        int // 封頂前
	Payout          int // 封頂後
	Excess          int // 被封頂捨棄的部分
	Capped          bool
	Triggered       bool
	FreeSpinsPlayed int
	FreeSpinsAward  int
	Retriggers      int
	Settled         bool

	open bool
}

// NewRoundResult 依照設定建立 RoundResult，並預配快照與細項緩衝。
func NewRoundResult(gs *spec.GameSetting) *RoundResult {
	sz := gs.Screen.ScreenSize
	return &RoundResult{
		GameName:   gs.GameName,
		GameID:     gs.GameID,
		BetUnit:    gs.BetUnit,
		ScreenSize: sz,
		Grids:      make([]int16, 0, 2*sz*capRoundGrow),
		Mults:      make([]int, 0, sz*capRoundGrow),
		HitsFlat:   make([]int16, 0, 4*sz*capRoundGrow),
		Details:    make([]WinDetail, 0, 4*capRoundGrow),
		Spins:      make([]SpinRecord, 0, capRoundGrow),
		Events:     make([]FeatureEvent, 0, capRoundGrow),
	}
}

// Reset 重置狀態，清空累積結果但保留已配置容量。
func (rr *RoundResult) Reset() {
	rr.BetMode = ""
	rr.BetMult = 0
	rr.CapUnits = 0
	rr.Grids = rr.Grids[:0]
	rr.Mults = rr.Mults[:0]
	rr.HitsFlat = rr.HitsFlat[:0]
	rr.Details = rr.Details[:0]
	rr.Spins = rr.Spins[:0]
	rr.Events = rr.Events[:0]
	rr.BaseWin = 0
	rr.FreeWin = 0
	rr.TotalWin = 0
	rr.Payout = 0
	rr.Excess = 0
	rr.Capped = false
	rr.Triggered = false
	rr.FreeSpinsPlayed = 0
	rr.FreeSpinsAward = 0
	rr.Retriggers = 0
	rr.Settled = false
	rr.open = false
}

// Begin 開始一局
func (rr *RoundResult) Begin(betMode string, betMult int, capUnits int) {
	rr.Reset()
	rr.BetMode = betMode
	rr.BetMult = betMult
	rr.CapUnits = capUnits
}

// BeginSpin 開始記錄一轉：快照原始盤面、轉換後盤面與 wild 倍數。
//
// 流程：BeginSpin -> RecordWin* -> FinishSpin，同一時間只能有一轉處於開啟狀態。
func (rr *RoundResult) BeginSpin(kind SpinKind, index int, raw, eval []int16, mults []int, stops []int) {
	if rr.open {
		panic("previous spin is not finished")
	}
	if len(raw) != rr.ScreenSize || len(eval) != rr.ScreenSize || len(mults) != rr.ScreenSize {
		panic("screen size not match")
	}
	rr.open = true
	sp := SpinRecord{
		Kind:         kind,
		Index:        index,
		Stops:        append([]int(nil), stops...),
		GridStart:    len(rr.Grids),
		MultStart:    len(rr.Mults),
		DetailsStart: len(rr.Details),
		DetailsEnd:   len(rr.Details),
	}
	rr.Grids = append(rr.Grids, raw...)
	rr.Grids = append(rr.Grids, eval...)
	rr.Mults = append(rr.Mults, mults...)
	rr.Spins = append(rr.Spins, sp)
}

// RecordWin 紀錄一筆中獎細項，命中格可分多段傳入。
func (rr *RoundResult) RecordWin(d WinDetail, segs ...[]int16) {
	if !rr.open {
		panic("record win without an open spin")
	}
	d.HitsFlatStart = len(rr.HitsFlat)
	d.HitsFlatLen = 0
	for _, s := range segs {
		rr.HitsFlat = append(rr.HitsFlat, s...)
		d.HitsFlatLen += len(s)
	}
	rr.Details = append(rr.Details, d)
	sp := &rr.Spins[len(rr.Spins)-1]
	sp.DetailsEnd = len(rr.Details)
	sp.Win = addSat(sp.Win, d.Win)
}

// FinishSpin 結束當前這一轉，並把贏分累積到主遊戲或免費遊戲。
func (rr *RoundResult) FinishSpin(scatters, gold, meter, remaining int) int {
	if !rr.open {
		panic("finish spin without an open spin")
	}
	rr.open = false
	sp := &rr.Spins[len(rr.Spins)-1]
	sp.Scatters = scatters
	sp.Gold = gold
	sp.Meter = meter
	sp.Remaining = remaining
	if sp.Kind == SpinFree {
		rr.FreeWin = addSat(rr.FreeWin, sp.Win)
		rr.FreeSpinsPlayed++
	} else {
		rr.BaseWin = addSat(rr.BaseWin, sp.Win)
	}
	return sp.Win
}

// RunningWin 目前累積的（未封頂）贏分
func (rr *RoundResult) RunningWin() int {
	w := addSat(rr.BaseWin, rr.FreeWin)
	if rr.open {
		w = addSat(w, rr.Spins[len(rr.Spins)-1].Win)
	}
	return w
}

// CurrentSpin 取得目前（或最後一轉）的紀錄，沒有任何一轉時回傳 nil
func (rr *RoundResult) CurrentSpin() *SpinRecord {
	if len(rr.Spins) == 0 {
		return nil
	}
	return &rr.Spins[len(rr.Spins)-1]
}

// RawGrid / EvalGrid / SpinMults / SpinDetails 取第 i 轉的唯讀切片，請勿改動
func (rr *RoundResult) RawGrid(i int) []int16 {
	s := rr.Spins[i].GridStart
	return rr.Grids[s : s+rr.ScreenSize]
}

func (rr *RoundResult) EvalGrid(i int) []int16 {
	s := rr.Spins[i].GridStart + rr.ScreenSize
	return rr.Grids[s : s+rr.ScreenSize]
}

func (rr *RoundResult) SpinMults(i int) []int {
	s := rr.Spins[i].MultStart
	return rr.Mults[s : s+rr.ScreenSize]
}

func (rr *RoundResult) SpinDetails(i int) []WinDetail {
	sp := rr.Spins[i]
	return rr.Details[sp.DetailsStart:sp.DetailsEnd]
}

// Hits 取得細項的命中格
func (rr *RoundResult) Hits(d WinDetail) []int16 {
	return rr.HitsFlat[d.HitsFlatStart : d.HitsFlatStart+d.HitsFlatLen]
}

// Discard 丟棄當前未結束的一轉（作廢時使用）
func (rr *RoundResult) Discard() {
	if !rr.open {
		return
	}
	sp := rr.Spins[len(rr.Spins)-1]
	if sp.DetailsEnd > sp.DetailsStart {
		rr.HitsFlat = rr.HitsFlat[:rr.Details[sp.DetailsStart].HitsFlatStart]
	}
	rr.Grids = rr.Grids[:sp.GridStart]
	rr.Mults = rr.Mults[:sp.MultStart]
	rr.Details = rr.Details[:sp.DetailsStart]
	rr.Spins = rr.Spins[:len(rr.Spins)-1]
	rr.open = false
}
