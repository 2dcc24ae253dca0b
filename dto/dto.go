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

// Package dto 定義對外輸出的資料結構：已結算的一局、作廢局與重現所需的 RNG 狀態。
package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/vaultways/corefmt"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/spec"
)

const (
	multPrecision  int32 = 6 // 倍數小數位數
	moneyPrecision int32 = 8 // 派彩金額小數位數
)

// RoundResult 一局的對外結果（主遊戲 + 整場免費遊戲），只在結算後產生。
type RoundResult struct {
	RoundID         string          `json:"round_id"`
	GameName        string          `json:"game"`
	GameID          spec.GID        `json:"gid"`
	Profile         string          `json:"profile"`
	Mode            string          `json:"mode"`
	Bet             decimal.Decimal `json:"bet"`
	BetMult         int             `json:"bet_mult"`
	FinalMultiplier decimal.Decimal `json:"final_multiplier"`
	Payout          decimal.Decimal `json:"payout"`
	WinUnits        int             `json:"win_units"`              // 封頂後（bet_unit 單位）
	ExcessUnits     int             `json:"excess_units,omitempty"` // 被封頂捨棄
	Capped          bool            `json:"capped,omitempty"`
	BaseWin         int             `json:"base_win"`
	FreeWin         int             `json:"free_win"`
	Triggered       bool            `json:"triggered,omitempty"`
	FreeSpins       int             `json:"free_spins,omitempty"`
	Retriggers      int             `json:"retriggers,omitempty"`
	Grids           []SpinDTO       `json:"grids,omitempty"`
	FeatureLog      []EventDTO      `json:"feature_log,omitempty"`
	State           SpinState       `json:"state"`
	Void            *VoidRound      `json:"void,omitempty"`
}

// SpinDTO 單轉快照：原始盤面、轉換後盤面（實際算分用）、wild 倍數與中獎細項
type SpinDTO struct {
	Kind      string   `json:"kind"`
	Index     int      `json:"index"`
	Stops     []int    `json:"stops"`
	Raw       []int16  `json:"raw"`
	Eval      []int16  `json:"eval"`
	Mults     []int    `json:"mults,omitempty"`
	Win       int      `json:"win"`
	Wins      []WinDTO `json:"wins,omitempty"`
	Scatters  int      `json:"scatters"`
	Gold      int      `json:"gold,omitempty"`
	Meter     int      `json:"meter,omitempty"`
	Remaining int      `json:"remaining"`
}

type WinDTO struct {
	Symbol   string  `json:"symbol"`
	SymbolID int16   `json:"symbol_id"`
	Count    int     `json:"count"`
	Ways     int     `json:"ways"`
	WildMult int     `json:"wild_mult"`
	Pay      int     `json:"pay"`
	Win      int     `json:"win"`
	AllWild  bool    `json:"all_wild,omitempty"`
	Hits     []int16 `json:"hits"`
}

type EventDTO struct {
	Kind   string `json:"kind"`
	Spin   int    `json:"spin"`
	Count  int    `json:"count,omitempty"`
	Value  int    `json:"value,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Mults  []int  `json:"mults,omitempty"`
}

// SpinState 重現一局所需的 RNG 狀態：start 為開局前快照，after 為結束後快照
type SpinState struct {
	StartB64U string `json:"start_b64u"`
	AfterB64U string `json:"after_b64u"`
	Draws     int    `json:"draws"`
}

// VoidRound 作廢局：不派彩、不回報任何盤面
type VoidRound struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// RoundMeta 產生 DTO 時由呼叫端提供的本局外部資訊
type RoundMeta struct {
	RoundID string
	Profile string
	Bet     decimal.Decimal
	Start   []byte
	After   []byte
	Draws   int
}

// NewRoundID 以 UUIDv7 產生可依時間排序的局號
func NewRoundID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewRoundResultDTO 深拷貝已結算的結果緩衝；未結算的結果屬於程式錯誤。
func NewRoundResultDTO(rr *buf.RoundResult, st *spec.SymbolTable, meta RoundMeta) (RoundResult, error) {
	if rr == nil || st == nil {
		return RoundResult{}, errs.NewWarn("round result is nil")
	}
	if !rr.Settled {
		return RoundResult{}, errs.Invariant("round result is not settled")
	}
	mult := Multiplier(rr.Payout, rr.BetUnit, rr.BetMult)
	out := RoundResult{
		RoundID:         meta.RoundID,
		GameName:        rr.GameName,
		GameID:          rr.GameID,
		Profile:         meta.Profile,
		Mode:            rr.BetMode,
		Bet:             meta.Bet,
		BetMult:         rr.BetMult,
		FinalMultiplier: mult,
		Payout:          PayoutAmount(meta.Bet, rr.Payout, rr.BetUnit, rr.BetMult),
		WinUnits:        rr.Payout,
		ExcessUnits:     rr.Excess,
		Capped:          rr.Capped,
		BaseWin:         rr.BaseWin,
		FreeWin:         rr.FreeWin,
		Triggered:       rr.Triggered,
		FreeSpins:       rr.FreeSpinsPlayed,
		Retriggers:      rr.Retriggers,
		State:           newState(meta),
	}
	if out.RoundID == "" {
		out.RoundID = NewRoundID()
	}
	out.Grids = make([]SpinDTO, len(rr.Spins))
	for i, sp := range rr.Spins {
		out.Grids[i] = SpinDTO{
			Kind:      sp.Kind.String(),
			Index:     sp.Index,
			Stops:     append([]int(nil), sp.Stops...),
			Raw:       append([]int16(nil), rr.RawGrid(i)...),
			Eval:      append([]int16(nil), rr.EvalGrid(i)...),
			Win:       sp.Win,
			Scatters:  sp.Scatters,
			Gold:      sp.Gold,
			Meter:     sp.Meter,
			Remaining: sp.Remaining,
		}
		if m := rr.SpinMults(i); hasWild(m) {
			out.Grids[i].Mults = append([]int(nil), m...)
		}
		ds := rr.SpinDetails(i)
		if len(ds) == 0 {
			continue
		}
		wins := make([]WinDTO, len(ds))
		for j, d := range ds {
			wins[j] = WinDTO{
				Symbol:   st.Name(d.SymbolID),
				SymbolID: d.SymbolID,
				Count:    d.Count,
				Ways:     d.Ways,
				WildMult: d.WildMult,
				Pay:      d.Pay,
				Win:      d.Win,
				AllWild:  d.AllWild,
				Hits:     append([]int16(nil), rr.Hits(d)...),
			}
		}
		out.Grids[i].Wins = wins
	}
	if len(rr.Events) > 0 {
		out.FeatureLog = make([]EventDTO, len(rr.Events))
		for i, ev := range rr.Events {
			e := EventDTO{
				Kind:  string(ev.Kind),
				Spin:  ev.Spin,
				Count: ev.Count,
				Value: ev.Value,
				Mults: append([]int(nil), ev.Mults...),
			}
			if ev.Symbol >= 0 {
				e.Symbol = st.Name(ev.Symbol)
			}
			out.FeatureLog[i] = e
		}
	}
	return out, nil
}

// NewVoidResult 作廢局的輸出：零派彩、無盤面
func NewVoidResult(gs *spec.GameSetting, mode string, betMult int, cause error, meta RoundMeta) RoundResult {
	out := RoundResult{
		RoundID:         meta.RoundID,
		GameName:        gs.GameName,
		GameID:          gs.GameID,
		Profile:         meta.Profile,
		Mode:            mode,
		Bet:             meta.Bet,
		BetMult:         betMult,
		FinalMultiplier: decimal.Zero,
		Payout:          decimal.Zero,
		State:           newState(meta),
		Void:            &VoidRound{Kind: errs.KindOf(cause).String(), Reason: cause.Error()},
	}
	if out.RoundID == "" {
		out.RoundID = NewRoundID()
	}
	return out
}

// Multiplier payout / (betUnit * betMult)，截斷到 multPrecision 位
func Multiplier(payout, betUnit, betMult int) decimal.Decimal {
	return truncDiv(decimal.NewFromInt(int64(payout)), betUnit, betMult, multPrecision)
}

// PayoutAmount bet * payout / (betUnit * betMult)，先乘後除再截斷，派彩只捨不入
func PayoutAmount(bet decimal.Decimal, payout, betUnit, betMult int) decimal.Decimal {
	return truncDiv(bet.Mul(decimal.NewFromInt(int64(payout))), betUnit, betMult, moneyPrecision)
}

func truncDiv(num decimal.Decimal, betUnit, betMult int, prec int32) decimal.Decimal {
	den := decimal.NewFromInt(int64(betUnit)).Mul(decimal.NewFromInt(int64(betMult)))
	if den.IsZero() {
		return decimal.Zero
	}
	q, _ := num.QuoRem(den, prec)
	return q
}

func newState(meta RoundMeta) SpinState {
	return SpinState{
		StartB64U: corefmt.EncodeBase64URL(meta.Start),
		AfterB64U: corefmt.EncodeBase64URL(meta.After),
		Draws:     meta.Draws,
	}
}

func hasWild(m []int) bool {
	for _, v := range m {
		if v > 0 {
			return true
		}
	}
	return false
}
