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
	"math"
	"math/bits"

	"github.com/zintix-labs/vaultways/errs"
)

// GID 遊戲（設定組）編號
type GID uint

// BetMode 押注模式名稱
const (
	BetModeNormal   = "normal"
	BetModeBonusBuy = "bonus_buy"
)

// Profile 一組數學設定的身分：RTP、封頂與觸發頻率屬於同一個版本，不得混用。
type Profile struct {
	Name             string  `yaml:"name"               json:"name"`
	Version          string  `yaml:"version"            json:"version"`
	RTPTarget        float64 `yaml:"rtp_target"         json:"rtp_target"`
	TriggerFrequency int     `yaml:"trigger_frequency"  json:"trigger_frequency"` // 1-in-N
}

type BetMode struct {
	Name string `yaml:"name"  json:"name"`
	Cost int    `yaml:"cost"  json:"cost"` // 以 1 倍押注為單位
}

// GameSetting 一份完整的設定組（輪帶、賠率表、特色遊戲表與封頂）。
type GameSetting struct {
	GameName   string          `yaml:"game_name"     json:"game_name"`
	GameID     GID             `yaml:"game_id"       json:"game_id"`
	Profile    Profile         `yaml:"profile"       json:"profile"`
	BetUnit    int             `yaml:"bet_unit"      json:"bet_unit"`
	MaxWinMult int             `yaml:"max_win_mult"  json:"max_win_mult"`
	BetModes   []BetMode       `yaml:"bet_modes"     json:"bet_modes"`
	Screen     ScreenSetting   `yaml:"screen"        json:"screen"`
	TopSymbol  string          `yaml:"top_symbol"    json:"top_symbol"`
	Symbols    []SymbolDef     `yaml:"symbols"       json:"symbols"`
	Modes      Modes           `yaml:"modes"         json:"modes"`
	FreeSpins  FreeSpinSetting `yaml:"free_spins"    json:"free_spins"`
	Gold       GoldSetting     `yaml:"gold"          json:"gold"`
	BonusBuy   BonusBuySetting `yaml:"bonus_buy"     json:"bonus_buy"`

	SymbolTable *SymbolTable `yaml:"-"  json:"-"`
	MaxBetMult  int          `yaml:"-"  json:"max_bet_mult"` // 由設定推得，超過即拒絕
}

// init 展開衍生資料並執行完整檢查；任何錯誤都是 ConfigurationError。
func (gs *GameSetting) init() error {
	if gs.GameName == "" {
		return errs.Configuration("game_name required")
	}
	if gs.BetUnit < 1 {
		return errs.Configurationf("game_name: %s err: invalid bet_unit %d", gs.GameName, gs.BetUnit)
	}
	if gs.MaxWinMult < 1 {
		return errs.Configurationf("game_name: %s err: invalid max_win_mult %d", gs.GameName, gs.MaxWinMult)
	}
	if err := gs.initBetModes(); err != nil {
		return err
	}
	if err := gs.Screen.init(); err != nil {
		return err
	}
	st, err := NewSymbolTable(gs.Symbols, gs.Screen.Columns, gs.TopSymbol)
	if err != nil {
		return errs.Wrap(err, "game_name: "+gs.GameName)
	}
	gs.SymbolTable = st
	if err := gs.Modes.Base.init("base", st, gs.Screen.Columns, false, false); err != nil {
		return err
	}
	if err := gs.Modes.Free.init("free", st, gs.Screen.Columns, true, true); err != nil {
		return err
	}
	if err := gs.FreeSpins.init(gs.Screen.Columns); err != nil {
		return err
	}
	if err := gs.Gold.init(st); err != nil {
		return err
	}
	if err := gs.BonusBuy.init(gs.FreeSpins.Trigger); err != nil {
		return err
	}
	if _, ok := gs.BetMode(BetModeBonusBuy); ok && len(gs.BonusBuy.ScatterWeights) == 0 {
		return errs.Configuration("bonus_buy mode requires bonus_buy.scatter_weights")
	}
	return gs.initBetLimit()
}

// initBetLimit 推導 MaxBetMult：封頂與單轉最差贏分乘上押注倍數都不得溢位。
//
// 單轉最差 = 最高賠率 × rows^cols × 最大 wild 倍數^(rows×wild 軸數) × (派彩圖標數 + 1)。
// 整局累加另以飽和加法處理，只需保證單轉不溢位。
func (gs *GameSetting) initBetLimit() error {
	st := gs.SymbolTable
	maxPay := 0
	for _, v := range st.PayFlat {
		maxPay = max(maxPay, v)
	}
	rows, cols := gs.Screen.Rows, gs.Screen.Columns
	spin, ok := 1, true
	step := func(f int) {
		if ok {
			spin, ok = MulChecked(spin, f)
		}
	}
	step(maxPay)
	for range cols {
		step(rows)
	}
	wildCells := rows * max(len(gs.Modes.Base.WildReels), len(gs.Modes.Free.WildReels))
	wm := 1
	for _, w := range gs.Modes.Free.WildMultipliers {
		wm = max(wm, w.Mult)
	}
	for range wildCells {
		step(wm)
	}
	step(len(st.Paying) + 1)
	capUnit, capOK := MulChecked(gs.MaxWinMult, gs.BetUnit)
	if !ok || !capOK {
		return errs.Configurationf("game_name: %s err: worst-case win overflows at bet_mult 1", gs.GameName)
	}
	gs.MaxBetMult = math.MaxInt / max(spin, capUnit, 1)
	return nil
}

// MulChecked 兩個非負整數相乘，溢位時 ok 為 false
func MulChecked(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// BetMultOK betMult 是否落在 [1, MaxBetMult]
func (gs *GameSetting) BetMultOK(betMult int) bool {
	return betMult >= 1 && betMult <= gs.MaxBetMult
}

func (gs *GameSetting) initBetModes() error {
	if len(gs.BetModes) == 0 {
		return errs.Configuration("bet_modes is empty")
	}
	seen := map[string]struct{}{}
	for _, m := range gs.BetModes {
		if m.Name != BetModeNormal && m.Name != BetModeBonusBuy {
			return errs.Configurationf("unknown bet mode %q", m.Name)
		}
		if _, dup := seen[m.Name]; dup {
			return errs.Configurationf("duplicate bet mode %q", m.Name)
		}
		if m.Cost < 1 {
			return errs.Configurationf("bet mode %s: cost must be >= 1", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	if m, ok := gs.BetMode(BetModeNormal); !ok || m.Cost != 1 {
		return errs.Configuration("bet mode normal with cost 1 is required")
	}
	return nil
}

// BetMode 依名稱查押注模式
func (gs *GameSetting) BetMode(name string) (BetMode, bool) {
	for _, m := range gs.BetModes {
		if m.Name == name {
			return m, true
		}
	}
	return BetMode{}, false
}

// CapUnits 單局封頂（bet_unit 單位，betMult 為押注倍數）；betMult 超出 MaxBetMult 時 ok 為 false
func (gs *GameSetting) CapUnits(betMult int) (int, bool) {
	if !gs.BetMultOK(betMult) {
		return 0, false
	}
	return gs.MaxWinMult * gs.BetUnit * betMult, true
}
