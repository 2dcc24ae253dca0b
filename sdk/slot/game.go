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

// Package slot 串接盤面生成、算分、免費遊戲狀態機與結算，提供單局的 Spin 入口。
package slot

import (
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/sdk/calc"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/sdk/feature"
	"github.com/zintix-labs/vaultways/sdk/gen"
	"github.com/zintix-labs/vaultways/sdk/sampler"
	"github.com/zintix-labs/vaultways/spec"
)

// maxSessionSpins 單場免費遊戲的硬上限，超過代表場次控制失控
const maxSessionSpins = 10_000

// Game 負責掌管單一設定組的生命週期：建立模式處理器、串接特色流程並提供 spin 入口。
type Game struct {
	Core        *core.Core
	GameSetting *spec.GameSetting
	GameName    string
	GameId      spec.GID
	Base        *GameMode
	Free        *GameMode
	Session     *feature.Session
	Result      *buf.RoundResult // Spin結果緩衝
	Payout      buf.Payout

	buy *sampler.WeightTable // 未開放購買時為 nil
}

// NewGame 建立 Game，使用呼叫端提供（已檢查過）的 GameSetting
func NewGame(gs *spec.GameSetting, c *core.Core) (*Game, error) {
	if gs == nil || gs.SymbolTable == nil {
		return nil, errs.Configuration("game setting is not initialized")
	}
	st := gs.SymbolTable
	we := calc.NewWaysEvaluator(st, &gs.Screen)
	g := &Game{
		Core:        c,
		GameSetting: gs,
		GameName:    gs.GameName,
		GameId:      gs.GameID,
		Session:     feature.NewSession(&gs.FreeSpins, &gs.Gold, st.Collector, st.Top),
		Result:      buf.NewRoundResult(gs),
		Payout:      buf.Payout{MaxWinMult: gs.MaxWinMult, BetUnit: gs.BetUnit},
	}
	var err error
	if g.Base, err = newGameMode(c, buf.SpinBase, gs, &gs.Modes.Base, we); err != nil {
		return nil, errs.Wrap(err, "build base mode")
	}
	if g.Free, err = newGameMode(c, buf.SpinFree, gs, &gs.Modes.Free, we); err != nil {
		return nil, errs.Wrap(err, "build free mode")
	}
	if _, ok := gs.BetMode(spec.BetModeBonusBuy); ok {
		wt, err := sampler.NewWeightTable(gs.BonusBuy.Counts(), gs.BonusBuy.Weights())
		if err != nil {
			return nil, errs.WrapKind(err, errs.KindConfiguration, "bonus buy scatter weights")
		}
		g.buy = wt
	}
	return g, nil
}

// ============================================================
// ** 以下公開方法 **
// ============================================================

// Spin 進行完整一局並回傳已結算的結果緩衝（下一次 Spin 會覆寫）。
//
// 亂數耗盡或不變量被破壞時整局作廢：回傳錯誤，且不回報任何部分派彩。
func (g *Game) Spin(betMode string, betMult int) (*buf.RoundResult, error) {
	if !g.GameSetting.BetMultOK(betMult) {
		return nil, errs.Warnf("bet mult %d outside [1,%d]", betMult, g.GameSetting.MaxBetMult)
	}
	rr := g.Result
	rr.Begin(betMode, betMult, g.Payout.Cap(betMult))
	g.Session.Stop()

	var err error
	switch betMode {
	case spec.BetModeNormal:
		err = g.playBase(betMult)
	case spec.BetModeBonusBuy:
		if g.buy == nil {
			return nil, errs.Warnf("bet mode %s not offered by %s", betMode, g.GameName)
		}
		err = g.playBonusBuy(betMult)
	default:
		return nil, errs.Warnf("unknown bet mode %q", betMode)
	}
	// 耗盡之後的抽樣全是 0，後續錯誤不可信，以耗盡為準
	if cerr := g.Core.Err(); cerr != nil {
		err = cerr
	}
	if err == nil {
		err = g.Payout.Settle(rr)
	}
	if err != nil {
		rr.Discard()
		g.Session.Stop()
		return nil, errs.Wrap(err, "round void")
	}
	return rr, nil
}

// BuyCost 購買免費遊戲的成本（以 1 倍押注計），未開放回傳 0
func (g *Game) BuyCost() int {
	m, ok := g.GameSetting.BetMode(spec.BetModeBonusBuy)
	if !ok {
		return 0
	}
	return m.Cost
}

// ============================================================
// ** 以下內部方法 **
// ============================================================

func (g *Game) playBase(betMult int) error {
	rr := g.Result
	st := g.GameSetting.SymbolTable
	raw, _, err := g.Base.spin(betMult, 0, nil, rr)
	if err != nil {
		return err
	}
	sc := gen.Count(raw, st.Scatter)
	awarded, err := g.Session.Start(sc)
	if err != nil {
		return err
	}
	rr.FinishSpin(sc, 0, 0, awarded)
	if awarded == 0 {
		return nil
	}
	rr.Triggered = true
	rr.AddEvent(buf.FeatureEvent{Kind: buf.EventTrigger, Count: sc, Value: awarded, Symbol: -1})
	return g.playFree(betMult)
}

func (g *Game) playBonusBuy(betMult int) error {
	rr := g.Result
	sc := g.buy.Draw(g.Core)
	if err := g.Core.Err(); err != nil {
		return err
	}
	awarded, err := g.Session.Start(sc)
	if err != nil {
		return err
	}
	if awarded == 0 {
		return errs.Invariantf("bonus buy drew %d scatters without an award", sc)
	}
	rr.Triggered = true
	rr.AddEvent(buf.FeatureEvent{Kind: buf.EventBonusBuy, Count: sc, Value: awarded, Symbol: -1})
	return g.playFree(betMult)
}

// playFree 跑完整場免費遊戲。每一轉的順序：
// 生成 -> 以目前轉換集合算分 -> 收集金幣（轉換下一轉生效）-> 再觸發 -> 扣場次。
func (g *Game) playFree(betMult int) error {
	rr := g.Result
	s := g.Session
	col := s.Collector
	st := g.GameSetting.SymbolTable

	for s.Active() {
		if s.Played >= maxSessionSpins {
			return errs.Invariantf("free spin session exceeded %d spins", maxSessionSpins)
		}
		raw, mults, err := g.Free.spin(betMult, s.Played+1, col, rr)
		if err != nil {
			return err
		}
		if wm := wildMults(mults, g.Free.Sampler.Cols, g.Free.Sampler.Rows); len(wm) > 0 {
			rr.AddEvent(buf.FeatureEvent{Kind: buf.EventWildMult, Count: len(wm), Mults: wm, Symbol: -1})
		}

		gold, reached, err := col.Collect(raw)
		if err != nil {
			return err
		}
		if gold > 0 {
			rr.AddEvent(buf.FeatureEvent{Kind: buf.EventGold, Count: gold, Value: col.Meter.Count(), Symbol: -1})
		}
		for _, th := range reached {
			rr.AddEvent(buf.FeatureEvent{Kind: buf.EventTransform, Value: th.Count, Symbol: th.ID})
		}

		sc := gen.Count(raw, st.Scatter)
		if add := s.Retrigger(sc); add > 0 {
			rr.AddEvent(buf.FeatureEvent{Kind: buf.EventRetrigger, Count: sc, Value: add, Symbol: -1})
		}
		if err := s.Next(); err != nil {
			return err
		}
		rr.FinishSpin(sc, gold, col.Meter.Count(), s.Remaining)

		if s.EndOnCap() && rr.RunningWin() >= rr.CapUnits {
			s.Stop()
		}
	}
	rr.FreeSpinsAward = s.Awarded
	rr.Retriggers = s.Retriggers
	return nil
}

// wildMults 依欄優先順序列出 wild 倍數
func wildMults(mults []int, cols, rows int) []int {
	var out []int
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if m := mults[r*cols+c]; m > 0 {
				out = append(out, m)
			}
		}
	}
	return out
}
