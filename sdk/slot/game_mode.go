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

package slot

import (
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/sdk/calc"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/sdk/feature"
	"github.com/zintix-labs/vaultways/sdk/gen"
	"github.com/zintix-labs/vaultways/spec"
)

// GameMode 是「單一模式」（主遊戲或免費遊戲）在執行期的工作站：
//   - Sampler：產生盤面與 wild 倍數
//   - Evaluator：對轉換後盤面算分
//
// 非並行安全：一個 GameMode 只能在單一 goroutine 的一局流程中使用。
type GameMode struct {
	core      *core.Core
	Kind      buf.SpinKind
	Setting   *spec.ModeSetting
	Sampler   *gen.GridSampler
	Evaluator *calc.WaysEvaluator

	eval []int16 // 轉換後盤面緩衝
}

func newGameMode(c *core.Core, kind buf.SpinKind, gs *spec.GameSetting, ms *spec.ModeSetting, we *calc.WaysEvaluator) (*GameMode, error) {
	sampler, err := gen.NewGridSampler(c, &gs.Screen, ms, gs.SymbolTable.Wild)
	if err != nil {
		return nil, err
	}
	return &GameMode{
		core:      c,
		Kind:      kind,
		Setting:   ms,
		Sampler:   sampler,
		Evaluator: we,
		eval:      make([]int16, gs.Screen.ScreenSize),
	}, nil
}

// spin 生成盤面、套用轉換並算分；回傳原始盤面供後續收集 scatter / 金幣。
//
// 呼叫端負責在之後呼叫 rr.FinishSpin。
func (gm *GameMode) spin(betMult int, index int, col *feature.Collector, rr *buf.RoundResult) ([]int16, []int, error) {
	raw, mults := gm.Sampler.Sample()
	if err := gm.core.Err(); err != nil {
		return nil, nil, err
	}
	if col != nil {
		col.Transform(gm.eval, raw)
	} else {
		copy(gm.eval, raw)
	}
	rr.BeginSpin(gm.Kind, index, raw, gm.eval, mults, gm.Sampler.Stops)
	if _, err := gm.Evaluator.Evaluate(betMult, gm.eval, mults, rr); err != nil {
		return nil, nil, err
	}
	return raw, mults, nil
}
