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

import (
	"math"

	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
)

// Payout 結算：把整局累積贏分封頂到 max_win_mult 倍押注。
type Payout struct {
	MaxWinMult int
	BetUnit    int
}

// Cap 以 betMult 計算封頂值（bet_unit 單位），溢位時飽和在 math.MaxInt
func (p Payout) Cap(betMult int) int {
	u, ok := spec.MulChecked(p.MaxWinMult, p.BetUnit)
	if ok {
		u, ok = spec.MulChecked(u, betMult)
	}
	if !ok {
		return math.MaxInt
	}
	return u
}

// addSat 非負贏分相加，溢位時飽和
func addSat(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Settle 結算一局，超出封頂的部分直接捨棄並記錄在 Excess。
func (p Payout) Settle(rr *RoundResult) error {
	if rr.open {
		return errs.Invariant("settle with an unfinished spin")
	}
	if rr.Settled {
		return errs.Invariant("round already settled")
	}
	limit := p.Cap(rr.BetMult)
	rr.CapUnits = limit
	rr.TotalWin = addSat(rr.BaseWin, rr.FreeWin)
	rr.Payout = rr.TotalWin
	if rr.TotalWin > limit {
		rr.Payout = limit
		rr.Excess = rr.TotalWin - limit
		rr.Capped = true
		rr.Events = append(rr.Events, FeatureEvent{Kind: EventWinCap, Spin: -1, Value: limit, Count: rr.Excess, Symbol: -1})
	}
	if rr.Payout < 0 || rr.Payout > limit {
		return errs.Invariantf("settled payout %d outside [0,%d]", rr.Payout, limit)
	}
	rr.Settled = true
	return nil
}

// Multiplier 結算後的倍數（相對 1 倍押注）
func (rr *RoundResult) Multiplier() float64 {
	if rr.BetUnit == 0 || rr.BetMult == 0 {
		return 0
	}
	return float64(rr.Payout) / float64(rr.BetUnit*rr.BetMult)
}
