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

package vaultways

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/vaultways/configs"
	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/spec"
)

const (
	gidStandard spec.GID = 1001
	gidExtreme  spec.GID = 1002
)

func newTestVW(t *testing.T) *Vaultways {
	t.Helper()
	vw, err := NewAuto(core.Default(), Configs(configs.FS))
	if err != nil {
		t.Fatalf("NewAuto: %v", err)
	}
	return vw
}

func spinReq(gid spec.GID, mode string) *dto.SpinRequest {
	return &dto.SpinRequest{GameId: gid, Bet: decimal.RequireFromString("0.2"), Mode: mode}
}

func TestNewAutoRegistersShippedProfiles(t *testing.T) {
	vw := newTestVW(t)
	ids := vw.IDs()
	if len(ids) != 2 || ids[0] != gidStandard || ids[1] != gidExtreme {
		t.Fatalf("ids = %v", ids)
	}
	sum, err := vw.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum[0].MaxWinMult != 10000 || sum[1].MaxWinMult != 50000 {
		t.Fatalf("unexpected caps: %+v", sum)
	}
	if _, err := New(core.Default(), nil); err == nil {
		t.Fatalf("expected error without configs")
	}
}

func TestMachineSpinDeterministic(t *testing.T) {
	vw := newTestVW(t)
	a, err := vw.NewMachineWithSeed(gidStandard, 42)
	if err != nil {
		t.Fatalf("machine: %v", err)
	}
	b, _ := vw.NewMachineWithSeed(gidStandard, 42)
	for i := 0; i < 200; i++ {
		ra, err := a.Spin(spinReq(gidStandard, spec.BetModeNormal))
		if err != nil {
			t.Fatalf("spin: %v", err)
		}
		rb, _ := b.Spin(spinReq(gidStandard, spec.BetModeNormal))
		if !ra.FinalMultiplier.Equal(rb.FinalMultiplier) || ra.State.AfterB64U != rb.State.AfterB64U {
			t.Fatalf("round %d differs", i)
		}
		if !ra.Payout.Equal(ra.Bet.Mul(ra.FinalMultiplier)) {
			t.Fatalf("payout %s != bet x multiplier", ra.Payout)
		}
		if ra.WinUnits > 10000*100 || ra.Void != nil || len(ra.Grids) == 0 || ra.Grids[0].Kind != "base" {
			t.Fatalf("unexpected round: %+v", ra)
		}
	}
}

func TestSpinWithStartState(t *testing.T) {
	vw := newTestVW(t)
	m, _ := vw.NewMachineWithSeed(gidStandard, 7)
	twin, _ := vw.NewMachineWithSeed(gidStandard, 7)

	first, err := m.Spin(spinReq(gidStandard, spec.BetModeNormal))
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	_, _ = twin.Spin(spinReq(gidStandard, spec.BetModeNormal))

	req := spinReq(gidStandard, spec.BetModeNormal)
	req.StartState = &dto.StartState{StartCoreSnapB64U: first.State.StartB64U}
	again, err := m.Spin(req)
	if err != nil {
		t.Fatalf("replay spin: %v", err)
	}
	if !again.FinalMultiplier.Equal(first.FinalMultiplier) || again.State.AfterB64U != first.State.AfterB64U {
		t.Fatalf("start state did not reproduce the round")
	}
	for i := range first.Grids[0].Stops {
		if first.Grids[0].Stops[i] != again.Grids[0].Stops[i] {
			t.Fatalf("stops differ: %v vs %v", first.Grids[0].Stops, again.Grids[0].Stops)
		}
	}

	// 重現不推進即時亂數流
	next, _ := m.Spin(spinReq(gidStandard, spec.BetModeNormal))
	want, _ := twin.Spin(spinReq(gidStandard, spec.BetModeNormal))
	if next.State.StartB64U != want.State.StartB64U {
		t.Fatalf("live stream moved during a start-state spin")
	}
}

func TestReplayFromDraws(t *testing.T) {
	vw := newTestVW(t)
	m, _ := vw.NewMachineWithSeed(gidExtreme, 99)
	res, err := m.Spin(spinReq(gidExtreme, spec.BetModeBonusBuy))
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	draws := m.Draws()
	if len(draws) != res.State.Draws || len(draws) == 0 {
		t.Fatalf("draws %d, state %d", len(draws), res.State.Draws)
	}

	rep, err := vw.Replay(&dto.ReplayRequest{GameId: gidExtreme, Mode: spec.BetModeBonusBuy, Bet: res.Bet, BetMult: 1, Draws: draws})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !rep.FinalMultiplier.Equal(res.FinalMultiplier) || rep.FreeSpins != res.FreeSpins || len(rep.Grids) != len(res.Grids) {
		t.Fatalf("replay differs: %s/%d vs %s/%d", rep.FinalMultiplier, rep.FreeSpins, res.FinalMultiplier, res.FreeSpins)
	}

	short, err := vw.Replay(&dto.ReplayRequest{GameId: gidExtreme, Mode: spec.BetModeBonusBuy, Bet: res.Bet, BetMult: 1, Draws: draws[:len(draws)-1]})
	if errs.KindOf(err) != errs.KindRngExhausted {
		t.Fatalf("expected rng exhaustion, got %v", err)
	}
	if short.Void == nil || short.Void.Kind != "rng_exhausted" || !short.Payout.IsZero() || len(short.Grids) != 0 {
		t.Fatalf("unexpected void round: %+v", short)
	}
}

func TestSpinRejects(t *testing.T) {
	vw := newTestVW(t)
	m, _ := vw.NewMachineWithSeed(gidStandard, 1)
	cases := map[string]*dto.SpinRequest{
		"wrong gid":     spinReq(gidExtreme, spec.BetModeNormal),
		"no bonus buy":  spinReq(gidStandard, spec.BetModeBonusBuy),
		"zero bet":      {GameId: gidStandard, Bet: decimal.Zero},
		"unknown mode":  spinReq(gidStandard, "turbo"),
		"negative mult": {GameId: gidStandard, Bet: decimal.NewFromInt(1), BetMult: -1},
		"huge mult":     {GameId: gidStandard, Bet: decimal.NewFromInt(1), BetMult: 10_000_000_000_000},
	}
	for name, req := range cases {
		res, err := m.Spin(req)
		e, ok := errs.AsErr(err)
		if !ok || e.ErrLv != errs.Warn || res.Void != nil {
			t.Fatalf("%s: expected warn, got %v", name, err)
		}
	}
}

func TestBonusBuyStartsSession(t *testing.T) {
	vw := newTestVW(t)
	m, _ := vw.NewMachineWithSeed(gidExtreme, 5)
	if m.BuyCost() != 100 {
		t.Fatalf("buy cost = %d", m.BuyCost())
	}
	for i := 0; i < 20; i++ {
		res, err := m.Spin(spinReq(gidExtreme, spec.BetModeBonusBuy))
		if err != nil {
			t.Fatalf("spin: %v", err)
		}
		if !res.Triggered || res.FreeSpins < 8 || res.Grids[0].Kind != "free" {
			t.Fatalf("bonus buy should start a session: %+v", res)
		}
		if res.FeatureLog[0].Kind != "bonus_buy" {
			t.Fatalf("first event = %s", res.FeatureLog[0].Kind)
		}
		if res.WinUnits > 50000*100 {
			t.Fatalf("win above cap: %d", res.WinUnits)
		}
	}
}

func TestSimulator(t *testing.T) {
	vw := newTestVW(t)
	sim, err := vw.NewSimulatorWithSeed(gidStandard, 11)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	rep, _, err := sim.SimMP(spec.BetModeNormal, 2000, 2, false)
	if err != nil {
		t.Fatalf("SimMP: %v", err)
	}
	if rep.Summary.Rounds != 4000 || rep.Summary.TotalBet != 4000*100 || rep.Summary.RTP <= 0 {
		t.Fatalf("unexpected report: %+v", rep.Summary)
	}
	if _, _, err := sim.SimMP(spec.BetModeBonusBuy, 10, 1, false); err == nil {
		t.Fatalf("standard profile does not offer bonus buy")
	}

	ex, _ := vw.NewSimulatorWithSeed(gidExtreme, 11)
	one, _, err := ex.Sim(spec.BetModeBonusBuy, 50, false)
	if err != nil {
		t.Fatalf("Sim: %v", err)
	}
	if one.Summary.Trigger != 50 || one.Summary.Cost != 100 || one.Feature.Sessions != 50 {
		t.Fatalf("unexpected bonus buy report: %+v %+v", one.Summary, one.Feature)
	}

	st, est, _, err := sim.SimPlayers(2, 20, 50, spec.BetModeNormal, 200, false)
	if err != nil {
		t.Fatalf("SimPlayers: %v", err)
	}
	if st.Summary.Rounds == 0 || est == nil {
		t.Fatalf("unexpected player sim")
	}
	alive := est.SessionStat.Alive.Hat + est.SessionStat.Bust.Hat + est.SessionStat.Cashout.Hat
	if alive < 0.999 || alive > 1.001 {
		t.Fatalf("session outcomes do not sum to 1: %v", alive)
	}
}

func TestRuntimeSpin(t *testing.T) {
	vw := newTestVW(t)
	rt, err := vw.BuildRuntime(2)
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	ctx := context.Background()
	res, draws, err := rt.Spin(ctx, &dto.SpinRequest{GameName: "vault_extreme", Bet: decimal.NewFromInt(1), Mode: spec.BetModeNormal})
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if res.GameID != gidExtreme || len(draws) != res.State.Draws {
		t.Fatalf("unexpected result: gid=%d draws=%d/%d", res.GameID, len(draws), res.State.Draws)
	}
	if _, _, err := rt.Spin(ctx, spinReq(4242, spec.BetModeNormal)); err == nil {
		t.Fatalf("expected unknown game error")
	}
	for _, mp := range rt.Pools() {
		if mp.Metrics().Available != 2 {
			t.Fatalf("machines not returned: %+v", mp.Metrics())
		}
	}
	rt.Close()
	if _, _, err := rt.Spin(ctx, spinReq(gidStandard, spec.BetModeNormal)); err == nil {
		t.Fatalf("expected closed runtime error")
	}
}

func TestSeedMaker(t *testing.T) {
	sm := newSeedMaker(123)
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		s := sm.next()
		if s < 0 || seen[s] {
			t.Fatalf("seed %d repeated or negative", s)
		}
		seen[s] = true
	}
}

// drained 產生立即用盡的亂數流，每局都會作廢
type drained struct{}

func (drained) New(int64) core.PRNG { return core.NewScript() }

func TestMachinePoolRetiresVoidMachines(t *testing.T) {
	vw := newTestVW(t)
	gs, err := vw.GameSetting(gidStandard)
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	mp, err := newMachinePool(1, gs, drained{}, 7)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	ctx := context.Background()
	for range 3 {
		res, _, err := mp.Spin(ctx, spinReq(gidStandard, spec.BetModeNormal))
		if errs.KindOf(err) != errs.KindRngExhausted || res.Void == nil {
			t.Fatalf("expected void round, got %v", err)
		}
	}
	m := mp.Metrics()
	if m.Fatals != 3 || m.Rebuild != 3 || m.Available != 1 || m.Closed {
		t.Fatalf("unexpected metrics: %+v", m)
	}

	for i := 0; !mp.Closed(); i++ {
		if i > maxFailStreak {
			t.Fatalf("pool never closed")
		}
		mp.Spin(ctx, spinReq(gidStandard, spec.BetModeNormal))
	}
	m = mp.Metrics()
	if m.CloseReason != "overwhelmed_by_failures" || m.CloseInflight != 0 || m.CloseAvail != 0 {
		t.Fatalf("unexpected close snapshot: %+v", m)
	}
	if _, _, err := mp.Spin(ctx, spinReq(gidStandard, spec.BetModeNormal)); err == nil {
		t.Fatalf("expected closed pool error")
	}
}

func TestMachinePoolSurvivesOversizedBetMult(t *testing.T) {
	vw := newTestVW(t)
	gs, err := vw.GameSetting(gidExtreme)
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	mp, err := newMachinePool(2, gs, core.Default(), 7)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	ctx := context.Background()
	for _, mult := range []int{gs.MaxBetMult + 1, 10_000_000_000_000} {
		for range 2 * maxFailStreak {
			req := spinReq(gidExtreme, spec.BetModeBonusBuy)
			req.BetMult = mult
			res, _, err := mp.Spin(ctx, req)
			e, ok := errs.AsErr(err)
			if !ok || e.ErrLv != errs.Warn || res.Void != nil {
				t.Fatalf("bet_mult %d: expected warn, got %v", mult, err)
			}
		}
	}
	req := spinReq(gidExtreme, spec.BetModeNormal)
	req.BetMult = gs.MaxBetMult
	if _, _, err := mp.Spin(ctx, req); err != nil {
		t.Fatalf("max bet mult: %v", err)
	}
	m := mp.Metrics()
	if m.Closed || m.Fatals != 0 || m.Rebuild != 0 || m.Available != 2 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestMachinePoolClosedRefusesIdleMachines(t *testing.T) {
	vw := newTestVW(t)
	gs, err := vw.GameSetting(gidStandard)
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	mp, err := newMachinePool(4, gs, core.Default(), 7)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	mp.Close()
	if mp.Available() != 4 {
		t.Fatalf("available = %d", mp.Available())
	}
	for range 200 {
		res, _, err := mp.Spin(context.Background(), spinReq(gidStandard, spec.BetModeNormal))
		if err == nil || res.RoundID != "" {
			t.Fatalf("closed pool served a round: %+v", res)
		}
	}
	if m := mp.Metrics(); m.CloseReason != "closed" || m.Fatals != 0 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}
