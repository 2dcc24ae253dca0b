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

package dto

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/vaultways/configs"
	"github.com/zintix-labs/vaultways/corefmt"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/spec"
)

func loadStandard(t *testing.T) *spec.GameSetting {
	t.Helper()
	raw, err := configs.FS.ReadFile("vault_standard.yaml")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	gs, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return gs
}

func TestDecodeSpinRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/spin?uid=u1&game=vault_standard&gid=1001&bet=0.25&mode=normal&bet_mult=2", nil)
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UID != "u1" || req.GameName != "vault_standard" || req.GameId != 1001 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !req.Bet.Equal(decimal.RequireFromString("0.25")) || req.Mode != "normal" || req.BetMult != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if err := req.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestDecodeSpinRequestPOST(t *testing.T) {
	snap := corefmt.EncodeBase64URL([]byte{1, 2, 3})
	data := []byte(`{"uid":"u2","gid":1002,"bet":"1.5","mode":"bonus_buy","start_state":{"start_b64u":"` + snap + `"}}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/spin", bytes.NewReader(data))
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := req.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if req.GameId != 1002 || req.Mode != spec.BetModeBonusBuy || req.BetMult != 1 {
		t.Fatalf("unexpected request: %+v", req)
	}
	got, err := req.StartState.Snapshot()
	if err != nil || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("snapshot = %v, %v", got, err)
	}
}

func TestDecodeSpinRequestRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"gid":1001,"bet":1,"mode":"normal","unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/spin", bytes.NewReader(data))
	_, err := DecodeSpinRequest(r)
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Warn {
		t.Fatalf("expected warn level error, got %v", err)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]SpinRequest{
		"zero bet":     {Bet: decimal.Zero, Mode: "normal"},
		"negative bet": {Bet: decimal.NewFromInt(-1)},
		"bad mode":     {Bet: decimal.NewFromInt(1), Mode: "turbo"},
		"bad mult":     {Bet: decimal.NewFromInt(1), BetMult: -3},
	}
	for name, req := range cases {
		if err := req.Normalize(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDecodeReplayRequest(t *testing.T) {
	data := []byte(`{"gid":1001,"draws":[1,2,3,4,5]}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/replay", bytes.NewReader(data))
	req, err := DecodeReplayRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Mode != spec.BetModeNormal || req.BetMult != 1 || len(req.Draws) != 5 || !req.Bet.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected request: %+v", req)
	}
	if _, err := DecodeReplayRequest(httptest.NewRequest(http.MethodGet, "/v1/replay", nil)); err == nil {
		t.Fatalf("expected GET to be rejected")
	}
}

func TestNewRoundResultDTO(t *testing.T) {
	gs := loadStandard(t)
	st := gs.SymbolTable
	sz := gs.Screen.ScreenSize
	rr := buf.NewRoundResult(gs)
	p := buf.Payout{MaxWinMult: gs.MaxWinMult, BetUnit: gs.BetUnit}

	rr.Begin(spec.BetModeNormal, 2, p.Cap(2))
	raw := make([]int16, sz)
	mults := make([]int, sz)
	mults[1] = 1
	rr.BeginSpin(buf.SpinBase, 0, raw, raw, mults, []int{0, 1, 2, 3, 4})
	rr.RecordWin(buf.WinDetail{Win: 150, SymbolID: 0, Count: 3, Ways: 1, WildMult: 1, Pay: 75}, []int16{0}, []int16{1, 6})
	rr.FinishSpin(0, 0, 0, 0)

	if _, err := NewRoundResultDTO(rr, st, RoundMeta{}); errs.KindOf(err) != errs.KindInvariant {
		t.Fatalf("unsettled round should be an invariant violation, got %v", err)
	}
	if err := p.Settle(rr); err != nil {
		t.Fatalf("settle: %v", err)
	}
	out, err := NewRoundResultDTO(rr, st, RoundMeta{Bet: decimal.RequireFromString("0.5"), Start: []byte{9}, Draws: 5})
	if err != nil {
		t.Fatalf("dto: %v", err)
	}
	// 150 / (100*2) = 0.75
	if !out.FinalMultiplier.Equal(decimal.RequireFromString("0.75")) {
		t.Fatalf("multiplier = %s", out.FinalMultiplier)
	}
	if !out.Payout.Equal(decimal.RequireFromString("0.375")) {
		t.Fatalf("payout = %s", out.Payout)
	}
	if out.RoundID == "" || out.Void != nil || out.State.Draws != 5 || out.State.StartB64U == "" {
		t.Fatalf("unexpected round: %+v", out)
	}
	if len(out.Grids) != 1 || len(out.Grids[0].Wins) != 1 || out.Grids[0].Wins[0].Symbol != "V" {
		t.Fatalf("unexpected grids: %+v", out.Grids)
	}
	if len(out.Grids[0].Wins[0].Hits) != 3 || out.Grids[0].Mults == nil {
		t.Fatalf("expected hits and wild mults copied: %+v", out.Grids[0])
	}

	// 深拷貝：覆寫緩衝不影響已輸出的 DTO
	rr.Begin(spec.BetModeNormal, 1, p.Cap(1))
	if out.Grids[0].Wins[0].Win != 150 || out.Grids[0].Stops[4] != 4 {
		t.Fatalf("dto shares memory with buffer")
	}
	data, err := Marshal(out)
	if err != nil || !bytes.Contains(data, []byte(`"final_multiplier":"0.75"`)) {
		t.Fatalf("marshal: %s, %v", data, err)
	}
}

func TestPayoutNeverRoundsUp(t *testing.T) {
	cases := []struct {
		bet            string
		units, unit, m int
		mult, payout   string
	}{
		{"1", 200, 100, 3, "0.666666", "0.66666666"},
		{"0.2", 200, 100, 3, "0.666666", "0.13333333"},
		{"3", 200, 100, 3, "0.666666", "2"},
		{"0.5", 150, 100, 2, "0.75", "0.375"},
		{"1", 0, 100, 1, "0", "0"},
	}
	for _, c := range cases {
		bet := decimal.RequireFromString(c.bet)
		mult := Multiplier(c.units, c.unit, c.m)
		pay := PayoutAmount(bet, c.units, c.unit, c.m)
		if !mult.Equal(decimal.RequireFromString(c.mult)) || !pay.Equal(decimal.RequireFromString(c.payout)) {
			t.Fatalf("%s x %d/(%d*%d): mult %s payout %s", c.bet, c.units, c.unit, c.m, mult, pay)
		}
		// bet*units 必須 >= payout*unit*m
		exact := bet.Mul(decimal.NewFromInt(int64(c.units)))
		back := pay.Mul(decimal.NewFromInt(int64(c.unit * c.m)))
		if back.GreaterThan(exact) {
			t.Fatalf("payout %s exceeds exact amount %s/%d", pay, exact, c.unit*c.m)
		}
	}
	if !Multiplier(5, 0, 1).IsZero() || !PayoutAmount(decimal.NewFromInt(1), 5, 100, 0).IsZero() {
		t.Fatal("zero denominator should yield zero")
	}
}

func TestNewVoidResult(t *testing.T) {
	gs := loadStandard(t)
	cause := errs.Wrap(errs.RngExhausted("rng stream exhausted"), "round void")
	out := NewVoidResult(gs, spec.BetModeNormal, 1, cause, RoundMeta{Bet: decimal.NewFromInt(1)})
	if out.Void == nil || out.Void.Kind != "rng_exhausted" {
		t.Fatalf("unexpected void: %+v", out.Void)
	}
	if !out.Payout.IsZero() || len(out.Grids) != 0 {
		t.Fatalf("void round must not carry a payout: %+v", out)
	}
	if !errs.IsVoid(cause) {
		t.Fatalf("kind lost through wrap")
	}
}
