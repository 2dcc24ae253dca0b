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

package spec_test

import (
	"io/fs"
	"math"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/vaultways/configs"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
)

const miniYAML = `
game_name: mini
game_id: 77
profile: {name: mini, version: "1", rtp_target: 0.96, trigger_frequency: 8}
bet_unit: 100
max_win_mult: 10000
bet_modes:
  - {name: normal, cost: 1}
  - {name: bonus_buy, cost: 100}
screen: {columns: 5, rows: 4}
top_symbol: V
symbols:
  - {name: V,  kind: premium, pays: [0, 0, 59, 116, 243]}
  - {name: H1, kind: premium, pays: [0, 0, 38, 69, 147]}
  - {name: H2, kind: premium, pays: [0, 0, 29, 59, 116]}
  - {name: L1, kind: low,     pays: [0, 0, 6, 11, 29]}
  - {name: W,  kind: wild}
  - {name: S,  kind: scatter}
  - {name: G,  kind: collector}
modes:
  base:
    wild_reels: [1, 2, 3]
    reels:
      - [V, H1, H2, L1, S]
      - [V, H1, W, L1, S]
      - [V, H1, W, L1, S]
      - [V, H1, W, L1, S]
      - [V, H1, H2, L1, S]
  free:
    wild_reels: [1, 2, 3]
    wild_multipliers: [{mult: 2, weight: 60}, {mult: 3, weight: 40}]
    reels:
      - [V, H1, H2, L1, S, G]
      - [V, H1, W, L1, S, G]
      - [V, H1, W, L1, S, G]
      - [V, H1, W, L1, S, G]
      - [V, H1, H2, L1, S, G]
free_spins:
  min_scatters: 3
  trigger: {3: 8, 4: 15, 5: 20}
  retrigger: {3: 5, 4: 8, 5: 10}
gold:
  thresholds:
    - {count: 4, symbol: H2}
    - {count: 7, symbol: H1}
bonus_buy:
  scatter_weights: {3: 100, 4: 15, 5: 3}
`

func TestLoadMini(t *testing.T) {
	gs, err := spec.GetGameSettingByYAML([]byte(miniYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	st := gs.SymbolTable
	if st.Len() != 7 || st.Wild != 4 || st.Scatter != 5 || st.Collector != 6 || st.Top != 0 {
		t.Fatalf("symbol table ids wrong: %+v", st)
	}
	if got := st.Pay(0, 5); got != 243 {
		t.Fatalf("V x5 pay = %d", got)
	}
	if got := st.Pay(0, 6); got != 0 {
		t.Fatalf("count above cols should pay 0, got %d", got)
	}
	if gs.Screen.Ways() != 1024 {
		t.Fatalf("ways = %d", gs.Screen.Ways())
	}
	if c, ok := gs.CapUnits(3); !ok || c != 10000*100*3 {
		t.Fatalf("cap units = %d %v", c, ok)
	}
	if gs.Gold.Thresholds[1].ID != 1 {
		t.Fatalf("threshold id = %d", gs.Gold.Thresholds[1].ID)
	}
	if m, ok := gs.BetMode(spec.BetModeBonusBuy); !ok || m.Cost != 100 {
		t.Fatalf("bonus buy mode = %+v %v", m, ok)
	}
}

func TestMaxBetMult(t *testing.T) {
	gs, err := spec.GetGameSettingByYAML([]byte(miniYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// 243 × 4^5 × 3^(4×3) × (4+1)
	worst := 243 * 1024 * 531441 * 5
	if gs.MaxBetMult != math.MaxInt/worst {
		t.Fatalf("max bet mult = %d, want %d", gs.MaxBetMult, math.MaxInt/worst)
	}
	if !gs.BetMultOK(gs.MaxBetMult) || gs.BetMultOK(gs.MaxBetMult+1) || gs.BetMultOK(0) {
		t.Fatal("BetMultOK bounds wrong")
	}
	if _, ok := gs.CapUnits(10_000_000_000_000); ok {
		t.Fatal("oversized bet mult should not yield a cap")
	}
	if _, ok := spec.MulChecked(math.MaxInt/2+1, 2); ok {
		t.Fatal("overflow not detected")
	}
	if v, ok := spec.MulChecked(math.MaxInt/3, 3); !ok || v != math.MaxInt/3*3 {
		t.Fatalf("mul = %d %v", v, ok)
	}

	huge := strings.Replace(miniYAML, "pays: [0, 0, 59, 116, 243]", "pays: [0, 0, 59, 116, 9000000000000000000]", 1)
	if _, err := spec.GetGameSettingByYAML([]byte(huge)); errs.KindOf(err) != errs.KindConfiguration {
		t.Fatalf("overflowing pay table: %v", err)
	}
}

func TestReelStripSymbolAt(t *testing.T) {
	gs, err := spec.GetGameSettingByYAML([]byte(miniYAML))
	if err != nil {
		t.Fatal(err)
	}
	rs := &gs.Modes.Base.Reels
	strip := rs.Strips[0]
	if strip.Len() != 5 {
		t.Fatalf("len = %d", strip.Len())
	}
	cases := map[int]int16{0: 0, 4: 5, 5: 0, 7: 2, -1: 5, -6: 5, 12: 2}
	for pos, want := range cases {
		if got := strip.SymbolAt(pos); got != want {
			t.Fatalf("SymbolAt(%d) = %d, want %d", pos, got, want)
		}
	}
	if got := rs.SymbolAt(2, 2); got != 4 {
		t.Fatalf("reel 2 pos 2 = %d, want wild", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("out of range reel should panic")
		}
	}()
	rs.SymbolAt(5, 0)
}

func TestAwardTable(t *testing.T) {
	tb := spec.AwardTable{3: 8, 4: 15, 5: 20}
	cases := map[int]int{0: 0, 2: 0, 3: 8, 4: 15, 5: 20, 6: 20}
	for n, want := range cases {
		if got := tb.Award(n); got != want {
			t.Fatalf("Award(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"wild outside wild reels", "- [V, H1, H2, L1, S]\n      - [V, H1, W, L1, S]", "- [V, H1, W, L1, S]\n      - [V, H1, W, L1, S]"},
		{"collector in base", "      - [V, H1, W, L1, S]\n      - [V, H1, H2, L1, S]\n  free:", "      - [V, H1, W, L1, G]\n      - [V, H1, H2, L1, S]\n  free:"},
		{"unknown field", "bet_unit: 100", "bet_unit: 100\nlogic: ways"},
		{"thresholds not ascending", "{count: 7, symbol: H1}", "{count: 4, symbol: H1}"},
		{"threshold from top symbol", "{count: 7, symbol: H1}", "{count: 7, symbol: V}"},
		{"short pays", "pays: [0, 0, 6, 11, 29]", "pays: [0, 6, 11, 29]"},
		{"pay below three", "pays: [0, 0, 6, 11, 29]", "pays: [0, 1, 6, 11, 29]"},
		{"top not highest", "pays: [0, 0, 38, 69, 147]", "pays: [0, 0, 38, 69, 300]"},
		{"unknown symbol on strip", "[V, H1, H2, L1, S, G]", "[V, H1, H2, L9, S, G]"},
		{"buy weight without award", "{3: 100, 4: 15, 5: 3}", "{3: 100, 6: 3}"},
		{"multipliers in base", "    wild_reels: [1, 2, 3]\n    reels:\n      - [V, H1, H2, L1, S]", "    wild_reels: [1, 2, 3]\n    wild_multipliers: [{mult: 2, weight: 1}]\n    reels:\n      - [V, H1, H2, L1, S]"},
		{"normal mode missing", "  - {name: normal, cost: 1}\n", ""},
		{"two scatters", "{name: G,  kind: collector}", "{name: G,  kind: scatter}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := strings.Replace(miniYAML, c.old, c.new, 1)
			if src == miniYAML {
				t.Fatalf("mutation did not apply")
			}
			_, err := spec.GetGameSettingByYAML([]byte(src))
			if err == nil {
				t.Fatal("want configuration error")
			}
			if errs.KindOf(err) != errs.KindConfiguration {
				t.Fatalf("kind = %v, err = %v", errs.KindOf(err), err)
			}
			if errs.IsVoid(err) {
				t.Fatal("configuration errors never void a round")
			}
		})
	}
}

func TestJSONMatchesYAML(t *testing.T) {
	gs, err := spec.GetGameSettingByYAML([]byte(miniYAML))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := jsoniter.Marshal(gs)
	if err != nil {
		t.Fatal(err)
	}
	js, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		t.Fatalf("json load: %v", err)
	}
	if js.GameID != gs.GameID || js.SymbolTable.Top != gs.SymbolTable.Top {
		t.Fatal("json bundle differs")
	}
	for r := range gs.Modes.Free.Reels.Strips {
		a, b := gs.Modes.Free.Reels.Strips[r], js.Modes.Free.Reels.Strips[r]
		if a.Len() != b.Len() {
			t.Fatalf("reel %d len differs", r)
		}
		for p := 0; p < a.Len(); p++ {
			if a.SymbolAt(p) != b.SymbolAt(p) {
				t.Fatalf("reel %d pos %d differs", r, p)
			}
		}
	}
	if _, err := spec.GetGameSettingByJSON([]byte(`{"game_name":"x","bogus":1}`)); errs.KindOf(err) != errs.KindConfiguration {
		t.Fatalf("unknown json field: %v", err)
	}
}

func TestShippedProfiles(t *testing.T) {
	want := map[string]struct {
		id   spec.GID
		cap  int
		rtp  float64
		freq int
		buy  bool
	}{
		"vault_standard.yaml": {1001, 10000, 0.9599, 8, false},
		"vault_extreme.yaml":  {1002, 50000, 0.97, 200, true},
	}
	for name, w := range want {
		raw, err := fs.ReadFile(configs.FS, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		gs, err := spec.GetGameSettingByYAML(raw)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if gs.GameID != w.id || gs.MaxWinMult != w.cap || gs.Profile.RTPTarget != w.rtp || gs.Profile.TriggerFrequency != w.freq {
			t.Fatalf("%s: profile mismatch %+v cap %d", name, gs.Profile, gs.MaxWinMult)
		}
		if _, ok := gs.BetMode(spec.BetModeBonusBuy); ok != w.buy {
			t.Fatalf("%s: bonus buy offered = %v", name, ok)
		}
		if gs.Screen.Columns != 5 || gs.Screen.Rows != 4 {
			t.Fatalf("%s: screen %+v", name, gs.Screen)
		}
		if gs.MaxBetMult < 1_000_000 {
			t.Fatalf("%s: max bet mult %d", name, gs.MaxBetMult)
		}
		for _, r := range []int{0, 4} {
			for p := 0; p < gs.Modes.Base.Reels.Strips[r].Len(); p++ {
				if gs.Modes.Base.Reels.SymbolAt(r, p) == gs.SymbolTable.Wild {
					t.Fatalf("%s: wild on base reel %d", name, r)
				}
			}
		}
		if len(gs.Gold.Thresholds) != 4 || gs.Gold.Thresholds[3].Count != 15 {
			t.Fatalf("%s: thresholds %+v", name, gs.Gold.Thresholds)
		}
		// 由主遊戲輪帶精確算出觸發率，須落在標示頻率的 3% 內
		if n := 1 / triggerProb(gs); math.Abs(n-float64(w.freq))/float64(w.freq) > 0.03 {
			t.Fatalf("%s: trigger 1 in %.1f, profile says 1 in %d", name, n, w.freq)
		}
	}
}

// triggerProb 各軸 scatter 數量分布做卷積，回傳主遊戲觸發機率
func triggerProb(gs *spec.GameSetting) float64 {
	reels := gs.Modes.Base.Reels
	rows := gs.Screen.Rows
	dist := []float64{1}
	for c, strip := range reels.Strips {
		per := make([]float64, rows+1)
		for p := 0; p < strip.Len(); p++ {
			n := 0
			for r := 0; r < rows; r++ {
				if reels.SymbolAt(c, p+r) == gs.SymbolTable.Scatter {
					n++
				}
			}
			per[n] += 1 / float64(strip.Len())
		}
		next := make([]float64, len(dist)+rows)
		for a, pa := range dist {
			for b, pb := range per {
				next[a+b] += pa * pb
			}
		}
		dist = next
	}
	p := 0.0
	for k := gs.FreeSpins.MinScatters; k < len(dist); k++ {
		p += dist[k]
	}
	return p
}
