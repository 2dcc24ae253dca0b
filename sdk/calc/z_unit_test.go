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

package calc

import (
	"testing"

	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/spec"
)

func testDefs() []spec.SymbolDef {
	return []spec.SymbolDef{
		{Name: "V", KindStr: "premium", Pays: []int{0, 0, 59, 116, 243}},
		{Name: "H1", KindStr: "premium", Pays: []int{0, 0, 38, 69, 147}},
		{Name: "H2", KindStr: "premium", Pays: []int{0, 0, 29, 59, 116}},
		{Name: "H3", KindStr: "premium", Pays: []int{0, 0, 20, 45, 90}},
		{Name: "H4", KindStr: "premium", Pays: []int{0, 0, 14, 29, 69}},
		{Name: "L1", KindStr: "low", Pays: []int{0, 0, 6, 11, 29}},
		{Name: "L2", KindStr: "low", Pays: []int{0, 0, 3, 7, 23}},
		{Name: "W", KindStr: "wild"},
		{Name: "S", KindStr: "scatter"},
		{Name: "G", KindStr: "collector"},
	}
}

type fixture struct {
	st *spec.SymbolTable
	we *WaysEvaluator
	rr *buf.RoundResult
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	screen := &spec.ScreenSetting{Columns: 5, Rows: 4, ScreenSize: 20}
	st, err := spec.NewSymbolTable(testDefs(), 5, "V")
	if err != nil {
		t.Fatal(err)
	}
	gs := &spec.GameSetting{GameName: "t", BetUnit: 100, Screen: *screen}
	rr := buf.NewRoundResult(gs)
	rr.Begin(spec.BetModeNormal, 1, 1_000_000)
	return &fixture{st: st, we: NewWaysEvaluator(st, screen), rr: rr}
}

// build 以「每軸由上至下」的寫法建立 row-major 盤面；mults 依相同寫法指定
func (f *fixture) build(t *testing.T, reels [5][4]string, mults map[[2]int]int) ([]int16, []int) {
	t.Helper()
	g := make([]int16, 20)
	m := make([]int, 20)
	for c := range 5 {
		for r := range 4 {
			id, ok := f.st.ID(reels[c][r])
			if !ok {
				t.Fatalf("unknown symbol %s", reels[c][r])
			}
			g[r*5+c] = id
			if id == f.st.Wild {
				m[r*5+c] = 1
				if v, ok := mults[[2]int{c, r}]; ok {
					m[r*5+c] = v
				}
			}
		}
	}
	return g, m
}

func (f *fixture) eval(t *testing.T, g []int16, m []int) (int, []buf.WinDetail) {
	t.Helper()
	f.rr.BeginSpin(buf.SpinBase, 0, g, g, m, nil)
	win, err := f.we.Evaluate(1, g, m, f.rr)
	if err != nil {
		t.Fatal(err)
	}
	f.rr.FinishSpin(0, 0, 0, 0)
	return win, f.rr.SpinDetails(len(f.rr.Spins) - 1)
}

func TestFullGridTopSymbol(t *testing.T) {
	f := newFixture(t)
	col := [4]string{"V", "V", "V", "V"}
	g, m := f.build(t, [5][4]string{col, col, col, col, col}, nil)
	win, ds := f.eval(t, g, m)
	if len(ds) != 1 {
		t.Fatalf("expected one win, got %+v", ds)
	}
	d := ds[0]
	if d.Ways != 1024 || d.Count != 5 || d.Pay != 243 || win != 243*1024 {
		t.Fatalf("unexpected win %+v total=%d", d, win)
	}
	if hits := f.rr.Hits(d); len(hits) != 20 {
		t.Fatalf("expected 20 hit cells, got %d", len(hits))
	}
}

func TestWaysProductAndWildMultipliers(t *testing.T) {
	f := newFixture(t)
	// L1 在第 0、4 軸；第 1~3 軸各一顆 wild（2x, 3x, 2x）
	reels := [5][4]string{
		{"L1", "H2", "S", "G"},
		{"W", "H3", "L2", "G"},
		{"W", "H4", "G", "S"},
		{"W", "G", "S", "H1"},
		{"L1", "L1", "G", "S"},
	}
	g, m := f.build(t, reels, map[[2]int]int{{1, 0}: 2, {2, 0}: 3, {3, 0}: 2})
	_, ds := f.eval(t, g, m)
	var l1 *buf.WinDetail
	for i := range ds {
		if f.st.Name(ds[i].SymbolID) == "L1" {
			l1 = &ds[i]
		}
	}
	if l1 == nil {
		t.Fatalf("L1 win missing: %+v", ds)
	}
	if l1.Count != 5 || l1.Ways != 2 || l1.WildMult != 12 {
		t.Fatalf("unexpected L1 win %+v", *l1)
	}
	if l1.Win != 29*2*12 {
		t.Fatalf("L1 win %d, want %d", l1.Win, 29*2*12)
	}
	for _, d := range ds {
		if d.Count < 3 {
			t.Fatalf("win shorter than 3 reels: %+v", d)
		}
	}
}

func TestMultipleWildsInOneColumnMultiply(t *testing.T) {
	f := newFixture(t)
	reels := [5][4]string{
		{"H1", "S", "G", "S"},
		{"W", "W", "G", "S"},
		{"H1", "G", "S", "G"},
		{"S", "S", "G", "G"},
		{"G", "S", "G", "S"},
	}
	g, m := f.build(t, reels, map[[2]int]int{{1, 0}: 3, {1, 1}: 2})
	win, ds := f.eval(t, g, m)
	if len(ds) != 1 || ds[0].Ways != 2 || ds[0].WildMult != 6 || win != 38*2*6 {
		t.Fatalf("unexpected %+v win=%d", ds, win)
	}
}

func TestGapStopsSpan(t *testing.T) {
	f := newFixture(t)
	reels := [5][4]string{
		{"H2", "S", "G", "S"},
		{"H2", "G", "S", "G"},
		{"S", "G", "S", "G"},
		{"H2", "H2", "S", "G"},
		{"H2", "S", "G", "S"},
	}
	g, m := f.build(t, reels, nil)
	win, ds := f.eval(t, g, m)
	if win != 0 || len(ds) != 0 {
		t.Fatalf("gap at reel 2 must not pay: %+v", ds)
	}
}

func TestSymbolsPaidIndependently(t *testing.T) {
	f := newFixture(t)
	reels := [5][4]string{
		{"H1", "L1", "S", "G"},
		{"H1", "L1", "L1", "G"},
		{"H1", "L1", "S", "G"},
		{"S", "G", "S", "G"},
		{"S", "G", "S", "G"},
	}
	g, m := f.build(t, reels, nil)
	win, ds := f.eval(t, g, m)
	if len(ds) != 2 {
		t.Fatalf("expected H1 and L1 wins, got %+v", ds)
	}
	if want := 38*1 + 6*2; win != want {
		t.Fatalf("total %d, want %d", win, want)
	}
}

func TestAllWildSpanPaysOnceUnderBestSymbol(t *testing.T) {
	f := newFixture(t)
	reels := [5][4]string{
		{"W", "S", "G", "S"},
		{"W", "G", "S", "G"},
		{"W", "W", "S", "G"},
		{"S", "G", "S", "G"},
		{"G", "S", "G", "S"},
	}
	g, m := f.build(t, reels, nil)
	win, ds := f.eval(t, g, m)
	if len(ds) != 1 {
		t.Fatalf("all-wild span must pay exactly once, got %+v", ds)
	}
	d := ds[0]
	if !d.AllWild || f.st.Name(d.SymbolID) != "V" || d.Ways != 2 || win != 59*2 {
		t.Fatalf("unexpected all-wild win %+v", d)
	}
}

func TestBetMultScalesWin(t *testing.T) {
	f := newFixture(t)
	reels := [5][4]string{
		{"H4", "S", "G", "S"},
		{"H4", "G", "S", "G"},
		{"H4", "G", "S", "G"},
		{"S", "G", "S", "G"},
		{"G", "S", "G", "S"},
	}
	g, m := f.build(t, reels, nil)
	f.rr.BeginSpin(buf.SpinBase, 0, g, g, m, nil)
	win, err := f.we.Evaluate(5, g, m, f.rr)
	if err != nil || win != 14*5 {
		t.Fatalf("win=%d err=%v", win, err)
	}
}

func TestInvalidWildMultiplierIsInvariant(t *testing.T) {
	f := newFixture(t)
	reels := [5][4]string{
		{"H4", "S", "G", "S"},
		{"W", "G", "S", "G"},
		{"H4", "G", "S", "G"},
		{"S", "G", "S", "G"},
		{"G", "S", "G", "S"},
	}
	g, m := f.build(t, reels, map[[2]int]int{{1, 0}: 0})
	f.rr.BeginSpin(buf.SpinBase, 0, g, g, m, nil)
	_, err := f.we.Evaluate(1, g, m, f.rr)
	if errs.KindOf(err) != errs.KindInvariant {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}
