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

package gen

import (
	"slices"
	"testing"

	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/spec"
)

const wildID int16 = 9

func testScreen() *spec.ScreenSetting {
	return &spec.ScreenSetting{Columns: 5, Rows: 4, ScreenSize: 20}
}

// testMode 每軸皆為 0..9 的遞增輪帶，第 2 軸第 9 格為 wild
func testMode(withMults bool) *spec.ModeSetting {
	ms := &spec.ModeSetting{Reels: spec.ReelSet{Strips: make([]spec.ReelStrip, 5)}}
	for c := range 5 {
		strip := []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 0}
		if c >= 1 && c <= 3 {
			strip[9] = wildID
		}
		ms.Reels.Strips[c] = spec.ReelStrip{Symbols: strip}
	}
	if withMults {
		ms.WildMultipliers = []spec.WildMult{{Mult: 2, Weight: 60}, {Mult: 3, Weight: 40}}
	}
	return ms
}

func TestSampleConsumesOneDrawPerReel(t *testing.T) {
	c := core.New(core.NewScript(0, 1, 2, 3, 4))
	gs, err := NewGridSampler(c, testScreen(), testMode(false), wildID)
	if err != nil {
		t.Fatal(err)
	}
	grid, mults := gs.Sample()
	if c.Draws() != 5 {
		t.Fatalf("expected 5 draws, got %d", c.Draws())
	}
	if c.Err() != nil {
		t.Fatalf("unexpected exhaustion")
	}
	// 第 c 軸停在 c，第 r 列為 c+r
	for r := range 4 {
		for col := range 5 {
			if got := grid[r*5+col]; got != int16(col+r) {
				t.Fatalf("cell(%d,%d) = %d, want %d", r, col, got, col+r)
			}
		}
	}
	for _, m := range mults {
		if m != 0 {
			t.Fatalf("no wild expected, mults %v", mults)
		}
	}
	if !slices.Equal(gs.Stops, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("stops %v", gs.Stops)
	}
}

func TestSampleWrapsCyclically(t *testing.T) {
	c := core.New(core.NewScript(8, 8, 8, 8, 8))
	gs, _ := NewGridSampler(c, testScreen(), testMode(false), wildID)
	grid, mults := gs.Sample()
	// 停在 8：8, (wild|0), 0, 1
	if grid[0] != 8 || grid[5] != 0 || grid[10] != 0 || grid[15] != 1 {
		t.Fatalf("reel 0 window wrong: %v", grid)
	}
	if grid[6] != wildID || mults[6] != 1 {
		t.Fatalf("base wild should be 1x, got sym=%d mult=%d", grid[6], mults[6])
	}
}

func TestFreeWildMultipliersColumnMajor(t *testing.T) {
	// 停輪：第 1..3 軸停在 9，wild 位於第 0 列
	// 倍數抽樣：LUT 0..59 為 2x，60..99 為 3x
	c := core.New(core.NewScript(0, 9, 9, 9, 0, 10, 70, 20))
	gs, _ := NewGridSampler(c, testScreen(), testMode(true), wildID)
	_, mults := gs.Sample()
	if c.Draws() != 8 {
		t.Fatalf("expected 5 stop draws + 3 wild draws, got %d", c.Draws())
	}
	if mults[1] != 2 || mults[2] != 3 || mults[3] != 2 {
		t.Fatalf("mults in column order wrong: %v", mults[:5])
	}
}

func TestSampleReproducible(t *testing.T) {
	a := core.New(core.Default().New(99))
	b := core.New(core.Default().New(99))
	ga, _ := NewGridSampler(a, testScreen(), testMode(true), wildID)
	gb, _ := NewGridSampler(b, testScreen(), testMode(true), wildID)
	for range 50 {
		g1, m1 := ga.Sample()
		g2, m2 := gb.Sample()
		if !slices.Equal(g1, g2) || !slices.Equal(m1, m2) {
			t.Fatalf("same seed produced different grids")
		}
	}
}

func TestSampleExhaustion(t *testing.T) {
	c := core.New(core.NewScript(1, 2))
	gs, _ := NewGridSampler(c, testScreen(), testMode(false), wildID)
	gs.Sample()
	if c.Err() == nil {
		t.Fatalf("expected exhausted stream")
	}
}

func TestCount(t *testing.T) {
	if Count([]int16{1, 2, 1, 1}, 1) != 3 {
		t.Fatalf("count wrong")
	}
}
