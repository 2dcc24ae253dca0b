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

package core

import (
	"testing"

	"github.com/zintix-labs/vaultways/errs"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestCoreCountsDraws(t *testing.T) {
	c := New(Default().New(1))
	c.IntN(5)
	c.Uint64()
	c.Float64()
	if c.Draws() != 3 {
		t.Fatalf("expected 3 draws, got %d", c.Draws())
	}
	c.ResetDraws()
	if c.Draws() != 0 {
		t.Fatalf("reset failed")
	}
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}
	if c.Draws() != 0 {
		t.Fatalf("empty pick must not draw")
	}
}

func TestTraceReplaysThroughScript(t *testing.T) {
	c := New(Default().New(42))
	c.EnableTrace(true)
	want := []int{c.IntN(60), c.IntN(61), c.IntN(7), c.IntN(100)}

	tr := append([]uint64(nil), c.Trace()...)
	r := New(NewScript(tr...))
	for i, n := range []int{60, 61, 7, 100} {
		if got := r.IntN(n); got != want[i] {
			t.Fatalf("draw %d: replay %d, want %d", i, got, want[i])
		}
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestScriptExhaustion(t *testing.T) {
	c := New(NewScript(3, 9))
	if c.IntN(5) != 3 || c.IntN(5) != 4 {
		t.Fatalf("script values not reduced modulo n")
	}
	if c.Err() != nil {
		t.Fatalf("stream should still be healthy")
	}
	c.IntN(5)
	err := c.Err()
	if err == nil {
		t.Fatalf("expected exhaustion")
	}
	if errs.KindOf(err) != errs.KindRngExhausted || !errs.IsVoid(err) {
		t.Fatalf("unexpected kind: %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Default().New(5))
	st, err := c.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	a := c.Uint64()
	if err := c.Restore(st); err != nil {
		t.Fatal(err)
	}
	if b := c.Uint64(); a != b {
		t.Fatalf("restore mismatch %d != %d", a, b)
	}

	s := NewScript(1, 2, 3)
	s.Uint64()
	ss, _ := s.Snapshot()
	s.Uint64()
	s.Uint64()
	s.Uint64()
	if !s.Exhausted() {
		t.Fatalf("expected exhausted")
	}
	if err := s.Restore(ss); err != nil || s.Exhausted() || s.Remaining() != 2 {
		t.Fatalf("script restore failed")
	}
}
