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

package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/vaultways/dto"
)

func sample(id string) dto.RoundResult {
	return dto.RoundResult{
		RoundID:         id,
		GameName:        "vault_standard",
		GameID:          1001,
		Mode:            "normal",
		Bet:             decimal.NewFromInt(2),
		BetMult:         1,
		FinalMultiplier: decimal.RequireFromString("1.25"),
		Payout:          decimal.RequireFromString("2.5"),
		WinUnits:        125,
		Grids:           []dto.SpinDTO{{Kind: "base", Stops: []int{1, 2, 3, 4, 5}, Win: 125}},
	}
}

func TestMemoryStoreEvicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2)
	for i := 0; i < 3; i++ {
		if err := m.Put(ctx, NewRecord(sample(fmt.Sprint(i)), []uint64{uint64(i)})); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if m.Len() != 2 {
		t.Fatalf("len = %d", m.Len())
	}
	if _, err := m.Get(ctx, "0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("oldest record should be evicted, got %v", err)
	}
	rec, err := m.Get(ctx, "2")
	if err != nil || rec.Draws[0] != 2 {
		t.Fatalf("get: %+v, %v", rec, err)
	}
	if err := m.Put(ctx, &Record{}); err == nil {
		t.Fatalf("expected error for empty round id")
	}
}

func TestNewRecordCopiesDraws(t *testing.T) {
	draws := []uint64{7, 8, 9}
	rec := NewRecord(sample("x"), draws)
	draws[0] = 0
	if rec.Draws[0] != 7 {
		t.Fatalf("draws shared with caller")
	}
}

func TestRecordCodec(t *testing.T) {
	rec := NewRecord(sample("abc"), []uint64{1, 2, 3})
	blob, err := encodeRecord(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeRecord(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Round.RoundID != "abc" || !got.Round.Payout.Equal(rec.Round.Payout) || len(got.Draws) != 3 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Round.Grids[0].Stops[4] != 5 {
		t.Fatalf("grid lost: %+v", got.Round.Grids)
	}
	if _, err := decodeRecord([]byte("garbage")); err == nil {
		t.Fatalf("expected decode error")
	}
	if Key("abc") != "vaultways:round:abc" {
		t.Fatalf("key = %s", Key("abc"))
	}
}
