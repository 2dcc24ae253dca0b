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

package main

import (
	"testing"

	"github.com/zintix-labs/vaultways/spec"
)

func TestBindVar(t *testing.T) {
	cfg, err := bindVar([]string{"-game", "1002", "-mode", "bonus_buy", "-player", "200000", "-spins", "20000", "-seed", "9"})
	if err != nil {
		t.Fatalf("bindVar: %v", err)
	}
	if cfg.id != spec.GID(1002) || cfg.betMode != spec.BetModeBonusBuy || cfg.seed != 9 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.player != maxPlayers || cfg.spins != maxPlayerSpins {
		t.Fatalf("limits not applied: %+v", cfg)
	}
	if _, err := bindVar([]string{"-worker", "0"}); err == nil {
		t.Fatalf("expected error for zero workers")
	}
	if cfg, _ := bindVar(nil); cfg.seed < 1 {
		t.Fatalf("random seed not drawn")
	}
}

func TestPrintRounds(t *testing.T) {
	cfg, err := bindVar([]string{"-round", "2", "-seed", "5"})
	if err != nil {
		t.Fatalf("bindVar: %v", err)
	}
	if err := cfg.execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestStructuredOut(t *testing.T) {
	if _, err := bindVar([]string{"-out", "xml"}); err == nil {
		t.Fatalf("expected error for unknown -out")
	}
	cfg, err := bindVar([]string{"-spins", "2000", "-seed", "3", "-out", "yaml"})
	if err != nil {
		t.Fatalf("bindVar: %v", err)
	}
	if err := cfg.execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
}
