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
	"reflect"
	"testing"

	"github.com/zintix-labs/vaultways/server/logger"
	"github.com/zintix-labs/vaultways/server/svrcfg"
)

func TestLoadConfigFromFlags(t *testing.T) {
	sCfg, err := loadConfigFromFlags([]string{"-pool", "20", "-log-mode", "silence", "-audit", "redis", "-redis", "a:6379, b:6379", "-cors", "https://x.example"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sCfg.LogMode != logger.ModeSilence || sCfg.Audit != svrcfg.AuditRedis {
		t.Fatalf("unexpected cfg: %+v", sCfg)
	}
	if !reflect.DeepEqual(sCfg.RedisAddrs, []string{"a:6379", "b:6379"}) || len(sCfg.CORSOrigins) != 1 {
		t.Fatalf("lists: %v %v", sCfg.RedisAddrs, sCfg.CORSOrigins)
	}
	if sCfg.DevStartState {
		t.Fatalf("start_state must be off by default")
	}
	if err := sCfg.Valid(); err != nil || sCfg.PoolSize != 10 {
		t.Fatalf("valid: %v pool=%d", err, sCfg.PoolSize)
	}
	if dev, err := loadConfigFromFlags([]string{"-log-mode", "silence", "-dev-start-state"}); err != nil || !dev.DevStartState {
		t.Fatalf("dev start state flag: %v", err)
	}
	if _, err := loadConfigFromFlags([]string{"-log-mode", "loud"}); err == nil {
		t.Fatalf("expected log mode error")
	}
}
