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

package svrcfg

import (
	"log/slog"
	"strings"
	"time"

	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/audit"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/server/logger"
)

// 稽核儲存種類
const (
	AuditOff    = "off"
	AuditMemory = "memory"
	AuditRedis  = "redis"
)

const (
	defaultAddr         = ":5808"
	defaultSpinTimeout  = 5 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultAuditTTL     = 72 * time.Hour
)

// SvrCfg 伺服器組裝所需的全部依賴與參數，由 cmd/svr 的旗標填入
type SvrCfg struct {
	Addr         string
	PoolSize     int           // 每個遊戲的機台數 1~10
	SpinTimeout  time.Duration // 單次 spin 等待機台的上限
	WriteTimeout time.Duration // sim 類請求較久

	Log       *slog.Logger
	LogMode   logger.LogMode
	LogBuffer int
	LogFile   logger.FileSink

	Audit         string // off | memory | redis
	AuditLimit    int    // memory 上限
	AuditTTL      time.Duration
	RedisAddrs    []string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string

	DevStartState bool // /v1/spin 接受 start_state，只給開發環境

	Vaultways *vaultways.Vaultways
}

// Valid 補預設值並檢查必要依賴
func (sc *SvrCfg) Valid() error {
	if sc.Vaultways == nil {
		return errs.NewFatal("vaultways is required")
	}
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("async log handler is not ready")
		}
	} else {
		sc.Log, _ = logger.NewAsyncWithFile(max(sc.LogBuffer, 1024), sc.LogMode, sc.LogFile)
	}
	if sc.Addr == "" {
		sc.Addr = defaultAddr
	}
	if !strings.Contains(sc.Addr, ":") {
		return errs.Warnf("invalid listen address %q", sc.Addr)
	}
	sc.PoolSize = min(10, max(1, sc.PoolSize))
	if sc.SpinTimeout <= 0 {
		sc.SpinTimeout = defaultSpinTimeout
	}
	if sc.WriteTimeout <= 0 {
		sc.WriteTimeout = defaultWriteTimeout
	}
	if sc.AuditTTL <= 0 {
		sc.AuditTTL = defaultAuditTTL
	}
	switch sc.Audit {
	case "":
		sc.Audit = AuditMemory
	case AuditOff, AuditMemory:
	case AuditRedis:
		if len(sc.RedisAddrs) == 0 {
			return errs.NewWarn("redis audit store needs at least one address")
		}
	default:
		return errs.Warnf("unknown audit store %q", sc.Audit)
	}
	return nil
}

// BuildAudit 依設定建立稽核儲存；off 回傳 nil
func (sc *SvrCfg) BuildAudit() (audit.Store, error) {
	switch sc.Audit {
	case AuditOff:
		return nil, nil
	case AuditRedis:
		rdb := audit.NewRedisClient(sc.RedisAddrs, sc.RedisPassword, sc.RedisDB)
		return audit.NewRedisStore(rdb, sc.AuditTTL), nil
	default:
		return audit.NewMemoryStore(sc.AuditLimit), nil
	}
}
