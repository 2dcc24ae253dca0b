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

// Command svr 啟動 vaultways HTTP 服務。
//
//	go run ./cmd/svr -addr :5808 -pool 4 -log-mode prod -audit redis -redis 127.0.0.1:6379
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/configs"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/server"
	"github.com/zintix-labs/vaultways/server/logger"
	"github.com/zintix-labs/vaultways/server/svrcfg"
	_ "go.uber.org/automaxprocs"
)

func main() {
	sCfg, err := loadConfigFromFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := server.Run(sCfg); err != nil {
		os.Exit(1)
	}
}

func loadConfigFromFlags(args []string) (*svrcfg.SvrCfg, error) {
	var (
		sCfg    = new(svrcfg.SvrCfg)
		logMode string
		redis   string
		origins string
	)
	fs := flag.NewFlagSet("svr", flag.ContinueOnError)
	fs.StringVar(&sCfg.Addr, "addr", ":5808", "listen address")
	fs.IntVar(&sCfg.PoolSize, "pool", 3, "machines per game (1-10)")
	fs.DurationVar(&sCfg.SpinTimeout, "spin-timeout", 5*time.Second, "max wait for a machine")
	fs.DurationVar(&sCfg.WriteTimeout, "write-timeout", 60*time.Second, "http write timeout")
	fs.StringVar(&logMode, "log-mode", "dev", "log mode: dev|prod|silence")
	fs.IntVar(&sCfg.LogBuffer, "log-buf", 4096, "async log buffer size")
	fs.StringVar(&sCfg.LogFile.Path, "log-file", "", "rotating log file path (empty: stdout only)")
	fs.IntVar(&sCfg.LogFile.MaxSizeMB, "log-max-mb", 100, "log file size before rotation")
	fs.IntVar(&sCfg.LogFile.MaxBackups, "log-backups", 7, "rotated files to keep")
	fs.IntVar(&sCfg.LogFile.MaxAgeDays, "log-age", 10, "days to keep rotated files")
	fs.StringVar(&sCfg.Audit, "audit", svrcfg.AuditMemory, "audit store: off|memory|redis")
	fs.IntVar(&sCfg.AuditLimit, "audit-limit", 10000, "memory audit store capacity")
	fs.DurationVar(&sCfg.AuditTTL, "audit-ttl", 72*time.Hour, "redis audit record ttl")
	fs.StringVar(&redis, "redis", "", "comma separated redis addresses")
	fs.StringVar(&sCfg.RedisPassword, "redis-password", "", "redis password")
	fs.IntVar(&sCfg.RedisDB, "redis-db", 0, "redis db")
	fs.StringVar(&origins, "cors", "", "comma separated allowed origins")
	fs.BoolVar(&sCfg.DevStartState, "dev-start-state", false, "let /v1/spin take start_state (development only)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	mode, err := logger.ParseMode(logMode)
	if err != nil {
		return nil, err
	}
	sCfg.LogMode = mode
	sCfg.LogFile.Compress = true
	sCfg.RedisAddrs = splitList(redis)
	sCfg.CORSOrigins = splitList(origins)
	sCfg.Log, _ = logger.NewAsyncWithFile(sCfg.LogBuffer, mode, sCfg.LogFile)

	vw, err := vaultways.NewAuto(core.Default(), vaultways.Configs(configs.FS))
	if err != nil {
		return nil, err
	}
	sCfg.Vaultways = vw
	return sCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
