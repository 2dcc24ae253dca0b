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

// Command run 在本機跑模擬並印出 RTP 報表，可選 pprof。
//
//	go run ./cmd/run -game 1001 -spins 1000000 -worker 8
//	go run ./cmd/run -game 1002 -mode bonus_buy -spins 100000
//	go run ./cmd/run -game 1001 -player 1000 -bets 200 -spins 1500
//	go run ./cmd/run -game 1001 -round 3 -seed 42
//	go run ./cmd/run -game 1001 -spins 100000 -out yaml
package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/vaultways/sdk/perf"
)

func main() {
	cfg, err := bindVar(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := perf.Run(perf.DefaultDir, cfg.pprofmode, cfg.execute); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
