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
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/configs"
	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/spec"
	"github.com/zintix-labs/vaultways/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	maxPlayers      = 100000
	maxPlayerSpins  = 15000 // 約 10 小時的遊玩量，再長就直接跑機台模擬
	colorGreen      = "\033[1;32m"
	colorReset      = "\033[0m"
	defaultSpinsRun = 10000000
)

var oneUnit = decimal.NewFromInt(1)

type config struct {
	id        spec.GID
	cfgPath   string // 外部 YAML，覆蓋內建設定（同 id / name）
	worker    int
	player    int
	bets      int
	spins     int
	round     int // >0 時改為印出 round 局完整結果
	betMode   string
	seed      int64
	pprofmode string
	out       string // json|yaml 時改輸出結構化報表
}

type gidFlag struct{ p *spec.GID }

func (f gidFlag) String() string {
	if f.p == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*f.p), 10)
}

func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.GID(u)
	return nil
}

func bindVar(args []string) (*config, error) {
	cfg := &config{id: 1001}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.Var(gidFlag{&cfg.id}, "game", "target game id")
	fs.StringVar(&cfg.cfgPath, "cfg", "", "external profile yaml (must match a registered game)")
	fs.IntVar(&cfg.worker, "worker", 1, "number of workers")
	fs.IntVar(&cfg.player, "player", 1, "number of players")
	fs.IntVar(&cfg.bets, "bets", 200, "initial balance in bets")
	fs.IntVar(&cfg.spins, "spins", defaultSpinsRun, "rounds per worker (or per player)")
	fs.IntVar(&cfg.round, "round", 0, "print N full rounds as json instead of simulating")
	fs.StringVar(&cfg.betMode, "mode", spec.BetModeNormal, "bet mode: normal|bonus_buy")
	fs.Int64Var(&cfg.seed, "seed", -1, "int64 seed; < 1 picks a random seed")
	fs.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	fs.StringVar(&cfg.out, "out", "", "report format: '' (table), json, yaml")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.seed < 1 {
		s, err := vaultways.CryptoSeed()
		if err != nil {
			return nil, err
		}
		cfg.seed = s
	}
	return cfg, cfg.valid()
}

func (cfg *config) valid() error {
	p := message.NewPrinter(language.English)
	if cfg.worker < 1 {
		return errs.NewWarn("workers must > 0")
	}
	if cfg.player < 1 {
		return errs.NewWarn("player must > 0")
	}
	if cfg.player > maxPlayers {
		p.Printf("too many players: %d resized to %d\n", cfg.player, maxPlayers)
		cfg.player = maxPlayers
	}
	if cfg.player > 1 && cfg.bets < 1 {
		return errs.NewWarn("balance must >= 1 bet")
	}
	if cfg.spins < 1 {
		return errs.NewWarn("spins must > 0")
	}
	switch cfg.out {
	case "", stats.FormatJSON, stats.FormatYAML:
	default:
		return errs.Warnf("unknown -out %q", cfg.out)
	}
	if cfg.player > 1 && cfg.spins > maxPlayerSpins {
		p.Printf("too many spins per player: %d resized to %d\n", cfg.spins, maxPlayerSpins)
		cfg.spins = maxPlayerSpins
	}
	return nil
}

func (cfg *config) execute() error {
	vw, err := vaultways.NewAuto(core.Default(), vaultways.Configs(configs.FS))
	if err != nil {
		return err
	}
	if cfg.round > 0 {
		return cfg.printRounds(vw)
	}

	var sim *vaultways.Simulator
	if cfg.cfgPath != "" {
		raw, rerr := os.ReadFile(cfg.cfgPath)
		if rerr != nil {
			return errs.Wrap(rerr, "read cfg")
		}
		sim, err = vw.NewSimulatorByYAML(raw, cfg.seed)
	} else {
		sim, err = vw.NewSimulatorWithSeed(cfg.id, cfg.seed)
	}
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	switch {
	case cfg.player > 1:
		p.Printf("%s[WORKERS:%d] [GAME:%s] [PLAYERS:%d BALANCE:%d MODE:%s SPINS:%d SEED:%d]%s\n",
			colorGreen, cfg.worker, sim.GameName, cfg.player, cfg.bets, cfg.betMode, cfg.spins, cfg.seed, colorReset)
		st, est, used, err := sim.SimPlayers(cfg.worker, cfg.player, cfg.bets, cfg.betMode, cfg.spins, cfg.out == "")
		if err != nil {
			return err
		}
		if cfg.out != "" {
			st.Done()
			return stats.Render(os.Stdout, cfg.out, struct {
				Report    *stats.StatReport       `json:"Report"`
				Estimator *stats.EstimatorPlayers `json:"Estimator"`
			}{st, est})
		}
		st.StdOut(used)
		est.Out()
	case cfg.worker > 1:
		p.Printf("%s[WORKERS:%d] [GAME:%s] [MODE:%s] [SPINS:%d] [SEED:%d]%s\n",
			colorGreen, cfg.worker, sim.GameName, cfg.betMode, cfg.worker*cfg.spins, cfg.seed, colorReset)
		st, used, err := sim.SimMP(cfg.betMode, cfg.spins, cfg.worker, cfg.out == "")
		if err != nil {
			return err
		}
		return cfg.report(st, used)
	default:
		p.Printf("%s[GAME:%s] [MODE:%s] [SPINS:%d] [SEED:%d]%s\n",
			colorGreen, sim.GameName, cfg.betMode, cfg.spins, cfg.seed, colorReset)
		st, used, err := sim.Sim(cfg.betMode, cfg.spins, cfg.out == "")
		if err != nil {
			return err
		}
		return cfg.report(st, used)
	}
	return nil
}

func (cfg *config) report(st *stats.StatReport, used time.Duration) error {
	if cfg.out != "" {
		return st.WriteAs(os.Stdout, cfg.out)
	}
	st.StdOut(used)
	return nil
}

// printRounds 以 1 元押注逐局印出完整結果（含盤面與 feature log）
func (cfg *config) printRounds(vw *vaultways.Vaultways) error {
	m, err := vw.NewMachineWithSeed(cfg.id, cfg.seed)
	if err != nil {
		return err
	}
	for i := 0; i < cfg.round; i++ {
		res, err := m.Spin(&dto.SpinRequest{GameId: cfg.id, Mode: cfg.betMode, Bet: oneUnit})
		if err != nil && !errs.IsVoid(err) {
			return err
		}
		raw, err := dto.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
	}
	return nil
}
