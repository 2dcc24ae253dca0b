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

package api

import (
	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/audit"
	v1 "github.com/zintix-labs/vaultways/server/api/v1"
	"github.com/zintix-labs/vaultways/server/metrics"
	"github.com/zintix-labs/vaultways/server/netsvr"
	"github.com/zintix-labs/vaultways/server/netsvr/middleware"
	"github.com/zintix-labs/vaultways/server/svrcfg"
)

// Deps 路由需要的執行期依賴，由 server.Run 組裝
type Deps struct {
	Runtime *vaultways.SlotRuntime
	Store   audit.Store
	Metrics *metrics.Metrics
}

// RegisterRoutes 依序註冊 middleware、維運端點、v1 api
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, deps Deps) error {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.CORS(sCfg.CORSOrigins))
	svr.Use(middleware.Compression)

	svr.Get("/healthz", v1.Health(deps.Runtime))
	svr.Mount("/metrics", deps.Metrics.Handler())

	spin, err := v1.NewSpinHandler(deps.Runtime, deps.Store, deps.Metrics, sCfg.Log, sCfg.SpinTimeout, sCfg.DevStartState)
	if err != nil {
		return err
	}
	sim, err := v1.NewSimHandler(sCfg.Vaultways)
	if err != nil {
		return err
	}
	stat := v1.NewStatHandler(sCfg.Vaultways)

	svr.Group("/v1", func(r netsvr.NetRouter) {
		r.Get("/spin", spin.Spin)
		r.Post("/spin", spin.Spin)
		r.Post("/replay", spin.Replay)
		r.Get("/round/{id}", spin.Round)

		r.Get("/sim", sim.Sim)
		r.Post("/sim", sim.Sim)
		r.Get("/simplayer", sim.SimPlayers)
		r.Post("/simplayer", sim.SimPlayers)
		r.Post("/simbycfg", sim.SimByCfg)

		r.Post("/stat", stat.Stat)
		r.Get("/games", v1.Games(sCfg.Vaultways))
	})
	return nil
}
