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

package v1

import (
	"net/http"

	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/server/httperr"
)

// Games GET /v1/games：已註冊的設定組摘要
func Games(vw *vaultways.Vaultways) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := vw.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, sum)
	}
}

// Health GET /healthz：runtime 關閉後回 503
func Health(rt *vaultways.SlotRuntime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.Closed() {
			httperr.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "closed", "reason": rt.ClosedReason()})
			return
		}
		pools := make([]vaultways.MachinePoolMetrics, 0, len(rt.Pools()))
		for _, p := range rt.Pools() {
			pools = append(pools, p.Metrics())
		}
		httperr.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "pools": pools})
	}
}
