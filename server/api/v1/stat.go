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
	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/recorder"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/server/httperr"
	"github.com/zintix-labs/vaultways/spec"
)

const maxStatRounds = 1_000_000

// StatRound 呼叫端自行收集的一局結果（bet_unit 單位，封頂後）
type StatRound struct {
	Win        int  `json:"win"`
	BaseWin    int  `json:"base_win"`
	FreeWin    int  `json:"free_win"`
	Triggered  bool `json:"triggered,omitempty"`
	Capped     bool `json:"capped,omitempty"`
	FreeSpins  int  `json:"free_spins,omitempty"`
	Retriggers int  `json:"retriggers,omitempty"`
	Void       bool `json:"void,omitempty"`
}

type statRequest struct {
	GID     spec.GID    `json:"gid"`
	Mode    string      `json:"mode"`
	BetMult int         `json:"bet_mult"`
	Rounds  []StatRound `json:"rounds"`
}

// StatHandler 把外部收集的局結果彙整成與模擬器相同格式的報表
type StatHandler struct {
	vw *vaultways.Vaultways
}

func NewStatHandler(vw *vaultways.Vaultways) *StatHandler {
	return &StatHandler{vw: vw}
}

// Stat POST /v1/stat
func (h *StatHandler) Stat(w http.ResponseWriter, r *http.Request) {
	req := new(statRequest)
	if err := dto.DecodeJSON(r.Body, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := inRange("rounds", len(req.Rounds), 1, maxStatRounds); err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = spec.BetModeNormal
	}
	gs, err := h.vw.GameSetting(req.GID)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rec, err := recorder.NewRoundRecorder(gs, req.Mode, max(1, req.BetMult), 0)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rr := new(buf.RoundResult)
	for i, sr := range req.Rounds {
		if sr.Void {
			rec.RecordVoid()
			continue
		}
		if sr.Win != sr.BaseWin+sr.FreeWin || sr.Win < 0 || sr.BaseWin < 0 {
			httperr.Errs(w, errs.Warnf("round %d: win must equal base_win + free_win", i))
			return
		}
		*rr = buf.RoundResult{
			BaseWin:         sr.BaseWin,
			FreeWin:         sr.FreeWin,
			TotalWin:        sr.Win,
			Payout:          sr.Win,
			Capped:          sr.Capped,
			Triggered:       sr.Triggered,
			FreeSpinsPlayed: sr.FreeSpins,
			Retriggers:      sr.Retriggers,
			Settled:         true,
		}
		rec.Record(rr)
	}
	httperr.WriteJSON(w, http.StatusOK, rec.Done())
}
