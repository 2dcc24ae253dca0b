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

package dto

import (
	"io"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/vaultways/corefmt"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
)

// maxBody POST body 上限
const maxBody = 1 << 20

// strict 拒絕未知欄位，避免靜默丟資料
var strict = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// SpinRequest spin(bet, mode) 的對外請求。
//
// Bet 為 1 倍押注的金額（十進位，不經浮點）；購買免費遊戲的費用由錢包端依 cost 另計。
// BetMult 為引擎內部整數單位的倍數，省略視為 1。
type SpinRequest struct {
	UID        string          `json:"uid"`
	GameName   string          `json:"game"`
	GameId     spec.GID        `json:"gid"`
	Bet        decimal.Decimal `json:"bet"`
	Mode       string          `json:"mode"`
	BetMult    int             `json:"bet_mult,omitempty"`
	StartState *StartState     `json:"start_state,omitempty"`
}

// StartState 由呼叫端帶入的起始 RNG 快照：帶入當初記錄的 start_b64u 即可重現該局。
//
// 重現時機台的即時亂數流不會前進。
type StartState struct {
	StartCoreSnapB64U string `json:"start_b64u,omitempty"`
}

func (ss *StartState) HasPayload() bool {
	return ss != nil && ss.StartCoreSnapB64U != ""
}

// Snapshot 解碼起始快照；沒有帶入時回傳 nil
func (ss *StartState) Snapshot() ([]byte, error) {
	if !ss.HasPayload() {
		return nil, nil
	}
	snap, err := corefmt.DecodeBase64URL(ss.StartCoreSnapB64U)
	if err != nil {
		return nil, errs.NewWarn("core snap decode failed " + err.Error())
	}
	return snap, nil
}

// Normalize 補上預設值並做與遊戲無關的基本檢查
func (sr *SpinRequest) Normalize() error {
	if sr.Mode == "" {
		sr.Mode = spec.BetModeNormal
	}
	if sr.BetMult == 0 {
		sr.BetMult = 1
	}
	if sr.BetMult < 1 {
		return errs.Warnf("invalid bet_mult %d", sr.BetMult)
	}
	if !sr.Bet.IsPositive() {
		return errs.NewWarn("bet must be positive")
	}
	if sr.Mode != spec.BetModeNormal && sr.Mode != spec.BetModeBonusBuy {
		return errs.Warnf("unknown mode %q", sr.Mode)
	}
	return nil
}

// DecodeSpinRequest 把 HTTP 請求解碼成 SpinRequest。
//
//   - GET：query string（uid/game/gid/bet/mode/bet_mult），只適合新局
//   - POST：JSON body，可帶 start_state
//
// 這裡只做解碼與型別轉換，遊戲合法性由 Machine 判斷。
func DecodeSpinRequest(r *http.Request) (*SpinRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SpinRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.GameName = q.Get("game")
		req.Mode = q.Get("mode")
		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.Warnf("invalid gid: %v", err)
			}
			req.GameId = spec.GID(u)
		}
		if s := q.Get("bet"); s != "" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil, errs.Warnf("invalid bet: %v", err)
			}
			req.Bet = d
		}
		if s := q.Get("bet_mult"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.Warnf("invalid bet_mult: %v", err)
			}
			req.BetMult = v
		}
		return req, nil
	case http.MethodPost:
		if err := DecodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// ReplayRequest 以紀錄下來的亂數序列重跑一局；序列不足時該局作廢（rng_exhausted）。
type ReplayRequest struct {
	GameId  spec.GID        `json:"gid"`
	Mode    string          `json:"mode"`
	Bet     decimal.Decimal `json:"bet"`
	BetMult int             `json:"bet_mult,omitempty"`
	Draws   []uint64        `json:"draws"`
}

func DecodeReplayRequest(r *http.Request) (*ReplayRequest, error) {
	if r == nil || r.Method != http.MethodPost {
		return nil, errs.NewWarn("replay requires POST")
	}
	req := new(ReplayRequest)
	if err := DecodeJSON(r.Body, req); err != nil {
		return nil, err
	}
	if req.Mode == "" {
		req.Mode = spec.BetModeNormal
	}
	if req.BetMult == 0 {
		req.BetMult = 1
	}
	if req.Bet.IsZero() {
		req.Bet = decimal.NewFromInt(1)
	}
	return req, nil
}

// DecodeJSON 以嚴格模式解碼（限制大小、拒絕未知欄位）
func DecodeJSON(body io.Reader, v any) error {
	if body == nil {
		return errs.NewWarn("empty body")
	}
	dec := strict.NewDecoder(io.LimitReader(body, maxBody))
	if err := dec.Decode(v); err != nil {
		return errs.Warnf("invalid json: %v", err)
	}
	return nil
}

// Marshal 對外輸出統一使用的 JSON 編碼
func Marshal(v any) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, v)
}
