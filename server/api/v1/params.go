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
	"net/url"
	"strconv"

	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
)

// decode GET 讀 query（由 fromQuery 填），POST 讀 JSON body
func decode(r *http.Request, v any, fromQuery func(url.Values) error) error {
	switch r.Method {
	case http.MethodGet:
		return fromQuery(r.URL.Query())
	case http.MethodPost:
		return dto.DecodeJSON(r.Body, v)
	default:
		return errs.Warnf("method %s not allowed", r.Method)
	}
}

func intParam(q url.Values, key string, dst *int) error {
	s := q.Get(key)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return errs.Warnf("%s must be integer", key)
	}
	*dst = n
	return nil
}

func gidParam(q url.Values, dst *spec.GID) error {
	s := q.Get("gid")
	if s == "" {
		return errs.NewWarn("gid is required")
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errs.NewWarn("gid must be non-negative integer")
	}
	*dst = spec.GID(u)
	return nil
}

func seedParam(q url.Values, dst **int64) error {
	s := q.Get("seed")
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errs.NewWarn("seed must be int64")
	}
	*dst = &n
	return nil
}

// resolveSeed 未指定時以 crypto/rand 產生，並回寫讓回應帶出
func resolveSeed(seed **int64) error {
	if *seed != nil {
		return nil
	}
	s, err := vaultways.CryptoSeed()
	if err != nil {
		return err
	}
	*seed = &s
	return nil
}

func inRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return errs.Warnf("%s must be between %d and %d", name, lo, hi)
	}
	return nil
}
