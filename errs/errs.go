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

// Package errs 提供帶嚴重度與類別的錯誤型別。
//
// 嚴重度 (ErrLevel) 給最上層決定回應方式：Warn 多半是請求參數問題，Fatal 代表機台或設定不可信。
// 類別 (Kind) 區分設定錯誤與作廢局；RngExhausted 與 Invariant 使該局作廢，不得回報任何部分派彩。
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

func (l ErrLevel) String() string {
	switch l {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case Log:
		return "log"
	}
	return ""
}

type Kind uint8

const (
	KindNone Kind = iota
	KindConfiguration
	KindRngExhausted
	KindInvariant
)

var kindNames = [...]string{"", "configuration", "rng_exhausted", "invariant_violation"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return ""
}

// E 統一錯誤型別；Cause 可串接下層錯誤
type E struct {
	Message string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 格式為 errlv=<lv> [kind=<kind>] <msg> [(cause: ...)]
func (e *E) Error() string {
	var b strings.Builder
	b.WriteString("errlv=")
	b.WriteString(e.ErrLv.String())
	if e.Kind != KindNone {
		b.WriteString(" kind=")
		b.WriteString(e.Kind.String())
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

func (e *E) Unwrap() error { return e.Cause }

func NewFatal(msg string) *E { return &E{Message: msg, ErrLv: Fatal} }

func NewWarn(msg string) *E { return &E{Message: msg, ErrLv: Warn} }

func Fatalf(format string, a ...any) *E { return NewFatal(fmt.Sprintf(format, a...)) }

func Warnf(format string, a ...any) *E { return NewWarn(fmt.Sprintf(format, a...)) }

// Configuration 設定檔錯誤，必定在任何一局開始前拋出
func Configuration(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindConfiguration}
}

func Configurationf(format string, a ...any) *E {
	return Configuration(fmt.Sprintf(format, a...))
}

// RngExhausted 亂數流無法再提供抽樣
func RngExhausted(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindRngExhausted}
}

// Invariant 算分或狀態機本身有缺陷，不可被默默修正
func Invariant(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindInvariant}
}

func Invariantf(format string, a ...any) *E {
	return Invariant(fmt.Sprintf(format, a...))
}

// Wrap 沿用 cause 鏈上的嚴重度與類別；外部錯誤一律視為 Fatal
func Wrap(cause error, msg string) *E {
	e := &E{Message: msg, Cause: cause, ErrLv: Fatal, Kind: KindOf(cause)}
	if inner, ok := AsErr(cause); ok {
		e.ErrLv = inner.ErrLv
	}
	return e
}

// WrapKind 包裝並指定類別，例如把 yaml 解析錯誤標成設定錯誤
func WrapKind(cause error, kind Kind, msg string) *E {
	return &E{Message: msg, Cause: cause, ErrLv: Fatal, Kind: kind}
}

func AsErr(err error) (*E, bool) {
	var e *E
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf 取出錯誤鏈上第一個非空類別
func KindOf(err error) Kind {
	for e, ok := AsErr(err); ok; e, ok = AsErr(e.Cause) {
		if e.Kind != KindNone {
			return e.Kind
		}
	}
	return KindNone
}

// IsVoid 回報錯誤是否使該局作廢
func IsVoid(err error) bool {
	switch KindOf(err) {
	case KindRngExhausted, KindInvariant:
		return true
	}
	return false
}
