// Package corefmt 負責 RNG 快照與稽核紀錄的編碼：
// 快照以 base64url 文字傳輸，稽核紀錄以 zstd 壓縮後存放。
package corefmt

import (
	"encoding/base64"
	"encoding/binary"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/vaultways/errs"
)

// 解壓後的上限，超過視為損毀
const maxPlain = 64 << 20

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	return b, nil
}

// encoder / decoder 的 EncodeAll / DecodeAll 可併發共用
var codec = sync.OnceValues(func() (*zstd.Encoder, *zstd.Decoder) {
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPlain), zstd.WithDecoderConcurrency(0))
	return enc, dec
})

// Compress 輸出 uvarint(原始長度) || zstd(payload)
func Compress(payload []byte) ([]byte, error) {
	if len(payload) > maxPlain {
		return nil, errs.Warnf("payload %d bytes exceeds %d", len(payload), maxPlain)
	}
	enc, _ := codec()
	out := binary.AppendUvarint(nil, uint64(len(payload)))
	return enc.EncodeAll(payload, out), nil
}

// Decompress 為 Compress 的反向；長度不符或截斷回傳 Warn
func Decompress(blob []byte) ([]byte, error) {
	n, hdr := binary.Uvarint(blob)
	if hdr <= 0 || n > maxPlain {
		return nil, errs.NewWarn("decompress: invalid length header")
	}
	_, dec := codec()
	out, err := dec.DecodeAll(blob[hdr:], make([]byte, 0, n))
	if err != nil {
		return nil, errs.Wrap(err, "zstd decode failed")
	}
	if uint64(len(out)) != n {
		return nil, errs.Warnf("decompress: got %d bytes, header says %d", len(out), n)
	}
	return out, nil
}
