package configs

import (
	"embed"
)

// FS 內嵌兩組正式設定（vault_standard / vault_extreme），兩者以 game_id 區分，不可混用。
//
//go:embed *.yaml
var FS embed.FS
