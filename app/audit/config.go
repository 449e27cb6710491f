package audit

import (
	"github.com/ctcscan/supplyx/pkg/utils"
)

// Config is read from the environment; there is no config file.
type Config struct {
	// NodeURL is the websocket RPC endpoint of the archive node.
	NodeURL string
	// ExplorerURL is the base URL of the reporting service.
	ExplorerURL string
	// Network is the optional network name forwarded to the explorer.
	Network string
	// AtBlock optionally pins the audited snapshot to an explicit block
	// hash instead of the explorer's latest block.
	AtBlock string
	// PageSize bounds each account-table page request.
	PageSize int
	// TokenDecimals converts raw ledger units to whole tokens for display.
	TokenDecimals int
}

func ConfigFromEnv() Config {
	return Config{
		NodeURL:       utils.Env("CHAIN_WS_URL", "wss://mainnet.ctcscan.io/rpc"),
		ExplorerURL:   utils.Env("EXPLORER_URL", "https://api.ctcscan.io"),
		Network:       utils.Env("CHAIN_NETWORK", ""),
		AtBlock:       utils.Env("CHAIN_AT_BLOCK", ""),
		PageSize:      utils.EnvInt("PAGE_SIZE", 1000),
		TokenDecimals: utils.EnvInt("TOKEN_DECIMALS", 18),
	}
}
