package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// estimateTokens is a local best-effort count used when a vendor response
// omits usage accounting. cl100k_base is close enough across chat models
// for quota and metrics purposes.
func estimateTokens(text string) int {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			enc = e
		}
	})
	if enc == nil {
		// crude fallback: ~4 chars per token
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
