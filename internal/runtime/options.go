package runtime

import (
	"os"
)

type (
	RelayOption func(*RelayCtx)
)

func WithRelayTermination(ch chan os.Signal) RelayOption {
	return func(ctx *RelayCtx) {
		ctx.shutdownChannel = ch
	}
}
