package handler

import (
	"relaychat/internal/app/chat"
	"relaychat/internal/configs"
	"relaychat/internal/pkg/limiter"
	"relaychat/internal/pkg/pow"
)

// AppDeps bundles everything the HTTP layer needs.
type AppDeps struct {
	Manager        *chat.Manager
	Config         *configs.AppConfig
	ConnectLimiter *limiter.IPRateLimiter
	PowLimiter     *limiter.IPRateLimiter
	PowGate        *pow.Gate
}
