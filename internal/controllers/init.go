package controllers

import "github.com/google/wire"

// ProviderSet 暴露控制器层的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	ProvideHandlerTimeouts,
	NewBaseHandler,
	NewVideoHandler,
)

// ProvideHandlerTimeouts 返回缺省超时策略，由 BaseHandler 补齐回退值。
func ProvideHandlerTimeouts() HandlerTimeouts {
	return HandlerTimeouts{}
}
