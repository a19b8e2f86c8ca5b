package services

import "github.com/google/wire"

// ProviderSet 暴露 Service 层的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewSourceResolver,
	NewVideoCommandService,
	NewVideoQueryService,
)
