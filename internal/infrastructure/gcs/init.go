package gcs

import "github.com/google/wire"

// ProviderSet 暴露对象存储构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	ProvideObjectStore,
)
