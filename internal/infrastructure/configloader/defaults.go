package configloader

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// defaultServiceName is used when the binary is built without -ldflags "-X main.Name=...".
	defaultServiceName = "gallery"
	// defaultServiceVersion is used when no version is injected at build time.
	defaultServiceVersion = "dev"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
)
