//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/lingo-services-gallery/internal/controllers"
	configloader "github.com/bionicotaku/lingo-services-gallery/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-gallery/internal/infrastructure/database"
	"github.com/bionicotaku/lingo-services-gallery/internal/infrastructure/gcs"
	"github.com/bionicotaku/lingo-services-gallery/internal/repositories"
	"github.com/bionicotaku/lingo-services-gallery/internal/server"
	"github.com/bionicotaku/lingo-services-gallery/internal/services"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(context.Context, *configloader.Bundle, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		database.ProviderSet,
		gcs.ProviderSet,
		repositories.ProviderSet,
		services.ProviderSet,
		controllers.ProviderSet,
		server.ProviderSet,
		wire.Bind(new(services.VideoRepo), new(*repositories.VideoRepository)),
		wire.Bind(new(services.VideoQueryRepo), new(*repositories.VideoRepository)),
		wire.Bind(new(services.BlobStore), new(*gcs.ObjectStore)),
		wire.Bind(new(services.BlobURLResolver), new(*gcs.ObjectStore)),
		newApp,
	))
}
