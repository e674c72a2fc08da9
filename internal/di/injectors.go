//go:build wireinject
// +build wireinject

package di

import (
	"igmetrics/internal"
	"igmetrics/internal/acquisition"
	"igmetrics/internal/controllers"
	"igmetrics/internal/providers"
	"igmetrics/internal/report"
	"igmetrics/internal/services"
	"igmetrics/internal/storage"
	"igmetrics/internal/structures"

	wire "github.com/google/wire"
)

var storageSet = wire.NewSet(
	storage.NewProfileStore,
	storage.NewProfileCounter,
	storage.NewLocker,
	storage.NewScreenshotStore,
	storage.NewZstdCompressor,
	storage.NewSnapshotter,
	storage.NewFileManager,
	storage.NewScheduler,
)

var acquisitionSet = wire.NewSet(
	acquisition.NewClient,
	acquisition.NewTextRecognizer,
	acquisition.NewProfileSource,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewCacheProvider,

		storageSet,
		acquisitionSet,
		report.NewWriter,

		services.NewAnalysisService,
		wire.Bind(new(services.AnalysisServiceInterface), new(*services.AnalysisService)),
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
