package internal

import (
	"igmetrics/internal/controllers"
	"igmetrics/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/api/analyze", http.HandlerFunc(apiController.Analyze))
	routers.Post("/api/analyze/{username}", http.HandlerFunc(apiController.AnalyzeLink))
	routers.Get("/api/data/{username}", http.HandlerFunc(apiController.GetData))
	routers.Delete("/api/data/{username}", http.HandlerFunc(apiController.DeleteData))
	routers.Post("/api/data/{username}/report", http.HandlerFunc(apiController.RegenerateReport))
	routers.Get("/api/users", http.HandlerFunc(apiController.ListUsers))
	routers.Delete("/api/users", http.HandlerFunc(apiController.DeleteAll))
	return routers
}
