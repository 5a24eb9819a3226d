package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/docqa/backend-go/app/controllers"
)

// Init registers all routes. Must be called after config is loaded.
func Init() {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Router("/metrics", &controllers.MetricsController{}, "get:Metrics")

	documentController := &controllers.DocumentController{}
	web.Router("/api/documents", documentController, "post:Upload")
	web.Router("/api/documents/index", documentController, "get:Index")

	web.Router("/api/query", &controllers.QueryController{}, "post:Query")
}
