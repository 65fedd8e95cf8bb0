package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/insurhub/backend-go/app/controllers"
	"github.com/insurhub/backend-go/app/middleware"
)

// Init registers all routes. Must be called after config is loaded.
func Init() {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Router("/metrics", &controllers.MetricsController{}, "get:Metrics")

	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)

	web.Router("/api/documents/upload", &controllers.DocumentController{}, "post:Upload")
	web.Router("/api/documents/:doc_id/:file_name", &controllers.DocumentController{}, "get:Download")
	web.Router("/api/ask", &controllers.QueryController{}, "post:Ask")
}
