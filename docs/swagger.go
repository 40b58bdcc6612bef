package docs

import "github.com/swaggo/swag"

// @title           Taskflow API
// @version         1.0
// @description     Projects, tasks with dependencies, comments, notifications and live events

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Auth
// @tag.description Registration, login and profile

// @tag.name Projects
// @tag.description Project management operations

// @tag.name Tasks
// @tag.description Task management operations

// @tag.name Comments
// @tag.description Task comment operations

// @tag.name Notifications
// @tag.description Notification inbox operations

// @tag.name Admin
// @tag.description User administration operations

// @tag.name Reports
// @tag.description Aggregated reporting

// @tag.name Events
// @tag.description Live event stream

// Register swagger info
func SwaggerInfo() *swag.Spec {
	spec, _ := swag.GetSwagger(swag.Name).(*swag.Spec)
	return spec
}
