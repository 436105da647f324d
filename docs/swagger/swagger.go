// Package swagger DwellPort API documentation
package swagger

// Swagger documentation info
// @title DwellPort API
// @version 1.0
// @description Central API documentation - For all DwellPort services
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.dwellport.com/support
// @contact.email support@dwellport.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Auth Service Endpoints
// @tag.name auth
// @tag.description Authentication, portal sessions and password management
// @tag.name security
// @tag.description Account lockout administration

// Portal Service Endpoints
// @tag.name properties
// @tag.description Property and unit management
// @tag.name applications
// @tag.description Rental application submission and review
// @tag.name payments
// @tag.description Rent payment bookkeeping
// @tag.name service-requests
// @tag.description Tenant maintenance requests
// @tag.name announcements
// @tag.description Community announcements

// Notification Service Endpoints
// @tag.name notifications
// @tag.description In-portal notification feed
// @tag.name email
// @tag.description Outbound email delivery
// @tag.name websocket
// @tag.description Real-time push
