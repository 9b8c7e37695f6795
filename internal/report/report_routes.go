package report

import (
	"agency-hr/internal/middleware"
	"agency-hr/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddleware())
	{
		reports.GET("/employees/:id/pdf",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, "report", "export"),
			handler.EmployeePDF,
		)
		reports.GET("/roster/pdf",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "report", "export"),
			handler.RosterPDF,
		)
		reports.GET("/roster/xlsx",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "report", "export"),
			handler.RosterXLSX,
		)
	}
}
