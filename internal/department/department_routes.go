package department

import (
	"agency-hr/internal/middleware"
	"agency-hr/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService rbac.Service,
) {
	departments := r.Group("/departments")

	departments.Use(middleware.AuthMiddleware())

	{
		departments.GET("", middleware.RBACAuthorize(rbacService, "department", "read"), h.GetAll)
		departments.POST("", middleware.RBACAuthorize(rbacService, "department", "write"), h.Create)
		departments.GET("/:id", middleware.RBACAuthorize(rbacService, "department", "read"), h.GetById)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, "department", "write"), h.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, "department", "write"), h.Delete)

		departments.GET("/:id/managers", middleware.RBACAuthorize(rbacService, "department", "read"), h.ListManagers)
		departments.POST("/:id/managers", middleware.RBACAuthorize(rbacService, "department", "write"), h.AssignManager)
		departments.DELETE("/:id/managers/:employeeID", middleware.RBACAuthorize(rbacService, "department", "write"), h.UnassignManager)
	}
}
