package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/acadsync/acadsync-api/internal/middleware"
	"github.com/acadsync/acadsync-api/internal/models"
	"github.com/acadsync/acadsync-api/internal/service"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	Auth          *service.AuthService
	Timetables    *service.TimetableService
	Leaves        *service.LeaveService
	Rooms         *service.RoomService
	Faculty       *service.FacultyService
	Departments   *service.DepartmentService
	Courses       *service.CourseService
	Batches       *service.BatchService
	Assignments   *service.CourseAssignmentService
	Notifications *service.NotificationService
	Metrics       *service.MetricsService
}

// RegisterRoutes mounts every API route group onto the engine.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth)
	timetableHandler := NewTimetableHandler(deps.Timetables)
	leaveHandler := NewLeaveHandler(deps.Leaves)
	roomHandler := NewRoomHandler(deps.Rooms)
	facultyHandler := NewFacultyHandler(deps.Faculty)
	departmentHandler := NewDepartmentHandler(deps.Departments)
	courseHandler := NewCourseHandler(deps.Courses)
	batchHandler := NewBatchHandler(deps.Batches)
	assignmentHandler := NewCourseAssignmentHandler(deps.Assignments)
	notificationHandler := NewNotificationHandler(deps.Notifications)

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", middleware.JWT(deps.Auth), authHandler.Refresh)
		auth.GET("/me", middleware.JWT(deps.Auth), authHandler.Me)
	}

	authed := r.Group("", middleware.JWT(deps.Auth))
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)

	departments := authed.Group("/departments")
	{
		departments.GET("", departmentHandler.List)
		departments.GET("/:id", departmentHandler.Get)
		departments.POST("", adminOnly, departmentHandler.Create)
		departments.PUT("/:id", adminOnly, departmentHandler.Update)
	}

	courses := authed.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.GET("/:id", courseHandler.Get)
		courses.POST("", adminOnly, courseHandler.Create)
		courses.PUT("/:id", adminOnly, courseHandler.Update)
		courses.DELETE("/:id", adminOnly, courseHandler.Delete)
	}

	rooms := authed.Group("/rooms")
	{
		rooms.GET("", roomHandler.List)
		rooms.GET("/:id", roomHandler.Get)
		rooms.POST("", adminOnly, roomHandler.Create)
		rooms.PUT("/:id", adminOnly, roomHandler.Update)
		rooms.DELETE("/:id", adminOnly, roomHandler.Delete)
	}

	batches := authed.Group("/batches")
	{
		batches.GET("", batchHandler.List)
		batches.GET("/:id", batchHandler.Get)
		batches.POST("", adminOnly, batchHandler.Create)
		batches.PUT("/:id", adminOnly, batchHandler.Update)
		batches.DELETE("/:id", adminOnly, batchHandler.Delete)
	}

	faculty := authed.Group("/faculty")
	{
		faculty.GET("", facultyHandler.List)
		faculty.GET("/:id", facultyHandler.Get)
		faculty.POST("", adminOnly, facultyHandler.Create)
		faculty.PUT("/:id", adminOnly, facultyHandler.Update)
		faculty.DELETE("/:id", adminOnly, facultyHandler.Delete)
	}

	assignments := authed.Group("/course-assignments")
	{
		assignments.GET("", assignmentHandler.List)
		assignments.GET("/:id", assignmentHandler.Get)
		assignments.POST("", adminOnly, assignmentHandler.Create)
		assignments.DELETE("/:id", adminOnly, assignmentHandler.Delete)
	}

	leaves := authed.Group("/leaves")
	{
		leaves.GET("", staff, leaveHandler.List)
		leaves.GET("/:id", staff, leaveHandler.Get)
		leaves.POST("", staff, leaveHandler.Create)
		leaves.POST("/:id/approve", adminOnly, leaveHandler.Approve)
		leaves.POST("/:id/reject", adminOnly, leaveHandler.Reject)
	}

	timetable := authed.Group("/timetable")
	{
		timetable.POST("/generate", adminOnly, timetableHandler.Generate)
		timetable.POST("/regenerate", adminOnly, timetableHandler.Regenerate)
		timetable.GET("/runs", timetableHandler.ListRuns)
		timetable.GET("/runs/:id", timetableHandler.GetRun)
		timetable.GET("/runs/:id/placements", timetableHandler.Placements)
		timetable.POST("/runs/:id/publish", adminOnly, timetableHandler.Publish)
		timetable.GET("/active", timetableHandler.Active)
		timetable.GET("/runs/:id/export.pdf", timetableHandler.ExportPDF)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}
}
