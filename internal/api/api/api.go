package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"clubhub/cmd/middleware"
	"clubhub/internal/service"
)

type Routers struct {
	Service   service.Service
	JWTSecret string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	app.Use(middleware.Identity(r.JWTSecret))

	apiGroup := app.Group("/v1")

	// events and seats
	apiGroup.GET("/events", r.Service.ListEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.GET("/events/:id/seats", r.Service.SeatsRemaining)
	apiGroup.POST("/events", r.Service.CreateEvent)
	apiGroup.PUT("/events/:id", r.Service.UpdateEvent)
	apiGroup.DELETE("/events/:id", r.Service.DeleteEvent)

	// registrations
	apiGroup.POST("/events/:id/register", r.Service.Register)
	apiGroup.GET("/events/:id/registrations", r.Service.ListRegistrations)
	apiGroup.DELETE("/registrations/:id", r.Service.CancelRegistration)
	apiGroup.POST("/registrations/:id/payment", r.Service.SubmitRegistrationPayment)
	apiGroup.POST("/registrations/:id/payment/verify", r.Service.VerifyRegistrationPayment)

	// membership
	apiGroup.POST("/members", r.Service.Signup)
	apiGroup.GET("/profile", r.Service.GetMemberStatus)
	apiGroup.PUT("/profile", r.Service.UpdateProfile)
	apiGroup.POST("/profile/avatar", r.Service.UploadAvatar)
	apiGroup.POST("/profile/payment", r.Service.SubmitMembershipPayment)
	apiGroup.GET("/verify/:userID", r.Service.VerifyMember)
	apiGroup.GET("/plans", r.Service.ListFeePlans)

	// membership administration
	apiGroup.GET("/members", r.Service.ListMembers)
	apiGroup.POST("/members/:id/approve", r.Service.ApproveMember)
	apiGroup.POST("/members/:id/reject", r.Service.RejectMember)
	apiGroup.POST("/members/:id/payment/verify", r.Service.VerifyMemberPayment)
	apiGroup.PUT("/members/:id", r.Service.UpdateMember)
	apiGroup.DELETE("/members/:id", r.Service.DeleteMember)

	return app
}
