package api

import (
	stdhttp "net/http"

	intconfig "travelwizards/internal/config"
	"travelwizards/internal/domain"
	h "travelwizards/internal/http/handlers"
	"travelwizards/internal/http/middleware"
	"travelwizards/internal/utils"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, hd h.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogWarn("", "http", "init", "failed to set trusted proxies: "+err.Error())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	api.Use(middleware.Session([]byte(env.JWTSecret)))
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", h.Routes)
		api.GET("/me", middleware.RequireRoles(), hd.Me)

		// Search
		api.GET("/locations", hd.ListLocations)
		api.GET("/itineraries", hd.FindItineraries)

		// Reservations (travel agents)
		reservations := api.Group("/reservations", middleware.RequireRoles(domain.RoleTravelAgent))
		reservations.GET("", hd.ListReservations)
		reservations.POST("", hd.Reserve)
		reservations.POST("/cancel", hd.CancelReservation)

		bookings := api.Group("/bookings", middleware.RequireRoles())
		bookings.GET("/:id/e-ticket", hd.GetETicketPDF)
		bookings.GET("/:id/invoice", hd.GetInvoicePDF)

		// Company catalogue
		catalog := api.Group("/services", middleware.RequireRoles(domain.RoleCompany))
		catalog.GET("", hd.ListServices)
		catalog.POST("", hd.AddService)
		catalog.POST("/delete", hd.DeleteServices)
		catalog.PUT("/:id/price", hd.UpdatePrice)
		catalog.DELETE("/:id", hd.DeleteService)

		// Boarding desk
		boarding := api.Group("/boarding", middleware.RequireRoles(domain.RoleBoardingAgent))
		boarding.GET("/trips", hd.UpcomingTrips)
		boarding.GET("/passengers", hd.Passengers)
		boarding.PUT("/passengers/:id/toggle", hd.ToggleBoarded)
	}

	h.SetRouter(r)
	return r
}
