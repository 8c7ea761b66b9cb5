package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"workeradmin/internal/handlers"
	"workeradmin/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	gate *middleware.Gate,
	authHandler *handlers.AuthHandler,
	workerHandler *handlers.WorkerHandler,
	customerHandler *handlers.CustomerHandler,
	reportHandler *handlers.ReportHandler,
	ping func(context.Context) error,
) *gin.Engine {

	// ---- open
	r.GET("/politicy", authHandler.Politicy)
	r.POST("/login/verify", authHandler.VerifyCode)
	r.GET("/deleteByEmail/:id", authHandler.DeleteByEmail)
	r.GET("/healthz", handlers.Healthz(ping))

	// ---- public only
	public := r.Group("", gate.OnlyPublic())
	{
		public.GET("/", authHandler.Home)
		public.GET("/login", authHandler.LoginPage)
		public.POST("/login", authHandler.Login)
	}

	// ---- logged in
	dash := r.Group("/dashboard", gate.OnlyLogged())
	{
		dash.GET("", workerHandler.Dashboard)
		dash.GET("/customers", customerHandler.Customers)
		dash.POST("/customers", customerHandler.Filter)
		dash.GET("/profile", workerHandler.Profile)
		dash.GET("/profile/export", workerHandler.ExportProfile)
		dash.GET("/deleteWorker", workerHandler.DeleteSelf)
		dash.GET("/changePrivacity", workerHandler.ChangePrivacity)
		dash.POST("/updateWorker", workerHandler.UpdateSelf)
		dash.GET("/logout", workerHandler.Logout)

		// WORKERS (admin)
		admin := dash.Group("", middleware.RequireAdmin())
		{
			admin.GET("/workers", workerHandler.Workers)
			admin.POST("/workers", workerHandler.FilterWorkers)
			admin.POST("/registerWorker", workerHandler.Register)
			admin.GET("/updateAcceso/:id/:value", workerHandler.UpdateAccess)
			admin.GET("/updateAdministrador/:id/:value", workerHandler.UpdateAdmin)
		}
	}

	// ---- analytics
	storage := r.Group("/storage", gate.OnlyLogged())
	{
		storage.GET("/ageCustomersExited", reportHandler.AgeCustomersExited)
		storage.GET("/cardTypes", reportHandler.CardTypes)
		storage.GET("/customersByCountry", reportHandler.CustomersByCountry)
		storage.GET("/generalInformation", reportHandler.GeneralInformation)
	}

	return r
}
