package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly-api/docs"
	v1 "github.com/gatherly/gatherly-api/internal/api/handler/v1"
	"github.com/gatherly/gatherly-api/internal/api/middleware"
	"github.com/gatherly/gatherly-api/internal/config"
	"github.com/gatherly/gatherly-api/internal/domain"
	"github.com/gatherly/gatherly-api/internal/processor"
	"github.com/gatherly/gatherly-api/internal/repository"
	"github.com/gatherly/gatherly-api/internal/repository/dao"
	"github.com/gatherly/gatherly-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	attendanceHandler := s.initAttendanceHandler(db)
	paymentHandler := s.initPaymentHandler(db)
	dashboardHandler := s.initDashboardHandler(db)
	s.MountHandlers(authHandler, attendanceHandler, paymentHandler, dashboardHandler)

	return s
}

func (s *Server) buildProcessors() *processor.Registry {
	registry := processor.NewRegistry()
	registry.Register(domain.ProviderStripe, processor.NewStripeProcessor(s.Config.Stripe.SecretKey))
	registry.Register(domain.ProviderBankTransfer, processor.NewOfflineProcessor("bank"))
	registry.Register(domain.ProviderCash, processor.NewOfflineProcessor("cash"))
	registry.Register(domain.ProviderOther, processor.NewOfflineProcessor("other"))

	return registry
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initAttendanceHandler(db *gorm.DB) *v1.AttendanceHandler {
	attendanceRepo := repository.NewAttendanceRepository(dao.NewAttendanceDAO(db))
	svc := service.NewAttendanceService(attendanceRepo)

	paymentRepo := repository.NewPaymentRepository(dao.NewPaymentDAO(db))
	paymentSvc := service.NewPaymentService(paymentRepo, s.buildProcessors())
	lifecycleSvc := service.NewLifecycleService(svc, paymentSvc, paymentRepo)

	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewAttendanceHandler(svc, lifecycleSvc, uSvc)

	return handler
}

func (s *Server) initPaymentHandler(db *gorm.DB) *v1.PaymentHandler {
	paymentDAO := dao.NewPaymentDAO(db)
	repo := repository.NewPaymentRepository(paymentDAO)
	svc := service.NewPaymentService(repo, s.buildProcessors())
	handler := v1.NewPaymentHandler(svc)

	return handler
}

func (s *Server) initDashboardHandler(db *gorm.DB) *v1.DashboardHandler {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	paymentRepo := repository.NewPaymentRepository(dao.NewPaymentDAO(db))
	svc := service.NewDashboardService(userRepo, eventRepo, paymentRepo)
	handler := v1.NewDashboardHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, attendanceHandler *v1.AttendanceHandler, paymentHandler *v1.PaymentHandler, dashboardHandler *v1.DashboardHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	attendances := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		attendances.POST("/events/:eventID/attendances", attendanceHandler.HandleRegister)
		attendances.POST("/events/:eventID/attendances/check-in", attendanceHandler.HandleCheckIn)
		attendances.POST("/events/:eventID/attendances/check-out", attendanceHandler.HandleCheckOut)
		attendances.POST("/events/:eventID/attendances/cancel", attendanceHandler.HandleCancel)
		attendances.POST("/events/:eventID/attendances/cancel-with-refund", attendanceHandler.HandleCancelWithRefund)
		attendances.GET("/events/:eventID/attendances/status", attendanceHandler.HandleStatus)
		attendances.GET("/attendances", attendanceHandler.HandleList)
		attendances.PATCH("/attendances/:attendanceID", attendanceHandler.HandleForceUpdate)
	}

	payments := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		payments.POST("/payments", paymentHandler.HandleCreate)
		payments.GET("/payments", paymentHandler.HandleList)
		payments.GET("/payments/stats", paymentHandler.HandleStats)
		payments.POST("/payments/:paymentID/process", paymentHandler.HandleProcess)
		payments.POST("/payments/:paymentID/refund", paymentHandler.HandleRefund)
		payments.POST("/payments/:paymentID/cancel", paymentHandler.HandleCancel)
	}

	dashboard := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		dashboard.GET("/dashboard/stats", dashboardHandler.HandleStats)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Gatherly API"
	docs.SwaggerInfo.Description = "Attendance and payment lifecycle API for event management."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
