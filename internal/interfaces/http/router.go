package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/medtrack-api/internal/application/auth"
	"github.com/jhoicas/medtrack-api/internal/application/logs"
	"github.com/jhoicas/medtrack-api/internal/application/medicine"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.UseCase
	MedicineUC *medicine.UseCase
	LogsUC     *logs.UseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público, salvo /me)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/request-otp", authHandler.RequestOTP)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password/:token", authHandler.ResetPassword)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Medicines (protegido)
	medicines := protected.Group("/medicines")
	medicineHandler := NewMedicineHandler(deps.MedicineUC)
	medicines.Post("/", medicineHandler.Create)
	medicines.Get("/", medicineHandler.List)
	medicines.Get("/:id", medicineHandler.GetByID)
	medicines.Patch("/:id", medicineHandler.Update)
	medicines.Delete("/:id", medicineHandler.Delete)

	// Inventory logs (protegido, solo lectura)
	logsGroup := protected.Group("/inventory-logs")
	logHandler := NewLogHandler(deps.LogsUC)
	logsGroup.Get("/", logHandler.List)
}
