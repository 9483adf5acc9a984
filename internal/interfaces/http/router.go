package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-do/registro-api/internal/application/auth"
	"github.com/onda-do/registro-api/internal/application/catalog"
	"github.com/onda-do/registro-api/internal/application/fiscal"
	"github.com/onda-do/registro-api/internal/application/pricing"
	"github.com/onda-do/registro-api/internal/application/workflow"
	"github.com/onda-do/registro-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ServiceUC  *catalog.ServiceUseCase
	PricingUC  *pricing.UseCase
	FiscalUC   *fiscal.UseCase
	WorkflowUC *workflow.UseCase
	JWTSecret  string

	// FiscalAlertMargin: números restantes bajo los cuales un rango NCF se
	// reporta próximo a agotarse.
	FiscalAlertMargin int
}

// Router registra las rutas de la API. Cada etapa del flujo está restringida
// al rol que la ejecuta: revisor (validación, devoluciones), cajero (caja),
// registrador (asentamiento, certificado, entrega), admin (catálogo, tarifas,
// rangos NCF, usuarios).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público; el registro de funcionarios es de admin)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Post("/auth/register", RequireRole(), authHandler.Register)

	// Catálogo de trámites
	services := protected.Group("/services")
	serviceHandler := NewServiceHandler(deps.ServiceUC)
	services.Get("/", serviceHandler.List)
	services.Get("/:id", serviceHandler.GetByID)
	services.Post("/", RequireRole(), serviceHandler.Create)
	services.Patch("/:id/active", RequireRole(), serviceHandler.SetActive)

	// Tarifas
	pricingHandler := NewPricingHandler(deps.PricingUC)
	services.Get("/:id/price", pricingHandler.GetPrice)
	services.Get("/:id/price/history", pricingHandler.History)
	services.Put("/:id/price", RequireRole(), pricingHandler.SetPrice)

	// Rangos NCF y comprobantes
	fiscalGroup := protected.Group("/fiscal")
	fiscalHandler := NewFiscalHandler(deps.FiscalUC, deps.FiscalAlertMargin)
	fiscalGroup.Post("/ranges", RequireRole(), fiscalHandler.CreateRange)
	fiscalGroup.Get("/ranges", RequireRole(), fiscalHandler.ListRanges)
	fiscalGroup.Post("/receipts", RequireRole(entity.RoleCajero), fiscalHandler.Allocate)
	fiscalGroup.Get("/receipts/:id", fiscalHandler.GetReceipt)
	fiscalGroup.Post("/receipts/:id/annul", RequireRole(), fiscalHandler.Annul)

	// Solicitudes y su flujo
	requests := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.WorkflowUC)
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Get("/:id/history", requestHandler.History)

	requests.Post("/:id/validate", RequireRole(entity.RoleRevisor), requestHandler.Validate)
	requests.Post("/:id/reject", RequireRole(entity.RoleRevisor), requestHandler.Reject)
	requests.Post("/:id/return", RequireRole(entity.RoleRevisor, entity.RoleRegistrador), requestHandler.Return)
	requests.Post("/:id/resubmit", RequireRole(entity.RoleRevisor), requestHandler.Resubmit)
	requests.Post("/:id/pay", RequireRole(entity.RoleCajero), requestHandler.Pay)
	requests.Post("/:id/register", RequireRole(entity.RoleRegistrador), requestHandler.Register)
	requests.Post("/:id/certificate", RequireRole(entity.RoleRegistrador), requestHandler.IssueCertificate)
	requests.Post("/:id/signed", RequireRole(entity.RoleRegistrador), requestHandler.AttachSigned)
	requests.Post("/:id/deliver", RequireRole(entity.RoleRegistrador), requestHandler.Deliver)
}
