package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/application/usecase"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC      *usecase.CompanyUseCase
	WarehouseUC    *usecase.WarehouseUseCase
	ProductUC      *usecase.ProductUseCase
	Recorder       *inventory.MovementRecorder
	Queries        *inventory.QueryService
	Documents      *documents.Service
	MetricsHandler nethttp.Handler // opcional; expone /metrics
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(requestid.New())

	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Alta de empresa (público): es el punto de entrada de un tenant nuevo.
	companyHandler := NewCompanyHandler(deps.CompanyUC, log)
	api.Post("/companies", RequestLogger(log), companyHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequestLogger(log))
	protected.Get("/companies/current", companyHandler.Current)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, log)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, log)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Recorder, deps.Queries, log)
	manual := RequireRole(domain.RoleAdmin, domain.RoleBodeguero)
	invGroup.Post("/movements", manual, inventoryHandler.CreateMovement)
	invGroup.Post("/movements/:id/void", manual, inventoryHandler.VoidMovement)
	invGroup.Get("/balances", inventoryHandler.GetBalance)
	invGroup.Get("/kardex", inventoryHandler.GetKardex)
	invGroup.Get("/replenishment", inventoryHandler.GetReplenishment)

	docHandler := NewDocumentHandler(deps.Documents, log)
	protected.Post("/quotations", docHandler.CreateQuotation)
	protected.Put("/quotations/:id/lines", docHandler.UpdateQuotationLines)
	protected.Post("/quotations/:id/purchase-order", docHandler.ConvertQuotation)
	protected.Post("/purchase-orders", docHandler.CreatePurchaseOrder)
	protected.Put("/purchase-orders/:id/lines", docHandler.UpdatePurchaseOrderLines)
	protected.Post("/requisitions", docHandler.CreateRequisition)
	protected.Put("/requisitions/:id/lines", docHandler.UpdateRequisitionLines)
	protected.Post("/exit-vouchers", docHandler.CreateExitVoucher)
	protected.Post("/epp-assignments", docHandler.CreateEppAssignment)
	protected.Post("/equipment", docHandler.RegisterEquipment)
	protected.Get("/equipment/:id", docHandler.GetEquipment)
	protected.Post("/equipment-loans", docHandler.CreateEquipmentLoan)

	docs := protected.Group("/documents")
	docs.Get("/:family/:id", docHandler.Get)
	docs.Post("/:family/:id/transitions/:transition", docHandler.Transition)
}
