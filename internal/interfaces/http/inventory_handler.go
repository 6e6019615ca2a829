package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-minero/internal/application/dto"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, saldos y kardex (protegido).
type InventoryHandler struct {
	recorder *inventory.MovementRecorder
	queries  *inventory.QueryService
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(recorder *inventory.MovementRecorder, queries *inventory.QueryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{recorder: recorder, queries: queries, log: log}
}

// CreateMovement registra un movimiento manual (sin documento origen).
// POST /api/inventory/movements
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lines := make([]inventory.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.LineInput{
			ProductID:         l.ProductID,
			WarehouseID:       l.WarehouseID,
			OriginWarehouseID: l.OriginWarehouseID,
			DestWarehouseID:   l.DestWarehouseID,
			Quantity:          l.Quantity,
			UnitCost:          l.UnitCost,
		})
	}
	mov, err := h.recorder.Record(c.UserContext(), Tenant(c), inventory.RecordInput{
		Source:    entity.DocumentRef{Family: entity.FamilyManual},
		Direction: entity.Direction(in.Direction),
		Reason:    in.Reason,
		Lines:     lines,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// VoidMovement anula un movimiento manual con asientos de reverso.
// POST /api/inventory/movements/:id/void
func (h *InventoryHandler) VoidMovement(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	mov, err := h.recorder.Void(c.UserContext(), Tenant(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementResponse(mov))
}

// GetBalance saldo de un producto en una bodega.
// GET /api/inventory/balances?product_id=&warehouse_id=
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return writeError(c, h.log, domain.NewValidationError("product_id, warehouse_id", "son requeridos"))
	}
	b, err := h.queries.GetBalance(c.UserContext(), Tenant(c), productID, warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toBalanceResponse(b))
}

// GetKardex página del kardex con cursor opaco.
// GET /api/inventory/kardex?product_id=&warehouse_id=&from=&to=&cursor=&limit=
func (h *InventoryHandler) GetKardex(c *fiber.Ctx) error {
	q := inventory.KardexQuery{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Cursor:      c.Query("cursor"),
		Limit:       c.QueryInt("limit", 0),
	}
	var err error
	if q.From, err = queryTime(c, "from"); err != nil {
		return writeError(c, h.log, err)
	}
	if q.To, err = queryTime(c, "to"); err != nil {
		return writeError(c, h.log, err)
	}
	page, err := h.queries.GetKardex(c.UserContext(), Tenant(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toKardexPageResponse(page))
}

// GetReplenishment lista de reposición de una bodega.
// GET /api/inventory/replenishment?warehouse_id=
func (h *InventoryHandler) GetReplenishment(c *fiber.Ctx) error {
	list, err := h.queries.Replenishment(c.UserContext(), Tenant(c), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:     s.ProductID,
			SKU:           s.SKU,
			ProductName:   s.ProductName,
			CurrentStock:  s.CurrentStock,
			MinimumStock:  s.MinimumStock,
			IdealStock:    s.IdealStock,
			SuggestedQty:  s.SuggestedQty,
			AverageCost:   s.AverageCost,
			EstimatedCost: s.EstimatedCost,
			Priority:      s.Priority,
		})
	}
	return c.JSON(out)
}

// queryTime acepta RFC 3339 o fecha simple (2006-01-02).
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.NewValidationError(key, "fecha inválida")
	}
	return &t, nil
}
