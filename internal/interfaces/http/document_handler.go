package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/application/dto"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

// DocumentHandler creación, consulta y transiciones de los documentos que afectan stock (protegido).
type DocumentHandler struct {
	svc *documents.Service
	log *logger.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(svc *documents.Service, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, log: log}
}

func toLineInputs(in []dto.DocumentLineRequest) []documents.LineInput {
	out := make([]documents.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, documents.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out
}

// familyParam acepta "purchase_order" o "purchase-order".
func familyParam(c *fiber.Ctx) (entity.DocumentFamily, error) {
	raw := strings.ReplaceAll(c.Params("family"), "-", "_")
	family, ok := entity.ParseDocumentFamily(raw)
	if !ok {
		return "", domain.NewValidationError("family", "familia documental desconocida")
	}
	return family, nil
}

// respondState responde con el estado efectivo del documento recién creado o modificado.
func (h *DocumentHandler) respondState(c *fiber.Ctx, status int, family entity.DocumentFamily, id string) error {
	st, err := h.svc.GetDocument(c.UserContext(), Tenant(c), family, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(status).JSON(toStateResponse(st))
}

// Get GET /api/documents/:family/:id
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	family, err := familyParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusOK, family, c.Params("id"))
}

// Transition POST /api/documents/:family/:id/transitions/:transition
func (h *DocumentHandler) Transition(c *fiber.Ctx) error {
	family, err := familyParam(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.TransitionRequest
	if err := bindOptional(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	payload := documents.TransitionPayload{
		WarehouseID:      in.WarehouseID,
		ExpectedReturnAt: in.ExpectedReturnAt,
		Notes:            in.Notes,
	}
	for _, l := range in.Lines {
		payload.Lines = append(payload.Lines, documents.TransitionLine{LineID: l.LineID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	st, err := h.svc.Transition(c.UserContext(), Tenant(c), family, c.Params("id"), c.Params("transition"), payload)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStateResponse(st))
}

// CreateQuotation POST /api/quotations
func (h *DocumentHandler) CreateQuotation(c *fiber.Ctx) error {
	var in dto.CreateQuotationRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	q, err := h.svc.CreateQuotation(c.UserContext(), Tenant(c), documents.CreateQuotationInput{
		SupplierID: in.SupplierID,
		ValidUntil: in.ValidUntil,
		Notes:      in.Notes,
		Lines:      toLineInputs(in.Lines),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusCreated, entity.FamilyQuotation, q.ID)
}

// UpdateQuotationLines PUT /api/quotations/:id/lines
func (h *DocumentHandler) UpdateQuotationLines(c *fiber.Ctx) error {
	var in dto.UpdateLinesRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	q, err := h.svc.UpdateQuotationLines(c.UserContext(), Tenant(c), c.Params("id"), toLineInputs(in.Lines))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusOK, entity.FamilyQuotation, q.ID)
}

// ConvertQuotation POST /api/quotations/:id/purchase-order
func (h *DocumentHandler) ConvertQuotation(c *fiber.Ctx) error {
	var in dto.ConvertQuotationRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.svc.ConvertToPurchaseOrder(c.UserContext(), Tenant(c), c.Params("id"), in.WarehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusCreated, entity.FamilyPurchaseOrder, o.ID)
}

// CreatePurchaseOrder POST /api/purchase-orders
func (h *DocumentHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.svc.CreatePurchaseOrder(c.UserContext(), Tenant(c), documents.CreatePurchaseOrderInput{
		SupplierID:  in.SupplierID,
		WarehouseID: in.WarehouseID,
		Notes:       in.Notes,
		Lines:       toLineInputs(in.Lines),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusCreated, entity.FamilyPurchaseOrder, o.ID)
}

// UpdatePurchaseOrderLines PUT /api/purchase-orders/:id/lines
func (h *DocumentHandler) UpdatePurchaseOrderLines(c *fiber.Ctx) error {
	var in dto.UpdateLinesRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.svc.UpdatePurchaseOrderLines(c.UserContext(), Tenant(c), c.Params("id"), toLineInputs(in.Lines))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusOK, entity.FamilyPurchaseOrder, o.ID)
}

// CreateRequisition POST /api/requisitions
func (h *DocumentHandler) CreateRequisition(c *fiber.Ctx) error {
	var in dto.CreateRequisitionRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	r, err := h.svc.CreateRequisition(c.UserContext(), Tenant(c), documents.CreateRequisitionInput{
		WarehouseID:  in.WarehouseID,
		CostCenterID: in.CostCenterID,
		Notes:        in.Notes,
		Lines:        toLineInputs(in.Lines),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusCreated, entity.FamilyRequisition, r.ID)
}

// UpdateRequisitionLines PUT /api/requisitions/:id/lines
func (h *DocumentHandler) UpdateRequisitionLines(c *fiber.Ctx) error {
	var in dto.UpdateLinesRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	r, err := h.svc.UpdateRequisitionLines(c.UserContext(), Tenant(c), c.Params("id"), toLineInputs(in.Lines))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusOK, entity.FamilyRequisition, r.ID)
}

// CreateExitVoucher POST /api/exit-vouchers. Con requisición y sin líneas se genera por lo pendiente.
func (h *DocumentHandler) CreateExitVoucher(c *fiber.Ctx) error {
	var in dto.CreateExitVoucherRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	recipient := fromRecipientDTO(in.Recipient)
	var (
		v   *entity.ExitVoucher
		err error
	)
	if in.RequisitionID != "" && len(in.Lines) == 0 {
		v, err = h.svc.CreateFromRequisition(c.UserContext(), Tenant(c), in.RequisitionID, recipient)
	} else {
		lines := make([]documents.VoucherLineInput, 0, len(in.Lines))
		for _, l := range in.Lines {
			lines = append(lines, documents.VoucherLineInput{RequisitionLineID: l.RequisitionLineID, ProductID: l.ProductID, Quantity: l.Quantity})
		}
		v, err = h.svc.CreateExitVoucher(c.UserContext(), Tenant(c), documents.CreateExitVoucherInput{
			RequisitionID: in.RequisitionID,
			WarehouseID:   in.WarehouseID,
			Recipient:     recipient,
			Notes:         in.Notes,
			Lines:         lines,
		})
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusCreated, entity.FamilyExitVoucher, v.ID)
}

// CreateEppAssignment POST /api/epp-assignments
func (h *DocumentHandler) CreateEppAssignment(c *fiber.Ctx) error {
	var in dto.CreateEppAssignmentRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	a, err := h.svc.CreateEppAssignment(c.UserContext(), Tenant(c), documents.CreateEppAssignmentInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Recipient:   fromRecipientDTO(in.Recipient),
		Quantity:    in.Quantity,
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusCreated, entity.FamilyEppAssignment, a.ID)
}

// RegisterEquipment POST /api/equipment
func (h *DocumentHandler) RegisterEquipment(c *fiber.Ctx) error {
	var in dto.RegisterEquipmentRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	e, err := h.svc.RegisterEquipment(c.UserContext(), Tenant(c), documents.RegisterEquipmentInput{
		WarehouseID:   in.WarehouseID,
		Code:          in.Code,
		Name:          in.Name,
		SerialNumber:  in.SerialNumber,
		ControlType:   entity.ControlType(in.ControlType),
		TotalQuantity: in.TotalQuantity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEquipmentResponse(e))
}

// GetEquipment GET /api/equipment/:id
func (h *DocumentHandler) GetEquipment(c *fiber.Ctx) error {
	e, err := h.svc.GetEquipment(c.UserContext(), Tenant(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toEquipmentResponse(e))
}

// CreateEquipmentLoan POST /api/equipment-loans
func (h *DocumentHandler) CreateEquipmentLoan(c *fiber.Ctx) error {
	var in dto.CreateEquipmentLoanRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	l, err := h.svc.CreateEquipmentLoan(c.UserContext(), Tenant(c), documents.CreateEquipmentLoanInput{
		EquipmentID:      in.EquipmentID,
		Recipient:        fromRecipientDTO(in.Recipient),
		Quantity:         in.Quantity,
		ExpectedReturnAt: in.ExpectedReturnAt,
		Notes:            in.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respondState(c, fiber.StatusCreated, entity.FamilyEquipmentLoan, l.ID)
}
