package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Formato JSONB de líneas y eventos de documento. Las claves son estables aunque cambien los structs.

type quotationLineJSON struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderLineJSON struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

type receiptLineJSON struct {
	OrderLineID string          `json:"order_line_id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

type receiptJSON struct {
	ID          string            `json:"id"`
	MovementID  string            `json:"movement_id"`
	WarehouseID string            `json:"warehouse_id"`
	ReceivedBy  string            `json:"received_by"`
	ReceivedAt  time.Time         `json:"received_at"`
	Voided      bool              `json:"voided"`
	Lines       []receiptLineJSON `json:"lines"`
}

type requisitionLineJSON struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	ApprovedQuantity  *decimal.Decimal `json:"approved_quantity,omitempty"`
	DeliveredQuantity decimal.Decimal  `json:"delivered_quantity"`
}

type voucherLineJSON struct {
	ID                string          `json:"id"`
	RequisitionLineID string          `json:"requisition_line_id,omitempty"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	DeliveredQuantity decimal.Decimal `json:"delivered_quantity"`
}

type deliveryLineJSON struct {
	VoucherLineID string          `json:"voucher_line_id"`
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type deliveryJSON struct {
	ID          string             `json:"id"`
	MovementID  string             `json:"movement_id"`
	DeliveredBy string             `json:"delivered_by"`
	DeliveredAt time.Time          `json:"delivered_at"`
	Voided      bool               `json:"voided"`
	Lines       []deliveryLineJSON `json:"lines"`
}

func marshalJSONB(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codificar jsonb: %w", err)
	}
	return b, nil
}

func unmarshalJSONB(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decodificar jsonb: %w", err)
	}
	return nil
}

func quotationLinesJSON(lines []entity.QuotationLine) ([]byte, error) {
	out := make([]quotationLineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, quotationLineJSON(l))
	}
	return marshalJSONB(out)
}

func quotationLinesFrom(raw []byte) ([]entity.QuotationLine, error) {
	var in []quotationLineJSON
	if err := unmarshalJSONB(raw, &in); err != nil {
		return nil, err
	}
	out := make([]entity.QuotationLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.QuotationLine(l))
	}
	return out, nil
}

func orderLinesJSON(lines []entity.PurchaseOrderLine) ([]byte, error) {
	out := make([]orderLineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, orderLineJSON(l))
	}
	return marshalJSONB(out)
}

func orderLinesFrom(raw []byte) ([]entity.PurchaseOrderLine, error) {
	var in []orderLineJSON
	if err := unmarshalJSONB(raw, &in); err != nil {
		return nil, err
	}
	out := make([]entity.PurchaseOrderLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.PurchaseOrderLine(l))
	}
	return out, nil
}

func receiptsJSON(receipts []entity.PurchaseReceipt) ([]byte, error) {
	out := make([]receiptJSON, 0, len(receipts))
	for _, r := range receipts {
		lines := make([]receiptLineJSON, 0, len(r.Lines))
		for _, l := range r.Lines {
			lines = append(lines, receiptLineJSON(l))
		}
		out = append(out, receiptJSON{
			ID: r.ID, MovementID: r.MovementID, WarehouseID: r.WarehouseID,
			ReceivedBy: r.ReceivedBy, ReceivedAt: r.ReceivedAt, Voided: r.Voided, Lines: lines,
		})
	}
	return marshalJSONB(out)
}

func receiptsFrom(raw []byte) ([]entity.PurchaseReceipt, error) {
	var in []receiptJSON
	if err := unmarshalJSONB(raw, &in); err != nil {
		return nil, err
	}
	out := make([]entity.PurchaseReceipt, 0, len(in))
	for _, r := range in {
		lines := make([]entity.PurchaseReceiptLine, 0, len(r.Lines))
		for _, l := range r.Lines {
			lines = append(lines, entity.PurchaseReceiptLine(l))
		}
		out = append(out, entity.PurchaseReceipt{
			ID: r.ID, MovementID: r.MovementID, WarehouseID: r.WarehouseID,
			ReceivedBy: r.ReceivedBy, ReceivedAt: r.ReceivedAt, Voided: r.Voided, Lines: lines,
		})
	}
	return out, nil
}

func requisitionLinesJSON(lines []entity.RequisitionLine) ([]byte, error) {
	out := make([]requisitionLineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, requisitionLineJSON(l))
	}
	return marshalJSONB(out)
}

func requisitionLinesFrom(raw []byte) ([]entity.RequisitionLine, error) {
	var in []requisitionLineJSON
	if err := unmarshalJSONB(raw, &in); err != nil {
		return nil, err
	}
	out := make([]entity.RequisitionLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.RequisitionLine(l))
	}
	return out, nil
}

func voucherLinesJSON(lines []entity.ExitVoucherLine) ([]byte, error) {
	out := make([]voucherLineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, voucherLineJSON(l))
	}
	return marshalJSONB(out)
}

func voucherLinesFrom(raw []byte) ([]entity.ExitVoucherLine, error) {
	var in []voucherLineJSON
	if err := unmarshalJSONB(raw, &in); err != nil {
		return nil, err
	}
	out := make([]entity.ExitVoucherLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.ExitVoucherLine(l))
	}
	return out, nil
}

func deliveriesJSON(deliveries []entity.VoucherDelivery) ([]byte, error) {
	out := make([]deliveryJSON, 0, len(deliveries))
	for _, d := range deliveries {
		lines := make([]deliveryLineJSON, 0, len(d.Lines))
		for _, l := range d.Lines {
			lines = append(lines, deliveryLineJSON(l))
		}
		out = append(out, deliveryJSON{
			ID: d.ID, MovementID: d.MovementID, DeliveredBy: d.DeliveredBy,
			DeliveredAt: d.DeliveredAt, Voided: d.Voided, Lines: lines,
		})
	}
	return marshalJSONB(out)
}

func deliveriesFrom(raw []byte) ([]entity.VoucherDelivery, error) {
	var in []deliveryJSON
	if err := unmarshalJSONB(raw, &in); err != nil {
		return nil, err
	}
	out := make([]entity.VoucherDelivery, 0, len(in))
	for _, d := range in {
		lines := make([]entity.VoucherDeliveryLine, 0, len(d.Lines))
		for _, l := range d.Lines {
			lines = append(lines, entity.VoucherDeliveryLine(l))
		}
		out = append(out, entity.VoucherDelivery{
			ID: d.ID, MovementID: d.MovementID, DeliveredBy: d.DeliveredBy,
			DeliveredAt: d.DeliveredAt, Voided: d.Voided, Lines: lines,
		})
	}
	return out, nil
}
