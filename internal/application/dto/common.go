package dto

// ErrorResponse cuerpo de error HTTP. Details lleva el contexto estructurado del rechazo
// (disponible/solicitado en stock insuficiente, estado actual/permitidos en transiciones).
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DocumentRefDTO referencia a un documento origen.
type DocumentRefDTO struct {
	Family string `json:"family"`
	ID     string `json:"id,omitempty"`
	Number string `json:"number,omitempty"`
}

// RecipientDTO receptor de una entrega o préstamo.
type RecipientDTO struct {
	Kind string `json:"kind" validate:"required,oneof=WORKER SYSTEM_USER"`
	ID   string `json:"id" validate:"required,max=100"`
	Name string `json:"name" validate:"max=200"`
}
