package domain

// Roles reconocidos por el núcleo. La autorización fina la decide el colaborador externo.
const (
	RoleAdmin       = "admin"
	RoleBodeguero   = "bodeguero"
	RoleAprobador   = "aprobador"
	RoleSolicitante = "solicitante"
)

// TenantContext empresa que actúa y, para roles restringidos, la única bodega que puede tocar.
// Se pasa explícitamente a cada operación del libro y de los flujos documentales.
type TenantContext struct {
	CompanyID   string
	UserID      string
	Role        string
	WarehouseID string // vacío = sin restricción
}

// Validate verifica que el contexto identifique una empresa y un actor.
func (t TenantContext) Validate() error {
	if t.CompanyID == "" {
		return ErrUnauthorized
	}
	if t.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}

// Restricted indica si el actor está limitado a una bodega.
func (t TenantContext) Restricted() bool {
	return t.WarehouseID != ""
}

// CanAccessWarehouse aplica la restricción de bodega del actor.
func (t TenantContext) CanAccessWarehouse(warehouseID string) bool {
	return !t.Restricted() || t.WarehouseID == warehouseID
}

// IsElevated roles que pueden forzar ajustes negativos.
func (t TenantContext) IsElevated() bool {
	return t.Role == RoleAdmin
}

// Owns verifica que un recurso pertenezca a la empresa del contexto.
func (t TenantContext) Owns(entity, id, companyID string) error {
	if companyID != t.CompanyID {
		return &CrossTenantError{Entity: entity, ID: id}
	}
	return nil
}
