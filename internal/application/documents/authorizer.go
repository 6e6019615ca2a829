package documents

import (
	"context"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
)

// Operaciones que no son transiciones de la tabla pero pasan por el mismo control.
const (
	OpCreate      = "create"
	OpUpdateLines = "update_lines"
	OpConvert     = "convert"
)

// Authorizer colaborador externo que decide si el actor puede ejecutar una transición.
type Authorizer interface {
	CanTransition(ctx context.Context, actor domain.TenantContext, ref entity.DocumentRef, transition string) (bool, error)
}

// AllowAll autoriza todo; la legalidad del estado la sigue decidiendo la tabla.
type AllowAll struct{}

func (AllowAll) CanTransition(context.Context, domain.TenantContext, entity.DocumentRef, string) (bool, error) {
	return true, nil
}

// RoleAuthorizer autoriza por rol. Las reglas se buscan primero como "familia.transición" y luego
// como "transición"; una operación sin regla queda abierta a cualquier rol conocido.
type RoleAuthorizer struct {
	rules map[string][]string
}

// NewRoleAuthorizer reglas por defecto de la operación de bodega.
func NewRoleAuthorizer() *RoleAuthorizer {
	stock := []string{domain.RoleAdmin, domain.RoleBodeguero}
	approval := []string{domain.RoleAdmin, domain.RoleAprobador}
	return &RoleAuthorizer{rules: map[string][]string{
		workflow.Approve: approval,
		workflow.Reject:  approval,
		workflow.Void:    approval,
		workflow.Receive: stock,
		workflow.Deliver: stock,
		workflow.Return:  stock,
		workflow.Lose:    stock,
		workflow.Damage:  stock,
		workflow.Renew:   stock,

		string(entity.FamilyExitVoucher) + "." + OpCreate:   stock,
		string(entity.FamilyEppAssignment) + "." + OpCreate: stock,
		string(entity.FamilyEquipmentLoan) + "." + OpCreate: stock,
	}}
}

// Allow reemplaza los roles de una regla.
func (a *RoleAuthorizer) Allow(rule string, roles ...string) {
	a.rules[rule] = roles
}

func (a *RoleAuthorizer) CanTransition(_ context.Context, actor domain.TenantContext, ref entity.DocumentRef, transition string) (bool, error) {
	if !knownRole(actor.Role) {
		return false, nil
	}
	roles, ok := a.rules[string(ref.Family)+"."+transition]
	if !ok {
		roles, ok = a.rules[transition]
	}
	if !ok {
		return true, nil
	}
	for _, r := range roles {
		if r == actor.Role {
			return true, nil
		}
	}
	return false, nil
}

func knownRole(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleBodeguero, domain.RoleAprobador, domain.RoleSolicitante:
		return true
	}
	return false
}
