package auth

import (
	"fmt"

	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// Actor usuario que invoca una operación, tal como lo entrega el colaborador de autenticación.
type Actor struct {
	UserID string
	Role   string
}

// Operaciones públicas del motor sujetas a lista de roles.
const (
	OpItemManage         = "item.manage"
	OpItemRead           = "item.read"
	OpMovementApply      = "movement.apply"
	OpMovementCorrection = "movement.correction"
	OpLedgerRead         = "ledger.read"

	OpTransferCreate  = "transfer.create"
	OpTransferApprove = "transfer.approve"
	OpTransferFulfil  = "transfer.fulfil"

	OpIssueCreate  = "issue.create"
	OpIssueApprove = "issue.approve"
	OpIssueFulfil  = "issue.fulfil"

	OpProcurementCreate    = "procurement.create"
	OpProcurementApprove   = "procurement.approve"
	OpProcurementFulfil    = "procurement.fulfil"
	OpProcurementEditLines = "procurement.edit_lines"

	OpRequestRead = "request.read"
)

func roles(extra ...[]string) []string {
	out := []string{}
	for _, e := range extra {
		out = append(out, e...)
	}
	return out
}

var (
	managers = []string{entity.RoleAdmin, entity.RoleStoreManager}
	readers  = roles(managers, entity.ModuleRoles, []string{entity.RoleProcurementOfficer, entity.RoleAccountant})
)

// policy lista de roles permitidos por operación.
var policy = map[string][]string{
	OpItemManage:         {entity.RoleAdmin},
	OpItemRead:           readers,
	OpMovementApply:      roles(managers, entity.ModuleRoles),
	OpMovementCorrection: {entity.RoleAdmin},
	OpLedgerRead:         readers,

	OpTransferCreate:  roles(managers, entity.ModuleRoles),
	OpTransferApprove: managers,
	OpTransferFulfil:  managers,

	OpIssueCreate:  roles(managers, entity.ModuleRoles),
	OpIssueApprove: managers,
	OpIssueFulfil:  managers,

	OpProcurementCreate:    roles(managers, []string{entity.RoleProcurementOfficer}),
	OpProcurementApprove:   {entity.RoleAdmin},
	OpProcurementFulfil:    managers,
	OpProcurementEditLines: roles(managers, []string{entity.RoleProcurementOfficer}),

	OpRequestRead: readers,
}

// Authorize precondición de toda operación pública: actor presente y rol en la lista de la operación.
// Sin actor -> domain.ErrUnauthorized; rol fuera de la lista -> domain.ErrForbidden.
func Authorize(actor Actor, operation string) error {
	if actor.UserID == "" || actor.Role == "" {
		return domain.ErrUnauthorized
	}
	for _, r := range policy[operation] {
		if r == actor.Role {
			return nil
		}
	}
	return fmt.Errorf("%w: rol %q no puede %s", domain.ErrForbidden, actor.Role, operation)
}

// AllowedRoles roles permitidos para una operación (para middlewares de transporte).
func AllowedRoles(operation string) []string {
	return append([]string(nil), policy[operation]...)
}
