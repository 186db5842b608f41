package entity

// Roles que entrega el colaborador de autenticación (claim "role" del JWT).
const (
	RoleAdmin              = "admin"
	RoleStoreManager       = "store_manager"
	RoleProcurementOfficer = "procurement_officer"
	RoleFeedMillManager    = "feed_mill_manager"
	RolePoultryManager     = "poultry_manager"
	RoleBSFManager         = "bsf_manager"
	RoleCatfishManager     = "catfish_manager"
	RoleAccountant         = "accountant"
)

// ModuleRoles jefes de módulo: piden traslados y despachos y registran producción.
var ModuleRoles = []string{RoleFeedMillManager, RolePoultryManager, RoleBSFManager, RoleCatfishManager}
