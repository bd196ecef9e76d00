package entity

// Roles válidos de un operador de la tienda.
const (
	RoleAdmin     = "admin"
	RoleCajero    = "cajero"
	RoleBodeguero = "bodeguero"
)

// Operator usuario autenticado que ejecuta una operación.
// Las cuentas viven fuera de este servicio; el token JWT trae estos datos.
type Operator struct {
	UserID   string
	Username string
	Role     string // admin, cajero, bodeguero
}

// Actor identificador que se graba en created_by.
func (o Operator) Actor() string {
	if o.Username != "" {
		return o.Username
	}
	return o.UserID
}

// HasRole indica si el operador tiene alguno de los roles dados.
func (o Operator) HasRole(roles ...string) bool {
	for _, r := range roles {
		if o.Role == r {
			return true
		}
	}
	return false
}
