package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida admitidas.
const (
	UnitKG    = "KG"
	UnitTon   = "TON"
	UnitLiter = "LITER"
	UnitBag   = "BAG"
	UnitBird  = "BIRD"
)

// Módulos de la granja que pueden seguir un ítem.
const (
	ModuleStore    = "STORE"
	ModuleFeedMill = "FEED_MILL"
	ModulePoultry  = "POULTRY"
	ModuleBSF      = "BSF"
	ModuleCatfish  = "CATFISH"
)

// ValidUnit indica si la unidad es una de las soportadas.
func ValidUnit(u string) bool {
	switch u {
	case UnitKG, UnitTon, UnitLiter, UnitBag, UnitBird:
		return true
	}
	return false
}

// ValidModule indica si el módulo existe.
func ValidModule(m string) bool {
	switch m {
	case ModuleStore, ModuleFeedMill, ModulePoultry, ModuleBSF, ModuleCatfish:
		return true
	}
	return false
}

// Item materia prima o producto terminado que se sigue en inventario.
// Unit y UnitSizeKg quedan fijos una vez que algún movimiento referencia el ítem.
type Item struct {
	ID          string
	Name        string
	Description string
	Unit        string
	UnitSizeKg  decimal.NullDecimal // kg por bulto, solo para UnitBag
	Modules     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TrackedBy indica si el módulo sigue este ítem.
func (i *Item) TrackedBy(module string) bool {
	for _, m := range i.Modules {
		if m == module {
			return true
		}
	}
	return false
}
