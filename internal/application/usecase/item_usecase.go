package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para ítems. Cantidades y costos se manejan vía movimientos.
type ItemUseCase struct {
	txRunner inventory.TxRunner
	repo     repository.ItemRepository
	sink     audit.Sink
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(txRunner inventory.TxRunner, repo repository.ItemRepository, sink audit.Sink) *ItemUseCase {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &ItemUseCase{txRunner: txRunner, repo: repo, sink: sink}
}

// Create crea un nuevo ítem.
func (uc *ItemUseCase) Create(ctx context.Context, actor auth.Actor, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if err := auth.Authorize(actor, auth.OpItemManage); err != nil {
		return nil, err
	}
	if err := validateItem(in.Unit, in.UnitSizeKg, in.Modules); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	item := &entity.Item{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Unit:        in.Unit,
		Modules:     in.Modules,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.UnitSizeKg != nil {
		item.UnitSizeKg = decimal.NewNullDecimal(*in.UnitSizeKg)
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.emit(ctx, actor, audit.ActionItemCreated, item, "ítem creado")
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, actor auth.Actor, id string) (*dto.ItemResponse, error) {
	if err := auth.Authorize(actor, auth.OpItemRead); err != nil {
		return nil, err
	}
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return toItemResponse(item), nil
}

// Update actualiza un ítem. Con movimientos registrados solo admite cambios descriptivos:
// cambiar unidad o tamaño de bulto devuelve domain.ErrReferenceConflict.
func (uc *ItemUseCase) Update(ctx context.Context, actor auth.Actor, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if err := auth.Authorize(actor, auth.OpItemManage); err != nil {
		return nil, err
	}
	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		var err error
		item, err = repos.Items.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		unitChange := in.Unit != nil && *in.Unit != item.Unit
		sizeChange := in.UnitSizeKg != nil && (!item.UnitSizeKg.Valid || !in.UnitSizeKg.Equal(item.UnitSizeKg.Decimal))
		if unitChange || sizeChange {
			used, err := repos.Items.HasMovements(ctx, id)
			if err != nil {
				return err
			}
			if used {
				return &domain.ReferenceConflictError{ItemID: item.ID, ItemName: item.Name, Reason: "no se puede cambiar la unidad"}
			}
		}
		if in.Name != nil {
			item.Name = *in.Name
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		if in.Unit != nil {
			item.Unit = *in.Unit
		}
		if in.UnitSizeKg != nil {
			item.UnitSizeKg = decimal.NewNullDecimal(*in.UnitSizeKg)
		}
		if in.Modules != nil {
			item.Modules = in.Modules
		}
		var size *decimal.Decimal
		if item.UnitSizeKg.Valid {
			size = &item.UnitSizeKg.Decimal
		}
		if err := validateItem(item.Unit, size, item.Modules); err != nil {
			return err
		}
		item.UpdatedAt = time.Now().UTC()
		return repos.Items.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, actor, audit.ActionItemUpdated, item, "ítem actualizado")
	return toItemResponse(item), nil
}

// List lista ítems con paginación.
func (uc *ItemUseCase) List(ctx context.Context, actor auth.Actor, page dto.PageRequest) (*dto.ItemListResponse, error) {
	if err := auth.Authorize(actor, auth.OpItemRead); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, i := range list {
		items = append(items, *toItemResponse(i))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un ítem sin movimientos.
func (uc *ItemUseCase) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if err := auth.Authorize(actor, auth.OpItemManage); err != nil {
		return err
	}
	// Limpieza de saldos en cero y borrado del ítem en la misma transacción: si la FK lo impide
	// no queda nada a medias.
	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		var err error
		item, err = repos.Items.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		return repos.Items.Delete(ctx, id)
	})
	if err != nil {
		var conflict *domain.ReferenceConflictError
		if errors.As(err, &conflict) && conflict.ItemName == "" && item != nil {
			conflict.ItemName = item.Name
		}
		return err
	}
	uc.emit(ctx, actor, audit.ActionItemDeleted, item, "ítem eliminado")
	return nil
}

func (uc *ItemUseCase) emit(ctx context.Context, actor auth.Actor, action string, item *entity.Item, desc string) {
	uc.sink.Emit(ctx, audit.Event{
		Action:      action,
		EntityType:  "item",
		EntityID:    item.ID,
		Description: fmt.Sprintf("%s: %s", desc, item.Name),
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		OccurredAt:  time.Now().UTC(),
	})
}

func validateItem(unit string, unitSize *decimal.Decimal, modules []string) error {
	if !entity.ValidUnit(unit) {
		return domain.ErrInvalidInput
	}
	if unitSize != nil {
		if unit != entity.UnitBag || !unitSize.IsPositive() {
			return domain.ErrInvalidInput
		}
	}
	for _, m := range modules {
		if !entity.ValidModule(m) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	out := &dto.ItemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Unit:        i.Unit,
		Modules:     append([]string{}, i.Modules...),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.UnitSizeKg.Valid {
		v := i.UnitSizeKg.Decimal
		out.UnitSizeKg = &v
	}
	return out
}
