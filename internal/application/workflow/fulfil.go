package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	inv "github.com/jhoicas/farmstock-api/internal/domain/inventory"
)

// Fulfil completa una solicitud APPROVED: en una sola transacción bloquea la cabecera, revalida el
// estado, bloquea los saldos afectados en orden (ítem, ubicación), aplica los movimientos, anota las
// líneas y pasa al estado final. Cualquier error revierte todo y la solicitud queda APPROVED.
// Una solicitud ya completada devuelve domain.ErrAlreadyFulfilled sin mover stock.
func (uc *RequestUseCase) Fulfil(ctx context.Context, actor auth.Actor, requestID string) (*dto.RequestResponse, error) {
	if actor.UserID == "" || actor.Role == "" {
		return nil, domain.ErrUnauthorized
	}
	release, err := uc.guard.Acquire(ctx, "request:fulfil:"+requestID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		req     *entity.Request
		results []*inventory.MovementResult
	)
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		results = nil
		var err error
		req, err = repos.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := auth.Authorize(actor, fulfilOp(req.Kind)); err != nil {
			return err
		}
		next, err := inv.NextStatus(req, inv.TransitionFulfil)
		if err != nil {
			return err
		}
		if err := lockBalances(ctx, repos, req); err != nil {
			return err
		}

		switch req.Kind {
		case entity.RequestTransfer:
			results, err = uc.fulfilTransfer(ctx, repos, actor, req)
		case entity.RequestIssue:
			results, err = uc.fulfilIssue(ctx, repos, actor, req)
		case entity.RequestProcurement:
			results, err = uc.fulfilProcurement(ctx, repos, actor, req)
		default:
			err = domain.ErrInvalidInput
		}
		if err != nil {
			return err
		}

		now := uc.now()
		req.Status = next
		req.FulfilledBy = actor.UserID
		req.FulfilledAt = &now
		req.UpdatedAt = now
		return repos.Requests.Update(ctx, req)
	})
	kind := ""
	if req != nil {
		kind = req.Kind
	}
	uc.observer.RequestTransition(kind, inv.TransitionFulfil, err)
	if err != nil {
		uc.log.Debug().Err(err).Str("request_id", requestID).Msg("cumplimiento revertido")
		return nil, err
	}

	uc.applier.Observe(results...)
	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.TotalValue)
	}
	uc.emit(ctx, actor, audit.ActionRequestFulfilled, req,
		fmt.Sprintf("solicitud de %s completada: %d movimientos", req.Kind, len(results)),
		map[string]any{"movements": len(results), "total_value": total.String()})
	uc.log.Info().
		Str("request_id", req.ID).
		Str("kind", req.Kind).
		Int("movements", len(results)).
		Msg("solicitud completada")
	out := toRequestResponse(req)
	return &out, nil
}

// lockBalances toma las filas de saldo en orden determinista para que dos cumplimientos
// concurrentes sobre los mismos pares no se bloqueen mutuamente.
func lockBalances(ctx context.Context, repos inventory.Repos, req *entity.Request) error {
	seen := map[entity.BalanceKey]bool{}
	var keys []entity.BalanceKey
	add := func(itemID, locationID string) {
		k := entity.BalanceKey{ItemID: itemID, LocationID: locationID}
		if locationID == "" || seen[k] {
			return
		}
		seen[k] = true
		keys = append(keys, k)
	}
	for _, l := range req.Lines {
		add(l.ItemID, req.SourceLocationID)
		add(l.ItemID, req.DestinationLocationID)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		if _, err := repos.Balances.GetForUpdate(ctx, k.ItemID, k.LocationID); err != nil {
			return err
		}
	}
	return nil
}

func (uc *RequestUseCase) reference(req *entity.Request, line *entity.RequestLine) entity.Reference {
	return entity.Reference{Type: req.ReferenceType(), ID: req.ID, LineID: line.ID}
}

// fulfilTransfer TRANSFER_OUT en origen y TRANSFER_IN en destino por línea; el costo de entrada es
// el promedio del origen al momento del traslado.
func (uc *RequestUseCase) fulfilTransfer(ctx context.Context, repos inventory.Repos, actor auth.Actor, req *entity.Request) ([]*inventory.MovementResult, error) {
	results := make([]*inventory.MovementResult, 0, 2*len(req.Lines))
	for _, line := range req.Lines {
		out, err := uc.applier.ApplyInTx(ctx, repos, actor.UserID, inventory.ApplyMovementCommand{
			ItemID:     line.ItemID,
			LocationID: req.SourceLocationID,
			Type:       entity.MovementTransferOut,
			Direction:  entity.DirectionOut,
			Quantity:   line.RequestedQuantity,
			Reference:  uc.reference(req, line),
			Note:       req.Note,
		})
		if err != nil {
			return nil, err
		}
		unitCost := out.Balance.AverageCost
		in, err := uc.applier.ApplyInTx(ctx, repos, actor.UserID, inventory.ApplyMovementCommand{
			ItemID:     line.ItemID,
			LocationID: req.DestinationLocationID,
			Type:       entity.MovementTransferIn,
			Direction:  entity.DirectionIn,
			Quantity:   line.RequestedQuantity,
			UnitCost:   &unitCost,
			Reference:  uc.reference(req, line),
			Note:       req.Note,
		})
		if err != nil {
			return nil, err
		}
		if err := annotate(ctx, repos, line, line.RequestedQuantity, unitCost); err != nil {
			return nil, err
		}
		results = append(results, out, in)
	}
	return results, nil
}

// fulfilIssue una salida USAGE por línea; la nota lleva el módulo consumidor.
func (uc *RequestUseCase) fulfilIssue(ctx context.Context, repos inventory.Repos, actor auth.Actor, req *entity.Request) ([]*inventory.MovementResult, error) {
	results := make([]*inventory.MovementResult, 0, len(req.Lines))
	for _, line := range req.Lines {
		res, err := uc.applier.ApplyInTx(ctx, repos, actor.UserID, inventory.ApplyMovementCommand{
			ItemID:     line.ItemID,
			LocationID: req.SourceLocationID,
			Type:       entity.MovementUsage,
			Direction:  entity.DirectionOut,
			Quantity:   line.RequestedQuantity,
			Reference:  uc.reference(req, line),
			Note:       "consumo " + req.ConsumingModule,
		})
		if err != nil {
			return nil, err
		}
		if err := annotate(ctx, repos, line, line.RequestedQuantity, res.Balance.AverageCost); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// fulfilProcurement una entrada RECEIPT por línea con la cantidad recibida (por defecto la pedida)
// y el costo recibido (por defecto el estimado). Las líneas con recibido 0 no se asientan.
func (uc *RequestUseCase) fulfilProcurement(ctx context.Context, repos inventory.Repos, actor auth.Actor, req *entity.Request) ([]*inventory.MovementResult, error) {
	results := make([]*inventory.MovementResult, 0, len(req.Lines))
	for _, line := range req.Lines {
		qty := line.RequestedQuantity
		if line.ReceivedQuantity.Valid {
			qty = line.ReceivedQuantity.Decimal
		}
		if qty.IsZero() {
			continue
		}
		var cost *decimal.Decimal
		switch {
		case line.ReceivedUnitCost.Valid:
			c := line.ReceivedUnitCost.Decimal
			cost = &c
		case line.EstimatedUnitCost.Valid:
			c := line.EstimatedUnitCost.Decimal
			cost = &c
		}
		res, err := uc.applier.ApplyInTx(ctx, repos, actor.UserID, inventory.ApplyMovementCommand{
			ItemID:     line.ItemID,
			LocationID: req.DestinationLocationID,
			Type:       entity.MovementReceipt,
			Direction:  entity.DirectionIn,
			Quantity:   qty,
			UnitCost:   cost,
			Reference:  uc.reference(req, line),
			Note:       req.Supplier,
		})
		if err != nil {
			return nil, err
		}
		unitCost := res.Balance.AverageCost
		if cost != nil {
			unitCost = *cost
		}
		if err := annotate(ctx, repos, line, qty, unitCost); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if len(results) == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return results, nil
}

func annotate(ctx context.Context, repos inventory.Repos, line *entity.RequestLine, qty, unitCost decimal.Decimal) error {
	line.FulfilledQuantity = decimal.NewNullDecimal(qty)
	line.FulfilledUnitCost = decimal.NewNullDecimal(unitCost)
	return repos.Requests.UpdateLine(ctx, line)
}
