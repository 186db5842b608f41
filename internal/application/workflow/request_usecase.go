// Package workflow implementa los flujos de traslado, despacho y compra: solicitud, aprobación,
// rechazo y cumplimiento. El cumplimiento aplica todos los movimientos en una sola transacción.
package workflow

import (
	"context"
	"time"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
	"github.com/jhoicas/farmstock-api/pkg/logger"
)

// FulfilGuard candado distribuido opcional delante de la transacción de cumplimiento.
// El estado de la solicitud en BD sigue siendo la autoridad; el candado evita trabajo duplicado.
type FulfilGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// TransitionObserver recibe el resultado de cada transición (métricas).
type TransitionObserver interface {
	RequestTransition(kind, transition string, err error)
}

type nopGuard struct{}

func (nopGuard) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

type nopTransitionObserver struct{}

func (nopTransitionObserver) RequestTransition(string, string, error) {}

// RequestUseCase casos de uso de solicitudes.
type RequestUseCase struct {
	txRunner inventory.TxRunner
	reader   repository.RequestRepository
	applier  *inventory.MovementApplier
	sink     audit.Sink
	guard    FulfilGuard
	observer TransitionObserver
	log      *logger.Logger
	now      func() time.Time
}

// Option configura colaboradores opcionales.
type Option func(*RequestUseCase)

// WithFulfilGuard instala el candado de cumplimiento.
func WithFulfilGuard(g FulfilGuard) Option {
	return func(uc *RequestUseCase) {
		if g != nil {
			uc.guard = g
		}
	}
}

// WithTransitionObserver instala el observador de transiciones.
func WithTransitionObserver(o TransitionObserver) Option {
	return func(uc *RequestUseCase) {
		if o != nil {
			uc.observer = o
		}
	}
}

// WithLogger instala el logger.
func WithLogger(l *logger.Logger) Option {
	return func(uc *RequestUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithClock reemplaza el reloj (pruebas).
func WithClock(now func() time.Time) Option {
	return func(uc *RequestUseCase) { uc.now = now }
}

// NewRequestUseCase construye el caso de uso. reader se usa para lecturas fuera de transacción.
func NewRequestUseCase(
	txRunner inventory.TxRunner,
	reader repository.RequestRepository,
	applier *inventory.MovementApplier,
	sink audit.Sink,
	opts ...Option,
) *RequestUseCase {
	if sink == nil {
		sink = audit.NopSink{}
	}
	uc := &RequestUseCase{
		txRunner: txRunner,
		reader:   reader,
		applier:  applier,
		sink:     sink,
		guard:    nopGuard{},
		observer: nopTransitionObserver{},
		log:      logger.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Get devuelve la solicitud con sus líneas.
func (uc *RequestUseCase) Get(ctx context.Context, actor auth.Actor, id string) (*dto.RequestResponse, error) {
	if err := auth.Authorize(actor, auth.OpRequestRead); err != nil {
		return nil, err
	}
	req, err := uc.reader.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	out := toRequestResponse(req)
	return &out, nil
}

// ListFilter filtros de listado.
type ListFilter struct {
	Kind   string
	Status string
	Page   dto.PageRequest
}

// List lista solicitudes, las más recientes primero.
func (uc *RequestUseCase) List(ctx context.Context, actor auth.Actor, f ListFilter) (*dto.RequestListResponse, error) {
	if err := auth.Authorize(actor, auth.OpRequestRead); err != nil {
		return nil, err
	}
	f.Page.DefaultPage()
	list, err := uc.reader.List(ctx, repository.RequestFilter{
		Kind:   f.Kind,
		Status: f.Status,
		Limit:  f.Page.Limit,
		Offset: f.Page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.RequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toRequestResponse(r))
	}
	return &dto.RequestListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Page.Limit, Offset: f.Page.Offset},
	}, nil
}

func (uc *RequestUseCase) emit(ctx context.Context, actor auth.Actor, action string, req *entity.Request, desc string, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["kind"] = req.Kind
	meta["status"] = req.Status
	uc.sink.Emit(ctx, audit.Event{
		Action:      action,
		EntityType:  "request",
		EntityID:    req.ID,
		Description: desc,
		Metadata:    meta,
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		OccurredAt:  req.UpdatedAt,
	})
}

func createOp(kind string) string {
	switch kind {
	case entity.RequestTransfer:
		return auth.OpTransferCreate
	case entity.RequestIssue:
		return auth.OpIssueCreate
	}
	return auth.OpProcurementCreate
}

func approveOp(kind string) string {
	switch kind {
	case entity.RequestTransfer:
		return auth.OpTransferApprove
	case entity.RequestIssue:
		return auth.OpIssueApprove
	}
	return auth.OpProcurementApprove
}

func fulfilOp(kind string) string {
	switch kind {
	case entity.RequestTransfer:
		return auth.OpTransferFulfil
	case entity.RequestIssue:
		return auth.OpIssueFulfil
	}
	return auth.OpProcurementFulfil
}
