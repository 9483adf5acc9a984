// Package workflow (application) ejecuta las transiciones de las solicitudes:
// validación documental, cobro en caja con emisión de NCF, asentamiento con
// número de registro, certificado, firma, entrega, y devoluciones con
// reingreso. Cada transición es una transacción corta: mutación de estado,
// efectos de la etapa y entrada de auditoría confirman juntos.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/onda-do/registro-api/internal/application/dto"
	"github.com/onda-do/registro-api/internal/application/fiscal"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/application/pricing"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
	domainwf "github.com/onda-do/registro-api/internal/domain/workflow"
	"github.com/onda-do/registro-api/pkg/normalize"
)

// UseCase casos de uso del flujo de solicitudes.
type UseCase struct {
	txRunner    TxRunner
	requestRepo repository.RequestRepository
	serviceRepo repository.ServiceRepository
	costRepo    repository.CostRecordRepository
	auditRepo   repository.AuditRepository
	fiscalUC    *fiscal.UseCase
	renderer    CertificateRenderer
	docs        DocumentStore
	verifier    SignatureVerifier
	clock       ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	requestRepo repository.RequestRepository,
	serviceRepo repository.ServiceRepository,
	costRepo repository.CostRecordRepository,
	auditRepo repository.AuditRepository,
	fiscalUC *fiscal.UseCase,
	renderer CertificateRenderer,
	docs DocumentStore,
	verifier SignatureVerifier,
	clock ports.Clock,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		requestRepo: requestRepo,
		serviceRepo: serviceRepo,
		costRepo:    costRepo,
		auditRepo:   auditRepo,
		fiscalUC:    fiscalUC,
		renderer:    renderer,
		docs:        docs,
		verifier:    verifier,
		clock:       clock,
	}
}

// transition valida contra la tabla, muta el estado y asienta exactamente una
// entrada de auditoría, todo con los repos de la transacción del caller.
func (uc *UseCase) transition(
	ctx context.Context,
	reqRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	req *entity.Request,
	to entity.RequestState,
	actor string,
	reason *string,
	now time.Time,
) error {
	if !domainwf.CanTransition(req.State, to) {
		return &domain.TransitionError{From: req.State, To: to}
	}
	from := req.State
	req.State = to
	req.UpdatedAt = now
	if err := reqRepo.Update(ctx, req); err != nil {
		return err
	}
	return auditRepo.Append(ctx, &entity.StateTransition{
		ID:        uuid.New().String(),
		RequestID: req.ID,
		FromState: from,
		ToState:   to,
		Actor:     actor,
		Reason:    reason,
		CreatedAt: now,
	})
}

// Create radica una solicitud en PENDING con el monto a pagar según la tarifa
// vigente del servicio en este instante.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateRequestInput) (*entity.Request, error) {
	if in.ServiceID == "" || in.Applicant == "" || in.WorkTitle == "" {
		return nil, domain.ErrInvalidInput
	}
	svc, err := uc.serviceRepo.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil || !svc.Active {
		return nil, domain.ErrNotFound
	}
	now := uc.clock.Now()
	price, err := pricing.PriceAtIn(ctx, uc.costRepo, in.ServiceID, now)
	if err != nil {
		return nil, err
	}
	req := &entity.Request{
		ID:              uuid.New().String(),
		ServiceID:       in.ServiceID,
		Applicant:       in.Applicant,
		WorkTitle:       in.WorkTitle,
		TitleNormalized: normalize.Title(in.WorkTitle),
		State:           entity.StatePending,
		AmountDue:       price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate confirma la revisión documental: PENDING -> VALIDATED.
func (uc *UseCase) Validate(ctx context.Context, requestID, actor string) (*entity.Request, error) {
	return uc.simpleTransition(ctx, requestID, entity.StateValidated, actor, nil)
}

// Reject rechaza definitivamente: PENDING|VALIDATED -> REJECTED. Motivo opcional.
func (uc *UseCase) Reject(ctx context.Context, requestID, actor, reason string) (*entity.Request, error) {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	return uc.simpleTransition(ctx, requestID, entity.StateRejected, actor, reasonPtr)
}

// simpleTransition ejecuta una transición sin efectos de etapa.
func (uc *UseCase) simpleTransition(ctx context.Context, requestID string, to entity.RequestState, actor string, reason *string) (*entity.Request, error) {
	now := uc.clock.Now()
	var result *entity.Request
	err := uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		_ repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		_ repository.RegistrySequenceRepository,
		_ repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
		_ repository.CostRecordRepository,
	) error {
		result = nil
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := uc.transition(ctx, reqRepo, auditRepo, req, to, actor, reason, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Pay cobra la solicitud: VALIDATED -> PAID. El monto debe coincidir con la
// tarifa vigente del catálogo en este instante; si el pagador pidió NCF, la
// emisión ocurre en la misma transacción que el pago y la transición — sin
// estados a medio pagar.
func (uc *UseCase) Pay(ctx context.Context, requestID, actor string, in dto.PayInput) (*entity.Request, *entity.FiscalReceipt, error) {
	if in.Method == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if in.WantReceipt && (in.DocumentType == "" || in.Series == "") {
		return nil, nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()

	var result *entity.Request
	var receipt *entity.FiscalReceipt
	err := uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		payRepo repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		_ repository.RegistrySequenceRepository,
		rangeRepo repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
		costRepo repository.CostRecordRepository,
	) error {
		result, receipt = nil, nil
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.State != entity.StateValidated {
			return &domain.TransitionError{From: req.State, To: entity.StatePaid}
		}

		// La tarifa se resuelve al momento del cobro; una ambigüedad del
		// catálogo se propaga tal cual (fail-fast).
		price, err := pricing.PriceAtIn(ctx, costRepo, req.ServiceID, now)
		if err != nil {
			return err
		}
		if !req.AmountDue.Equal(price) || !in.Amount.Equal(price) {
			return fmt.Errorf("tarifa vigente %s, monto %s: %w",
				price.StringFixed(2), in.Amount.StringFixed(2), domain.ErrPaymentMismatch)
		}

		payment := &entity.Payment{
			ID:        uuid.New().String(),
			RequestID: req.ID,
			Amount:    in.Amount,
			Method:    in.Method,
			CashierID: actor,
			PaidAt:    now,
		}
		if in.WantReceipt {
			receipt, err = uc.fiscalUC.AllocateInTx(ctx, rangeRepo, receiptRepo,
				in.DocumentType, in.Series, actor, payment.ID, now)
			if err != nil {
				return err
			}
			payment.ReceiptID = &receipt.ID
			req.ReceiptID = &receipt.ID
		}
		if err := payRepo.Create(ctx, payment); err != nil {
			return err
		}
		if err := uc.transition(ctx, reqRepo, auditRepo, req, entity.StatePaid, actor, nil, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, receipt, nil
}

// Register asienta la solicitud: PAID -> REGISTERED. Exige libro/folio y asigna
// el número de registro TYPE-YYYY-NNNN con el consecutivo atómico por
// (tipo, año): dos asentamientos en el mismo instante no comparten número.
func (uc *UseCase) Register(ctx context.Context, requestID, actor string, in dto.RegisterInput) (*entity.Request, error) {
	if in.BookNumber == "" || in.PageNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()

	var result *entity.Request
	err := uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		_ repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		seqRepo repository.RegistrySequenceRepository,
		_ repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
		_ repository.CostRecordRepository,
	) error {
		result = nil
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.State != entity.StatePaid {
			return &domain.TransitionError{From: req.State, To: entity.StateRegistered}
		}
		svc, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
		if err != nil {
			return err
		}
		if svc == nil {
			return domain.ErrNotFound
		}
		year := now.Year()
		n, err := seqRepo.Next(ctx, svc.TypeCode, year)
		if err != nil {
			return err
		}
		registryNumber := fmt.Sprintf("%s-%d-%04d", svc.TypeCode, year, n)
		req.RegistryNumber = &registryNumber
		req.BookNumber = &in.BookNumber
		req.PageNumber = &in.PageNumber
		if err := uc.transition(ctx, reqRepo, auditRepo, req, entity.StateRegistered, actor, nil, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IssueCertificate genera el PDF del certificado, lo guarda y avanza
// REGISTERED -> PENDING_SIGNATURE. Si el render o la subida fallan, el estado
// no se mueve: se reintenta sin transición.
func (uc *UseCase) IssueCertificate(ctx context.Context, requestID, actor string) (*entity.Request, error) {
	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.State != entity.StateRegistered || req.RegistryNumber == nil {
		return nil, &domain.TransitionError{From: req.State, To: entity.StatePendingSignature}
	}
	svc, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.clock.Now()

	data := CertificateData{
		RequestID:      req.ID,
		RegistryNumber: *req.RegistryNumber,
		Applicant:      req.Applicant,
		WorkTitle:      req.WorkTitle,
		ServiceName:    svc.Name,
		IssuedAt:       now,
	}
	if req.BookNumber != nil {
		data.BookNumber = *req.BookNumber
	}
	if req.PageNumber != nil {
		data.PageNumber = *req.PageNumber
	}
	pdfBytes, err := uc.renderer.RenderCertificate(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("generar certificado: %w", err)
	}
	key := fmt.Sprintf("certificados/%s.pdf", req.ID)
	path, err := uc.docs.Upload(ctx, key, pdfBytes, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("guardar certificado: %w", err)
	}

	var result *entity.Request
	err = uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		_ repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		_ repository.RegistrySequenceRepository,
		_ repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
		_ repository.CostRecordRepository,
	) error {
		result = nil
		// Releer con bloqueo: el estado pudo cambiar durante el render.
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		req.CertificatePath = &path
		if err := uc.transition(ctx, reqRepo, auditRepo, req, entity.StatePendingSignature, actor, nil, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AttachSigned adjunta el certificado firmado externamente y avanza
// PENDING_SIGNATURE -> READY_FOR_DELIVERY. El sobre XML firmado se verifica
// antes de aceptarse; esta transición no puede retroceder.
func (uc *UseCase) AttachSigned(ctx context.Context, requestID, actor string, signedXML []byte) (*entity.Request, error) {
	if len(signedXML) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.verifier.Verify(signedXML); err != nil {
		return nil, fmt.Errorf("documento firmado inválido: %w", err)
	}
	key := fmt.Sprintf("firmados/%s.xml", requestID)
	path, err := uc.docs.Upload(ctx, key, signedXML, "application/xml")
	if err != nil {
		return nil, fmt.Errorf("guardar documento firmado: %w", err)
	}
	now := uc.clock.Now()

	var result *entity.Request
	err = uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		_ repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		_ repository.RegistrySequenceRepository,
		_ repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
		_ repository.CostRecordRepository,
	) error {
		result = nil
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		req.SignedPath = &path
		if err := uc.transition(ctx, reqRepo, auditRepo, req, entity.StateReadyForDelivery, actor, nil, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Deliver entrega el certificado: READY_FOR_DELIVERY -> DELIVERED (terminal).
// Registra fecha y receptor.
func (uc *UseCase) Deliver(ctx context.Context, requestID, actor, recipient string) (*entity.Request, error) {
	if recipient == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()

	var result *entity.Request
	err := uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		_ repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		_ repository.RegistrySequenceRepository,
		_ repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
		_ repository.CostRecordRepository,
	) error {
		result = nil
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		req.DeliveredAt = &now
		req.DeliveredTo = &recipient
		if err := uc.transition(ctx, reqRepo, auditRepo, req, entity.StateDelivered, actor, nil, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Return devuelve la solicitud al solicitante para corrección. Motivo
// obligatorio; se recuerda el estado de origen para el reingreso.
func (uc *UseCase) Return(ctx context.Context, requestID, actor, reason string) (*entity.Request, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()

	var result *entity.Request
	err := uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		_ repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		_ repository.RegistrySequenceRepository,
		_ repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
		_ repository.CostRecordRepository,
	) error {
		result = nil
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		from := req.State
		req.ReturnedFrom = &from
		if err := uc.transition(ctx, reqRepo, auditRepo, req, entity.StateReturned, actor, &reason, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Resubmit reingresa una solicitud corregida. El destino sale del estado desde
// el que fue devuelta (la etapa se re-revisa, no se reinicia en PENDING). Si la
// corrección cambió el trámite, el reingreso se fuerza a VALIDATED con el monto
// recalculado: el NCF anterior sigue válido y corre un nuevo ciclo de pago.
func (uc *UseCase) Resubmit(ctx context.Context, requestID, actor string, in dto.ResubmitInput) (*entity.Request, error) {
	now := uc.clock.Now()

	var result *entity.Request
	err := uc.txRunner.RunWorkflow(ctx, func(
		reqRepo repository.RequestRepository,
		_ repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		_ repository.RegistrySequenceRepository,
		_ repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
		costRepo repository.CostRecordRepository,
	) error {
		result = nil
		req, err := reqRepo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.State != entity.StateReturned || req.ReturnedFrom == nil {
			return &domain.TransitionError{From: req.State, To: entity.StateValidated}
		}
		target, ok := domainwf.ReentryState(*req.ReturnedFrom)
		if !ok {
			return fmt.Errorf("origen de devolución %s: %w", *req.ReturnedFrom, domain.ErrInvalidInput)
		}

		if in.NewServiceID != "" && in.NewServiceID != req.ServiceID {
			svc, err := uc.serviceRepo.GetByID(ctx, in.NewServiceID)
			if err != nil {
				return err
			}
			if svc == nil || !svc.Active {
				return domain.ErrNotFound
			}
			price, err := pricing.PriceAtIn(ctx, costRepo, in.NewServiceID, now)
			if err != nil {
				return err
			}
			req.ServiceID = in.NewServiceID
			req.AmountDue = price
			// Cambio de trámite: nuevo ciclo de pago desde VALIDATED. El NCF
			// emitido se conserva válido (regla de negocio deliberada).
			target = entity.StateValidated
		}
		req.ReturnedFrom = nil
		if err := uc.transition(ctx, reqRepo, auditRepo, req, target, actor, nil, now); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetRequest consulta una solicitud (superficie de lectura para controllers).
func (uc *UseCase) GetRequest(ctx context.Context, requestID string) (*entity.Request, error) {
	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// History devuelve el historial de transiciones de la solicitud, en orden.
func (uc *UseCase) History(ctx context.Context, requestID string) ([]*entity.StateTransition, error) {
	return uc.auditRepo.History(ctx, requestID)
}

// ListRequests lista solicitudes, opcionalmente filtradas por estado.
func (uc *UseCase) ListRequests(ctx context.Context, state string, limit, offset int) ([]*entity.Request, error) {
	if state != "" && !entity.RequestState(state).Valid() {
		return nil, domain.ErrInvalidInput
	}
	return uc.requestRepo.List(ctx, state, limit, offset)
}
