package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/onda-do/registro-api/internal/domain/entity"
)

// CreateRequestInput entrada para radicar una solicitud.
type CreateRequestInput struct {
	ServiceID string `json:"service_id"`
	Applicant string `json:"applicant"`
	WorkTitle string `json:"work_title"`
}

// PayInput entrada del cajero para cobrar una solicitud validada.
// Si WantReceipt es true se emite un NCF del rango (DocumentType, Series).
type PayInput struct {
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	WantReceipt  bool            `json:"want_receipt"`
	DocumentType string          `json:"document_type"`
	Series       string          `json:"series"`
}

// RegisterInput referencia manual de libro/folio para el asentamiento.
type RegisterInput struct {
	BookNumber string `json:"book_number"`
	PageNumber string `json:"page_number"`
}

// ReturnInput devolución al solicitante; el motivo es obligatorio.
type ReturnInput struct {
	Reason string `json:"reason"`
}

// RejectInput rechazo definitivo; el motivo es opcional.
type RejectInput struct {
	Reason string `json:"reason"`
}

// ResubmitInput reingreso tras corrección. NewServiceID solo si la corrección
// cambió el trámite (obliga a un nuevo ciclo de pago).
type ResubmitInput struct {
	NewServiceID string `json:"new_service_id"`
}

// DeliverInput entrega final del certificado.
type DeliverInput struct {
	Recipient string `json:"recipient"`
}

// RequestResponse representación HTTP de una solicitud.
type RequestResponse struct {
	ID             string          `json:"id"`
	ServiceID      string          `json:"service_id"`
	Applicant      string          `json:"applicant"`
	WorkTitle      string          `json:"work_title"`
	State          string          `json:"state"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	NCF            string          `json:"ncf,omitempty"`
	RegistryNumber string          `json:"registry_number,omitempty"`
	BookNumber     string          `json:"book_number,omitempty"`
	PageNumber     string          `json:"page_number,omitempty"`
	DeliveredTo    string          `json:"delivered_to,omitempty"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TransitionResponse una entrada del historial de auditoría.
type TransitionResponse struct {
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToRequestResponse mapea la entidad a su representación HTTP.
func ToRequestResponse(r *entity.Request, ncf string) *RequestResponse {
	if r == nil {
		return nil
	}
	resp := &RequestResponse{
		ID:        r.ID,
		ServiceID: r.ServiceID,
		Applicant: r.Applicant,
		WorkTitle: r.WorkTitle,
		State:     string(r.State),
		AmountDue: r.AmountDue,
		NCF:       ncf,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.RegistryNumber != nil {
		resp.RegistryNumber = *r.RegistryNumber
	}
	if r.BookNumber != nil {
		resp.BookNumber = *r.BookNumber
	}
	if r.PageNumber != nil {
		resp.PageNumber = *r.PageNumber
	}
	if r.DeliveredTo != nil {
		resp.DeliveredTo = *r.DeliveredTo
	}
	resp.DeliveredAt = r.DeliveredAt
	return resp
}

// ToTransitionResponses mapea el historial de auditoría.
func ToTransitionResponses(list []*entity.StateTransition) []TransitionResponse {
	out := make([]TransitionResponse, 0, len(list))
	for _, t := range list {
		tr := TransitionResponse{
			FromState: string(t.FromState),
			ToState:   string(t.ToState),
			Actor:     t.Actor,
			CreatedAt: t.CreatedAt,
		}
		if t.Reason != nil {
			tr.Reason = *t.Reason
		}
		out = append(out, tr)
	}
	return out
}
