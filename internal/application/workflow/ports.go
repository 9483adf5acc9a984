package workflow

import (
	"context"
	"time"

	"github.com/onda-do/registro-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con todos los repos
// que una transición puede necesitar: solicitud, pagos, auditoría, secuencia de
// registro, rangos/comprobantes fiscales y tarifas. La mutación del estado y la
// entrada de auditoría confirman juntas o ninguna.
type TxRunner interface {
	RunWorkflow(ctx context.Context, fn func(
		reqRepo repository.RequestRepository,
		payRepo repository.PaymentRepository,
		auditRepo repository.AuditRepository,
		seqRepo repository.RegistrySequenceRepository,
		rangeRepo repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
		costRepo repository.CostRecordRepository,
	) error) error
}

// CertificateData datos para la representación gráfica del certificado.
type CertificateData struct {
	RequestID      string
	RegistryNumber string
	Applicant      string
	WorkTitle      string
	ServiceName    string
	BookNumber     string
	PageNumber     string
	IssuedAt       time.Time
}

// CertificateRenderer genera el PDF del certificado. Un fallo aquí no debe
// avanzar el estado: el caller reintenta sin transición.
type CertificateRenderer interface {
	RenderCertificate(ctx context.Context, data CertificateData) ([]byte, error)
}

// DocumentStore almacena documentos (certificados, firmados). El workflow solo
// guarda la ruta devuelta.
type DocumentStore interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// SignatureVerifier valida el sobre XML firmado de un certificado antes de
// aceptarlo como documento final.
type SignatureVerifier interface {
	Verify(signedXML []byte) error
}
