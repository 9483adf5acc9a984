package fiscal

import (
	"context"

	"github.com/onda-do/registro-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de
// rangos y comprobantes fiscales. La implementación reintenta la transacción
// completa solo ante ErrStorageUnavailable.
type TxRunner interface {
	RunFiscal(ctx context.Context, fn func(
		rangeRepo repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
	) error) error
}
