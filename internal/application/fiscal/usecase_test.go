package fiscal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onda-do/registro-api/internal/application/fiscal"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// fakeTxRunner serializa las "transacciones" con un mutex, igual que el
// SELECT ... FOR UPDATE serializa a los asignadores sobre la fila del rango.
// Ante error del callback restaura el snapshot (rollback).
// ──────────────────────────────────────────────────────────────────────────────

type fiscalStore struct {
	ranges   map[string]*entity.FiscalRange
	receipts map[string]*entity.FiscalReceipt
}

func newFiscalStore() *fiscalStore {
	return &fiscalStore{
		ranges:   map[string]*entity.FiscalRange{},
		receipts: map[string]*entity.FiscalReceipt{},
	}
}

func (s *fiscalStore) snapshot() *fiscalStore {
	cp := newFiscalStore()
	for id, r := range s.ranges {
		c := *r
		cp.ranges[id] = &c
	}
	for id, r := range s.receipts {
		c := *r
		cp.receipts[id] = &c
	}
	return cp
}

type fakeRangeRepo struct{ store *fiscalStore }

var _ repository.FiscalRangeRepository = (*fakeRangeRepo)(nil)

func (r *fakeRangeRepo) Create(_ context.Context, fr *entity.FiscalRange) error {
	cp := *fr
	r.store.ranges[fr.ID] = &cp
	return nil
}

func (r *fakeRangeRepo) GetByID(_ context.Context, id string) (*entity.FiscalRange, error) {
	fr, ok := r.store.ranges[id]
	if !ok {
		return nil, nil
	}
	cp := *fr
	return &cp, nil
}

func (r *fakeRangeRepo) GetActiveForUpdate(_ context.Context, documentType, series string) (*entity.FiscalRange, error) {
	for _, fr := range r.store.ranges {
		if fr.DocumentType == documentType && fr.Series == series && fr.Active {
			cp := *fr
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRangeRepo) Update(_ context.Context, fr *entity.FiscalRange) error {
	if _, ok := r.store.ranges[fr.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *fr
	r.store.ranges[fr.ID] = &cp
	return nil
}

func (r *fakeRangeRepo) List(_ context.Context) ([]*entity.FiscalRange, error) {
	var out []*entity.FiscalRange
	for _, fr := range r.store.ranges {
		cp := *fr
		out = append(out, &cp)
	}
	return out, nil
}

type fakeReceiptRepo struct{ store *fiscalStore }

var _ repository.FiscalReceiptRepository = (*fakeReceiptRepo)(nil)

func (r *fakeReceiptRepo) Create(_ context.Context, fr *entity.FiscalReceipt) error {
	// Emula el índice único (tipo, serie, número).
	for _, ex := range r.store.receipts {
		if ex.DocumentType == fr.DocumentType && ex.Series == fr.Series && ex.Number == fr.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *fr
	r.store.receipts[fr.ID] = &cp
	return nil
}

func (r *fakeReceiptRepo) GetByID(_ context.Context, id string) (*entity.FiscalReceipt, error) {
	fr, ok := r.store.receipts[id]
	if !ok {
		return nil, nil
	}
	cp := *fr
	return &cp, nil
}

func (r *fakeReceiptRepo) Annul(_ context.Context, id, reason string) error {
	fr, ok := r.store.receipts[id]
	if !ok || fr.Annulled {
		return domain.ErrNotFound
	}
	fr.Annulled = true
	fr.AnnulReason = reason
	return nil
}

type fakeFiscalTxRunner struct {
	mu    sync.Mutex
	store *fiscalStore
}

func (r *fakeFiscalTxRunner) RunFiscal(_ context.Context, fn func(
	rangeRepo repository.FiscalRangeRepository,
	receiptRepo repository.FiscalReceiptRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(&fakeRangeRepo{store: r.store}, &fakeReceiptRepo{store: r.store})
	if err != nil {
		// rollback
		*r.store = *snap
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

var fiscalNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newFiscalUseCase(now time.Time) (*fiscal.UseCase, *fakeFiscalTxRunner) {
	runner := &fakeFiscalTxRunner{store: newFiscalStore()}
	return fiscal.NewUseCase(runner, ports.FixedClock{T: now}), runner
}

func seedRange(t *testing.T, runner *fakeFiscalTxRunner, r *entity.FiscalRange) {
	t.Helper()
	err := runner.RunFiscal(context.Background(), func(
		rangeRepo repository.FiscalRangeRepository,
		_ repository.FiscalReceiptRepository,
	) error {
		return rangeRepo.Create(context.Background(), r)
	})
	require.NoError(t, err)
}

func testRange(end int64) *entity.FiscalRange {
	return &entity.FiscalRange{
		ID:            "rng-1",
		DocumentType:  entity.DocTypeConsumo,
		Series:        "B",
		StartNumber:   0,
		EndNumber:     end,
		CurrentNumber: 0,
		ExpiresAt:     fiscalNow.AddDate(2, 0, 0),
		Active:        true,
		CreatedAt:     fiscalNow,
		UpdatedAt:     fiscalNow,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Allocate — asignación secuencial
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_NumerosConsecutivosSinHuecos(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(100))

	for i := int64(1); i <= 5; i++ {
		r, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
		require.NoError(t, err)
		assert.Equal(t, i, r.Number, "los números se emiten consecutivos desde start+1")
	}
	assert.Equal(t, int64(5), runner.store.ranges["rng-1"].CurrentNumber)
}

func TestAllocate_FormatoNCF(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(100))

	r, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
	require.NoError(t, err)
	assert.Equal(t, "B0200000001", r.NCF(), "serie + tipo + secuencia de 8 dígitos")
	assert.Equal(t, "cajero-1", r.IssuedBy)
	assert.Equal(t, "pago-1", r.OwnerTransactionID)
}

func TestAllocate_SinRangoActivo(t *testing.T) {
	uc, _ := newFiscalUseCase(fiscalNow)
	_, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
	assert.ErrorIs(t, err, domain.ErrNoActiveRange)
}

func TestAllocate_EntradaInvalida(t *testing.T) {
	uc, _ := newFiscalUseCase(fiscalNow)
	_, err := uc.Allocate(context.Background(), "", "B", "cajero-1", "pago-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Allocate(context.Background(), entity.DocTypeConsumo, "", "cajero-1", "pago-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocate_RangoVencidoNoEmite(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	r := testRange(100)
	r.ExpiresAt = fiscalNow // ExpiresAt exclusivo: vencido exactamente ahora
	seedRange(t, runner, r)

	_, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
	assert.ErrorIs(t, err, domain.ErrRangeExpired,
		"vencido no emite aunque queden números disponibles")
	assert.Equal(t, int64(0), runner.store.ranges["rng-1"].CurrentNumber,
		"el contador no avanza en un rango vencido")
}

func TestAllocate_AgotamientoDesactivaYConfirma(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(1))

	_, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
	require.NoError(t, err)

	_, err = uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-2")
	assert.ErrorIs(t, err, domain.ErrRangeExhausted)

	// La desactivación se confirma aunque la asignación falló.
	assert.False(t, runner.store.ranges["rng-1"].Active,
		"el rango agotado queda desactivado y el commit persiste la bandera")
}

func TestAllocate_Concurrente_SinDuplicados(t *testing.T) {
	// Dos cajas asignando a la vez sobre un rango de 2 números: deben salir los
	// números 1 y 2 sin repetirse; una tercera asignación agota el rango.
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(2))

	var wg sync.WaitGroup
	results := make(chan *entity.FiscalReceipt, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero", "pago")
			assert.NoError(t, err)
			results <- r
		}(i)
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for r := range results {
		assert.False(t, seen[r.Number], "número %d emitido dos veces", r.Number)
		seen[r.Number] = true
	}
	assert.True(t, seen[1] && seen[2], "deben emitirse exactamente los números 1 y 2")

	_, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero", "pago")
	assert.ErrorIs(t, err, domain.ErrRangeExhausted)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AllocateInTx — asignación en la transacción del caller
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocateInTx_ErrorHaceRollbackCompleto(t *testing.T) {
	// Si el rango está agotado dentro de la transacción del caller, el error
	// propaga y el caller hace rollback: ni el comprobante ni el avance quedan.
	uc, runner := newFiscalUseCase(fiscalNow)
	r := testRange(0) // sin números disponibles
	seedRange(t, runner, r)

	err := runner.RunFiscal(context.Background(), func(
		rangeRepo repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
	) error {
		_, err := uc.AllocateInTx(context.Background(), rangeRepo, receiptRepo,
			entity.DocTypeConsumo, "B", "cajero-1", "pago-1", fiscalNow)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrRangeExhausted)
	assert.True(t, runner.store.ranges["rng-1"].Active,
		"en la transacción del caller el agotamiento no desactiva el rango")
	assert.Equal(t, int64(0), runner.store.ranges["rng-1"].CurrentNumber)
	assert.Empty(t, runner.store.receipts)
}

func TestAllocateInTx_EmiteDentroDeLaTransaccion(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(10))

	var got *entity.FiscalReceipt
	err := runner.RunFiscal(context.Background(), func(
		rangeRepo repository.FiscalRangeRepository,
		receiptRepo repository.FiscalReceiptRepository,
	) error {
		var err error
		got, err = uc.AllocateInTx(context.Background(), rangeRepo, receiptRepo,
			entity.DocTypeConsumo, "B", "cajero-1", "pago-7", fiscalNow)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Number)
	assert.Equal(t, "pago-7", got.OwnerTransactionID)
	assert.Len(t, runner.store.receipts, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Annul — anulación sin reciclaje
// ──────────────────────────────────────────────────────────────────────────────

func TestAnnul_MarcaSinLiberarNumero(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(100))

	r1, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
	require.NoError(t, err)

	require.NoError(t, uc.Annul(context.Background(), r1.ID, "monto incorrecto"))

	stored := runner.store.receipts[r1.ID]
	assert.True(t, stored.Annulled)
	assert.Equal(t, "monto incorrecto", stored.AnnulReason)
	assert.Equal(t, r1.Number, stored.Number, "el comprobante anulado conserva su número")

	// El siguiente NCF continúa la secuencia: el número anulado no vuelve al pool.
	r2, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-2")
	require.NoError(t, err)
	assert.Equal(t, r1.Number+1, r2.Number)
}

func TestAnnul_ComprobanteInexistente(t *testing.T) {
	uc, _ := newFiscalUseCase(fiscalNow)
	err := uc.Annul(context.Background(), "no-existe", "motivo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnnul_SinMotivoRechazado(t *testing.T) {
	uc, _ := newFiscalUseCase(fiscalNow)
	err := uc.Annul(context.Background(), "r1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateRange — alta administrativa
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateRange_DesactivaElRangoPrevio(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(100))

	nuevo, err := uc.CreateRange(context.Background(), fiscal.CreateRangeInput{
		DocumentType: entity.DocTypeConsumo,
		Series:       "B",
		StartNumber:  100,
		EndNumber:    200,
		ExpiresAt:    fiscalNow.AddDate(2, 0, 0),
	})
	require.NoError(t, err)
	assert.True(t, nuevo.Active)
	assert.Equal(t, int64(100), nuevo.CurrentNumber, "current arranca en start")

	assert.False(t, runner.store.ranges["rng-1"].Active,
		"a lo sumo un rango activo por (tipo, serie)")

	// El asignador ahora usa el rango nuevo.
	r, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
	require.NoError(t, err)
	assert.Equal(t, int64(101), r.Number)
}

func TestCreateRange_EntradaInvalida(t *testing.T) {
	uc, _ := newFiscalUseCase(fiscalNow)

	casos := []fiscal.CreateRangeInput{
		{DocumentType: "", Series: "B", StartNumber: 0, EndNumber: 10, ExpiresAt: fiscalNow.AddDate(1, 0, 0)},
		{DocumentType: entity.DocTypeConsumo, Series: "", StartNumber: 0, EndNumber: 10, ExpiresAt: fiscalNow.AddDate(1, 0, 0)},
		// end <= start
		{DocumentType: entity.DocTypeConsumo, Series: "B", StartNumber: 10, EndNumber: 10, ExpiresAt: fiscalNow.AddDate(1, 0, 0)},
		// vencimiento en el pasado o ausente
		{DocumentType: entity.DocTypeConsumo, Series: "B", StartNumber: 0, EndNumber: 10, ExpiresAt: fiscalNow.AddDate(-1, 0, 0)},
		{DocumentType: entity.DocTypeConsumo, Series: "B", StartNumber: 0, EndNumber: 10},
	}
	for i, in := range casos {
		_, err := uc.CreateRange(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "caso %d", i)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GetReceipt / ListRanges
// ──────────────────────────────────────────────────────────────────────────────

func TestGetReceipt(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(100))

	emitido, err := uc.Allocate(context.Background(), entity.DocTypeConsumo, "B", "cajero-1", "pago-1")
	require.NoError(t, err)

	got, err := uc.GetReceipt(context.Background(), emitido.ID)
	require.NoError(t, err)
	assert.Equal(t, emitido.NCF(), got.NCF())

	_, err = uc.GetReceipt(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRanges(t *testing.T) {
	uc, runner := newFiscalUseCase(fiscalNow)
	seedRange(t, runner, testRange(100))

	list, err := uc.ListRanges(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
