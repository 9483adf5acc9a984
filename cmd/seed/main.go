// seed puebla la base con los datos mínimos de arranque: usuario admin,
// catálogo inicial de trámites con su tarifa vigente y un rango NCF de prueba.
//
// Uso: go run ./cmd/seed
// Idempotente: si el recurso ya existe, lo deja como está.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/onda-do/registro-api/internal/application/fiscal"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/application/pricing"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/internal/infrastructure/postgres"
	"github.com/onda-do/registro-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	clock := ports.RealClock{}
	now := clock.Now()
	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	costRepo := postgres.NewCostRecordRepository(pool)

	// 1) Usuario admin
	adminEmail := envOr("SEED_ADMIN_EMAIL", "admin@onda.gob.do")
	adminPass := envOr("SEED_ADMIN_PASSWORD", "cambiar.ya.2026")
	if existing, err := userRepo.FindByEmail(ctx, adminEmail); err != nil {
		fail("buscar admin: %v", err)
	} else if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
		if err != nil {
			fail("hash password: %v", err)
		}
		admin := &entity.User{
			ID:           uuid.New().String(),
			Email:        adminEmail,
			PasswordHash: string(hash),
			Name:         "Administrador",
			Role:         entity.RoleAdmin,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			fail("crear admin: %v", err)
		}
		fmt.Printf("admin creado: %s\n", adminEmail)
	} else {
		fmt.Printf("admin ya existe: %s\n", adminEmail)
	}

	// 2) Trámites base con tarifa vigente
	pricingUC := pricing.NewUseCase(costRepo, txRunner, clock)
	seedServices := []struct {
		name     string
		typeCode string
		price    string
	}{
		{"Registro de obra musical", entity.TypeCodeObra, "1500.00"},
		{"Registro de obra literaria", entity.TypeCodeObra, "1000.00"},
		{"Registro de categoría empresarial IRC", entity.TypeCodeIRC, "3500.00"},
	}
	existing, err := serviceRepo.List(ctx, false)
	if err != nil {
		fail("listar servicios: %v", err)
	}
	byName := make(map[string]bool, len(existing))
	for _, s := range existing {
		byName[s.Name] = true
	}
	for _, seed := range seedServices {
		if byName[seed.name] {
			fmt.Printf("servicio ya existe: %s\n", seed.name)
			continue
		}
		svc := &entity.Service{
			ID:        uuid.New().String(),
			Name:      seed.name,
			TypeCode:  seed.typeCode,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := serviceRepo.Create(ctx, svc); err != nil {
			fail("crear servicio %s: %v", seed.name, err)
		}
		price, _ := decimal.NewFromString(seed.price)
		if _, err := pricingUC.SetPrice(ctx, svc.ID, price, now); err != nil {
			fail("tarifa de %s: %v", seed.name, err)
		}
		fmt.Printf("servicio creado: %s (RD$ %s)\n", seed.name, seed.price)
	}

	// 3) Rango NCF de prueba (consumidor final, serie por defecto)
	fiscalUC := fiscal.NewUseCase(txRunner, clock)
	_, err = fiscalUC.CreateRange(ctx, fiscal.CreateRangeInput{
		DocumentType: entity.DocTypeConsumo,
		Series:       cfg.Fiscal.DefaultSeries,
		StartNumber:  0,
		EndNumber:    10000,
		ExpiresAt:    now.AddDate(2, 0, 0),
	})
	switch {
	case err == nil:
		fmt.Println("rango NCF de prueba creado")
	case err == domain.ErrInvalidInput:
		fail("rango NCF inválido")
	default:
		// El alta reemplaza al activo anterior; un error aquí suele ser de conexión.
		fail("crear rango NCF: %v", err)
	}

	fmt.Println("seed completado")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
