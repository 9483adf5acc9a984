package ports

import "time"

// Clock abstrae "ahora" para chequeos de vigencia (tarifas, rangos fiscales) y
// marcas de tiempo. Inyectable para poder fijar el instante en tests.
type Clock interface {
	Now() time.Time
}

// RealClock implementa Clock con time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock implementa Clock devolviendo siempre el mismo instante (tests).
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
