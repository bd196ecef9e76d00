// Package scheduler tareas periódicas del servicio (alerta de stock bajo).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/pkg/logger"
)

// LowStockSource productos agotados o bajo su punto de reorden, por urgencia.
type LowStockSource interface {
	ReplenishmentList(ctx context.Context) ([]inventory.ReplenishmentSuggestion, error)
}

// Scheduler ejecuta la alerta de stock bajo según una expresión cron de 5 campos.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	source  LowStockSource
	timeout time.Duration
	log     *logger.Logger

	mu      sync.Mutex
	lastRun time.Time
	lastIDs []string
}

// New valida la expresión cron y construye el scheduler sin arrancarlo.
func New(spec string, loc *time.Location, source LowStockSource, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("scheduler: expresión cron inválida %q: %w", spec, err)
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		spec:    spec,
		source:  source,
		timeout: 2 * time.Minute,
		log:     log.Component("scheduler"),
	}, nil
}

// Start registra la alerta y arranca el cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { _ = s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("scheduler: registrar alerta: %w", err)
	}
	s.log.Info().Str("cron", s.spec).Msg("scheduler iniciado")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine la ejecución en curso o a que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
	s.log.Info().Msg("scheduler detenido")
}

// RunOnce consulta los productos a reponer y emite un warning por cada uno.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	low, err := s.source.ReplenishmentList(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("alerta de stock bajo: consulta fallida")
		return err
	}

	ids := make([]string, 0, len(low))
	for _, p := range low {
		ids = append(ids, p.ProductID)
		s.log.Warn().
			Str("product_id", p.ProductID).
			Str("name", p.Name).
			Int("stock", p.Stock).
			Int("reorder_point", p.ReorderPoint).
			Int("suggested_qty", p.SuggestedQty).
			Str("status", p.Status).
			Msg("reponer producto")
	}
	s.log.Info().Int("products", len(low)).Msg("alerta de stock bajo ejecutada")

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastIDs = ids
	s.mu.Unlock()
	return nil
}

// Last momento y productos de la última ejecución exitosa.
func (s *Scheduler) Last() (time.Time, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, append([]string(nil), s.lastIDs...)
}
