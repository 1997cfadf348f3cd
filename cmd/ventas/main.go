package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ventas/internal/config"
	"ventas/internal/dto"
	"ventas/internal/infra"
	"ventas/internal/repository"
	"ventas/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const usage = `uso: ventas <comando> [args]

comandos:
  migrate                      crea / actualiza el esquema
  venta <venta_id>             muestra una venta con sus detalles
  anular <venta_id>            anula una venta y devuelve su stock
  eliminar-venta <venta_id>    elimina una venta (devuelve stock si está abierta)
  eliminar-detalle <id>        elimina un detalle y devuelve su stock
  stock <producto_id>          muestra el stock y sus movimientos
`

type app struct {
	db         *gorm.DB
	ledger     service.StockLedger
	ventas     service.VentaService
	productos  service.ProductoService
	inventario service.InventarioService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DatabaseOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			// the cache is optional; run against the database alone
			log.Warn().Err(err).Msg("redis unavailable, product cache disabled")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	a := newApp(db, service.NewProductoCache(rdb, cfg.ProductoCacheTTL()))
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Error().Err(err).Str("comando", os.Args[1]).Msg("command failed")
		os.Exit(1)
	}
}

// setupLogger configures the global zerolog logger: pretty console output in
// development, JSON in production.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func newApp(db *gorm.DB, cache *service.ProductoCache) *app {
	tx := repository.NewTxRunner(db)
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	movRepo := repository.NewMovimientoStockRepository(db)

	ledger := service.NewStockLedger(tx, productoRepo, ventaRepo, repository.NewDetalleVentaRepository(), movRepo, cache)
	return &app{
		db:         db,
		ledger:     ledger,
		ventas:     service.NewVentaService(tx, ventaRepo, repository.NewClienteRepository(db), ledger, cache),
		productos:  service.NewProductoService(tx, productoRepo, movRepo, cache),
		inventario: service.NewInventarioService(productoRepo, movRepo),
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	if cmd == "migrate" {
		if err := infra.RunMigrations(a.db); err != nil {
			return err
		}
		log.Info().Msg("schema up to date")
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("%s: se esperaba un id\n\n%s", cmd, usage)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%s: id inválido %q: %w", cmd, args[0], err)
	}

	switch cmd {
	case "venta":
		v, err := a.ventas.ObtenerVenta(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(v)
	case "anular":
		if err := a.ledger.AnularVenta(ctx, id); err != nil {
			return err
		}
		v, err := a.ventas.ObtenerVenta(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(v)
	case "eliminar-venta":
		return a.ledger.EliminarVenta(ctx, id)
	case "eliminar-detalle":
		return a.ledger.EliminarDetalle(ctx, id)
	case "stock":
		p, err := a.productos.ObtenerPorID(ctx, id)
		if err != nil {
			return err
		}
		h, err := a.inventario.HistorialStock(ctx, id, dto.MovimientoStockFilter{})
		if err != nil {
			return err
		}
		return printJSON(struct {
			Producto    *dto.ProductoResponse            `json:"producto"`
			Movimientos *dto.MovimientoStockListResponse `json:"movimientos"`
		}{p, h})
	default:
		return fmt.Errorf("comando desconocido %q\n\n%s", cmd, usage)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
