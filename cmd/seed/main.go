// cmd/seed/main.go: carga productos, clientes y una venta de demo.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ventas/internal/apperror"
	"ventas/internal/config"
	"ventas/internal/dto"
	"ventas/internal/infra"
	"ventas/internal/repository"
	"ventas/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var productosDemo = []dto.CrearProductoRequest{
	{Nombre: "Yerba Mate 1kg", SKU: "YER-1000", Precio: decimal.RequireFromString("4.50"), Stock: 40},
	{Nombre: "Azúcar 1kg", SKU: "AZU-1000", Precio: decimal.RequireFromString("1.20"), Stock: 60},
	{Nombre: "Café Molido 500g", SKU: "CAF-500", Precio: decimal.RequireFromString("7.80"), Stock: 25},
	{Nombre: "Galletitas Dulces", SKU: "GAL-200", Precio: decimal.RequireFromString("1.95"), Stock: 80},
}

var clientesDemo = []string{"Consumidor Final", "Almacén Don Pepe"}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DatabaseOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	tx := repository.NewTxRunner(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	movRepo := repository.NewMovimientoStockRepository(db)

	productos := service.NewProductoService(tx, productoRepo, movRepo, nil)
	clientes := service.NewClienteService(clienteRepo)
	ledger := service.NewStockLedger(tx, productoRepo, ventaRepo, repository.NewDetalleVentaRepository(), movRepo, nil)
	ventas := service.NewVentaService(tx, ventaRepo, clienteRepo, ledger, nil)

	var creados []uuid.UUID
	for _, req := range productosDemo {
		p, err := productos.Crear(ctx, req)
		if errors.Is(err, apperror.ErrDuplicado) {
			log.Info().Str("sku", req.SKU).Msg("producto ya existe, se omite")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("sku", req.SKU).Msg("crear producto")
		}
		creados = append(creados, uuid.MustParse(p.ID))
	}

	var clienteID uuid.UUID
	for _, nombre := range clientesDemo {
		c, err := clientes.Crear(ctx, dto.CrearClienteRequest{Nombre: nombre})
		if err != nil {
			log.Fatal().Err(err).Str("cliente", nombre).Msg("crear cliente")
		}
		clienteID = uuid.MustParse(c.ID)
	}

	// a first run gets one sample sale over the fresh products
	if len(creados) >= 2 {
		v, err := ventas.CrearVenta(ctx, dto.CrearVentaRequest{
			ClienteID: clienteID,
			Items: []dto.ItemVentaRequest{
				{ProductoID: creados[0], Cantidad: 2},
				{ProductoID: creados[1], Cantidad: 3},
			},
		})
		if err != nil {
			log.Fatal().Err(err).Msg("crear venta demo")
		}
		log.Info().Str("venta_id", v.ID).Str("total", v.Total.StringFixed(2)).Msg("venta demo creada")
	}

	log.Info().Int("productos", len(creados)).Int("clientes", len(clientesDemo)).Msg("seed completo")
}
