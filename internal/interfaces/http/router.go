package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Accounts    AccountService
	Balances    BalanceService
	Movements   MovementService
	Series      SeriesService
	Checkpoints CheckpointService
	Rates       RateService
	Tax         TaxService
	Backfill    BackfillService
	Location    *time.Location
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras
// administrativas quedan limitadas a admin y finanzas.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(RoleAdmin, RoleFinanzas, RoleVentas)
	backOffice := RequireRole(RoleAdmin, RoleFinanzas)

	// Cuentas
	accounts := api.Group("/accounts")
	accountHandler := NewAccountHandler(deps.Accounts, deps.Balances, deps.Movements, deps.Location, deps.Log)
	accounts.Post("/", backOffice, accountHandler.Create)
	accounts.Get("/:id", anyRole, accountHandler.GetByID)
	accounts.Patch("/:id", backOffice, accountHandler.Update)
	accounts.Get("/:id/balance", anyRole, accountHandler.Balance)
	accounts.Post("/:id/validate-expense", anyRole, accountHandler.ValidateExpense)
	accounts.Get("/:id/movements", anyRole, accountHandler.Movements)

	// Libro
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Movements, deps.Series, deps.Checkpoints, deps.Log)
	ledgerGroup.Post("/movements", anyRole, ledgerHandler.RecordMovement)
	ledgerGroup.Get("/movements/:id", anyRole, ledgerHandler.GetMovement)
	ledgerGroup.Get("/balances/daily", anyRole, ledgerHandler.DailyBalances)
	ledgerGroup.Post("/checkpoints", backOffice, ledgerHandler.CreateCheckpoints)

	// Tipos de cambio
	rates := api.Group("/exchange-rates")
	rateHandler := NewRateHandler(deps.Rates, deps.Log)
	rates.Get("/resolve", anyRole, rateHandler.Resolve)
	rates.Post("/batch", anyRole, rateHandler.Batch)
	rates.Get("/latest", anyRole, rateHandler.Latest)
	rates.Post("/", backOffice, rateHandler.Record)

	// Impuestos y pagos a operadores
	taxHandler := NewTaxHandler(deps.Tax, deps.Backfill, deps.Location, deps.Log)
	taxGroup := api.Group("/tax", backOffice)
	taxGroup.Post("/iva/sales", taxHandler.SaleIVA)
	taxGroup.Post("/iva/purchases", taxHandler.PurchaseIVA)
	taxGroup.Post("/backfill", taxHandler.Backfill)

	payments := api.Group("/operator-payments")
	payments.Post("/", backOffice, taxHandler.OperatorPayment)
	payments.Post("/due-date", anyRole, taxHandler.DueDate)
}
