package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BackfillCmd deriva lo pendiente de operaciones históricas.
type BackfillCmd struct {
	Limit int  `help:"Máximo de operaciones a procesar (0 = todas)." default:"0"`
	JSON  bool `help:"Imprimir el reporte en JSON."`
}

func (cmd *BackfillCmd) Run(globals *Globals) error {
	ctx, cancel := globals.context()
	defer cancel()
	svc, err := globals.services(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Backfill.Run(ctx, cmd.Limit)
	if err != nil {
		return err
	}
	out := globals.stdout()
	if cmd.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printSuccess(out, "backfill completado")
	printField(out, "operaciones revisadas", report.Scanned)
	printField(out, "IVA ventas creados", report.SaleIVA)
	printField(out, "IVA compras creados", report.PurchaseIVA)
	printField(out, "pagos a operadores", report.OperatorPayments)
	printField(out, "omitidas", report.Skipped)
	if len(report.SkippedIDs) > 0 {
		printInfof(out, "omitidas: %s", strings.Join(report.SkippedIDs, ", "))
	}
	return nil
}

// CheckpointCmd guarda el cierre de un día (por defecto, ayer).
type CheckpointCmd struct {
	Date string `help:"Día a cerrar (YYYY-MM-DD). Vacío = ayer."`
}

func (cmd *CheckpointCmd) Run(globals *Globals) error {
	var day *time.Time
	if cmd.Date != "" {
		d, err := parseDate(cmd.Date)
		if err != nil {
			return err
		}
		day = &d
	}

	ctx, cancel := globals.context()
	defer cancel()
	svc, err := globals.services(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	var n int
	if day == nil {
		n, err = svc.Checkpoints.CreateForYesterday(ctx)
	} else {
		n, err = svc.Checkpoints.CreateForDay(ctx, *day)
	}
	if err != nil {
		return err
	}
	printSuccess(globals.stdout(), fmt.Sprintf("checkpoints guardados para %d cuentas", n))
	return nil
}

// RatesCmd subcomandos de tipos de cambio.
type RatesCmd struct {
	Set RatesSetCmd `cmd:"" help:"Registrar (o reemplazar) la cotización de un día."`
	Get RatesGetCmd `cmd:"" help:"Mostrar la cotización vigente a una fecha."`
}

type RatesSetCmd struct {
	Date   string `help:"Día de vigencia (YYYY-MM-DD)." required:""`
	Rate   string `help:"ARS por USD." required:""`
	Source string `help:"Origen de la cotización." default:"ledgerctl"`
}

func (cmd *RatesSetCmd) Run(globals *Globals) error {
	day, err := parseDate(cmd.Date)
	if err != nil {
		return err
	}
	rate, err := parseRate(cmd.Rate)
	if err != nil {
		return err
	}

	ctx, cancel := globals.context()
	defer cancel()
	svc, err := globals.services(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	er, err := svc.Rates.Record(ctx, day, rate, cmd.Source)
	if err != nil {
		return err
	}
	printSuccess(globals.stdout(), fmt.Sprintf("cotización %s registrada para %s", er.Rate, er.EffectiveDate.Format(time.DateOnly)))
	return nil
}

type RatesGetCmd struct {
	Date     string `help:"Fecha (YYYY-MM-DD). Vacío = hoy."`
	Fallback bool   `help:"Aplicar la cadena de respaldo (último registrado, valor configurado)."`
}

func (cmd *RatesGetCmd) Run(globals *Globals) error {
	var day time.Time
	if cmd.Date != "" {
		d, err := parseDate(cmd.Date)
		if err != nil {
			return err
		}
		day = d
	}

	ctx, cancel := globals.context()
	defer cancel()
	svc, err := globals.services(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	if day.IsZero() {
		day = globals.today()
	}

	out := globals.stdout()
	if cmd.Fallback {
		r, err := svc.Rates.ResolveWithFallback(ctx, day)
		if err != nil {
			return err
		}
		printField(out, "tipo de cambio", r.Rate)
		printField(out, "origen", r.Source)
		if !r.EffectiveDate.IsZero() {
			printField(out, "vigente desde", r.EffectiveDate.Format(time.DateOnly))
		}
		return nil
	}
	r, err := svc.Rates.Resolve(ctx, day)
	if err != nil {
		return err
	}
	printField(out, "tipo de cambio", r.Rate)
	printField(out, "vigente desde", r.EffectiveDate.Format(time.DateOnly))
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha %q inválida, usar YYYY-MM-DD", s)
	}
	return d, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("tipo de cambio %q inválido: debe ser un decimal positivo", s)
	}
	return d, nil
}
