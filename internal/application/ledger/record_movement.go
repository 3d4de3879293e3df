package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MovementStore registra movimientos en el libro de forma transaccional: bloquea la fila
// de la cuenta (SELECT FOR UPDATE), valida el saldo para los egresos e inserta el
// movimiento, todo en la misma transacción.
type MovementStore struct {
	txRunner     TxRunner
	movementRepo repository.LedgerMovementRepository
	validator    *BalanceValidator
	rates        *ExchangeRateResolver
	settings     Settings
	log          zerolog.Logger
}

// NewMovementStore construye el caso de uso. movementRepo (pool) se usa solo para lecturas.
func NewMovementStore(
	txRunner TxRunner,
	movementRepo repository.LedgerMovementRepository,
	validator *BalanceValidator,
	rates *ExchangeRateResolver,
	settings Settings,
	log zerolog.Logger,
) *MovementStore {
	return &MovementStore{
		txRunner:     txRunner,
		movementRepo: movementRepo,
		validator:    validator,
		rates:        rates,
		settings:     settings,
		log:          log.With().Str("component", "movement_store").Logger(),
	}
}

// RecordInput entrada para registrar un movimiento.
// ExchangeRate es ARS por USD. Si la moneda no es la base y no se informa tipo de cambio,
// ResolveRate=true pide resolverlo a la fecha del día; si es false se rechaza.
type RecordInput struct {
	AccountID    *string
	OperationID  *string
	LeadID       *string
	Type         string
	Currency     string
	Amount       decimal.Decimal
	ExchangeRate *decimal.Decimal
	ResolveRate  bool
	Method       string
	Reference    string
	CreatedBy    string
}

// Record valida la entrada, convierte a USD y persiste el movimiento. Devuelve su ID.
// Ante cualquier error no queda ninguna fila escrita.
func (s *MovementStore) Record(ctx context.Context, in RecordInput) (string, error) {
	mov, err := s.build(ctx, in)
	if err != nil {
		return "", err
	}

	err = s.txRunner.RunLedger(ctx, func(
		accountRepo repository.FinancialAccountRepository,
		movementRepo repository.LedgerMovementRepository,
	) error {
		if mov.AccountID != nil {
			account, err := s.lockAccount(ctx, accountRepo, *mov.AccountID, mov.Type.RequiresFunds())
			if err != nil {
				return err
			}
			// created_at se fija con la fila ya bloqueada: el orden de los movimientos de
			// la cuenta coincide con el orden en que se serializaron.
			mov.CreatedAt = s.settings.now()
			if mov.Type.RequiresFunds() {
				if err := s.validator.CheckOutflow(ctx, movementRepo, account, mov.AmountUSD); err != nil {
					return err
				}
			}
		}
		return movementRepo.Create(ctx, mov)
	})
	if err != nil {
		return "", err
	}

	s.log.Debug().
		Str("movement_id", mov.ID).
		Str("type", string(mov.Type)).
		Str("currency", string(mov.Currency)).
		Str("amount_usd", mov.AmountUSD.String()).
		Msg("movimiento registrado")
	return mov.ID, nil
}

// Get devuelve un movimiento por ID.
func (s *MovementStore) Get(ctx context.Context, id string) (*entity.LedgerMovement, error) {
	mov, err := s.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// ListByAccount lista movimientos de una cuenta, más recientes primero.
func (s *MovementStore) ListByAccount(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.movementRepo.ListByAccount(ctx, accountID, from, to, limit, offset)
}

func (s *MovementStore) build(ctx context.Context, in RecordInput) (*entity.LedgerMovement, error) {
	typ, err := entity.ParseMovementType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	cur, err := entity.ParseCurrency(in.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser positivo", domain.ErrInvalidInput)
	}

	now := s.settings.now()
	rate := in.ExchangeRate
	if !cur.IsBase() && rate == nil {
		if !in.ResolveRate {
			return nil, domain.ErrCurrencyMismatchWithoutRate
		}
		resolved, err := s.rates.ForRequest().ResolveWithFallback(ctx, domainledger.DayOf(now, s.settings.location()))
		if err != nil {
			return nil, err
		}
		rate = &resolved.Rate
	}
	amountUSD, storedRate, err := domainledger.ToUSD(in.Amount, cur, rate)
	if err != nil {
		return nil, err
	}
	method, reference := domainledger.NormalizePaymentMethod(in.Method, in.Reference)

	mov := &entity.LedgerMovement{
		ID:             uuid.New().String(),
		AccountID:      nonEmpty(in.AccountID),
		OperationID:    nonEmpty(in.OperationID),
		LeadID:         nonEmpty(in.LeadID),
		Type:           typ,
		Currency:       cur,
		AmountOriginal: in.Amount,
		ExchangeRate:   storedRate,
		AmountUSD:      amountUSD,
		Method:         method,
		Reference:      reference,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
	}
	if err := mov.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return mov, nil
}

// lockAccount obtiene la cuenta; si el movimiento requiere fondos bloquea su fila.
func (s *MovementStore) lockAccount(ctx context.Context, accountRepo repository.FinancialAccountRepository, id string, forUpdate bool) (*entity.FinancialAccount, error) {
	var (
		account *entity.FinancialAccount
		err     error
	)
	if forUpdate {
		account, err = accountRepo.GetForUpdate(ctx, id)
	} else {
		account, err = accountRepo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return account, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
