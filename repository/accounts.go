package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	auth "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// Accounts is the bun backed auth.AccountDirectory
type Accounts struct {
	repo      repository.Repository[*auth.Account]
	db        bun.IDB
	useHashid bool
	logger    auth.Logger
}

var _ auth.AccountDirectory = (*Accounts)(nil)

type AccountsOption func(*Accounts)

// WithHashidIDs derives account IDs from the email instead of
// drawing a random UUID
func WithHashidIDs(enabled bool) AccountsOption {
	return func(a *Accounts) {
		a.useHashid = enabled
	}
}

// WithLogger sets the repository logger
func WithLogger(logger auth.Logger) AccountsOption {
	return func(a *Accounts) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewAccountsRepository(db *bun.DB, opts ...AccountsOption) *Accounts {
	repo := repository.NewRepository[*auth.Account](db, repository.ModelHandlers[*auth.Account]{
		NewRecord: func() *auth.Account { return &auth.Account{} },
		GetID: func(a *auth.Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *auth.Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	accounts := &Accounts{
		repo:   repo,
		db:     db,
		logger: auth.NoopLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(accounts)
		}
	}

	return accounts
}

func (a *Accounts) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return a.findOne(ctx, a.db, "email", email)
}

func (a *Accounts) FindByPhone(ctx context.Context, phone string) (*auth.Account, error) {
	return a.findOne(ctx, a.db, "phone_number", phone)
}

func (a *Accounts) FindByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	record, err := a.repo.GetByID(ctx, id.String())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// List returns all accounts ordered by creation time
func (a *Accounts) List(ctx context.Context) ([]*auth.Account, error) {
	records, _, err := a.repo.List(ctx,
		repository.SelectOrderAsc("created_at"),
		repository.SelectOrderAsc("email"),
		withoutLimit,
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *Accounts) Create(ctx context.Context, account *auth.Account) (*auth.Account, error) {
	return a.CreateTx(ctx, a.db, account)
}

// CreateTx inserts account inside tx. A unique violation is reported
// as auth.ErrEmailAlreadyExists or auth.ErrPhoneAlreadyExists.
func (a *Accounts) CreateTx(ctx context.Context, tx bun.IDB, account *auth.Account) (*auth.Account, error) {
	if account == nil {
		return nil, errors.New("account is required")
	}

	if account.ID == uuid.Nil {
		account.ID = a.newID(account.Email)
	}

	record, err := a.repo.CreateTx(ctx, tx, account)
	if err != nil {
		if dup := duplicateAccountError(err); dup != nil {
			a.logger.Debug("account create hit unique constraint", "email", account.Email, "error", err)
			return nil, dup
		}
		return nil, err
	}

	return record, nil
}

func (a *Accounts) newID(email string) uuid.UUID {
	if a.useHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			return id
		}
	}
	return uuid.New()
}

func (a *Accounts) findOne(ctx context.Context, tx bun.IDB, column, value string) (*auth.Account, error) {
	record := &auth.Account{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return record, nil
}

// withoutLimit drops the default page size of repository.List
func withoutLimit(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Limit(0).Offset(0)
}

func isNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}

// duplicateAccountError maps a unique violation to the matching auth
// error, nil when err is something else
func duplicateAccountError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return nil
		}
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return auth.ErrPhoneAlreadyExists
		}
		return auth.ErrEmailAlreadyExists
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if !strings.Contains(msg, "UNIQUE constraint failed") && !strings.Contains(msg, "duplicate key") {
			continue
		}
		if strings.Contains(msg, "phone_number") {
			return auth.ErrPhoneAlreadyExists
		}
		return auth.ErrEmailAlreadyExists
	}

	return nil
}
