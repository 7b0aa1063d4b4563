package repository

import (
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager exposes all repositories
type Manager interface {
	Validate() error
	MustValidate()
	Accounts() *Accounts
}

type mngr struct {
	db       *bun.DB
	accounts *Accounts
}

func NewRepositoryManager(db *bun.DB, opts ...AccountsOption) Manager {
	return &mngr{
		db:       db,
		accounts: NewAccountsRepository(db, opts...),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized")
	}

	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) Accounts() *Accounts {
	return m.accounts
}
