package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-gateway/db"
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/session/migrations"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

const errWhileRollbackFormat = "error while rolling back tx: %w"

var _ Storage = (*SQLStorage)(nil)

type sessionRow struct {
	Wallet    common.Address `meddler:"wallet,address"`
	Token     string         `meddler:"token"`
	TTL       uint64         `meddler:"ttl"`
	ExpireAt  int64          `meddler:"expire_at"`
	UpdatedAt int64          `meddler:"updated_at"`
}

// SQLStorage persists sessions in a sqlite database
type SQLStorage struct {
	logger *log.Logger
	db     *sql.DB
}

// NewSQLStorage opens the database at dbPath and runs the session migrations
func NewSQLStorage(logger *log.Logger, dbPath string) (*SQLStorage, error) {
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunMigrations(logger, database); err != nil {
		return nil, errors.Join(err, database.Close())
	}

	return &SQLStorage{
		logger: logger,
		db:     database,
	}, nil
}

// Close closes the database
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// GetSession returns the stored session of wallet, nil when there is none
func (s *SQLStorage) GetSession(_ context.Context, wallet common.Address) (*types.Session, error) {
	var row sessionRow
	err := meddler.QueryRow(s.db, &row, "SELECT * FROM session WHERE wallet = $1;", wallet.Hex())
	if err != nil {
		if errors.Is(db.ReturnErrNotFound(err), db.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("error reading session of %s: %w", wallet.Hex(), err)
	}

	return &types.Session{
		Token:    row.Token,
		TTL:      row.TTL,
		ExpireAt: time.Unix(0, row.ExpireAt),
	}, nil
}

// SetSession replaces the stored session of wallet. A nil session removes it.
func (s *SQLStorage) SetSession(ctx context.Context, wallet common.Address, session *types.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	shouldRollback := true
	defer func() {
		if shouldRollback {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				s.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	if _, err := tx.Exec("DELETE FROM session WHERE wallet = $1;", wallet.Hex()); err != nil {
		return fmt.Errorf("error deleting session of %s: %w", wallet.Hex(), err)
	}
	if session != nil {
		row := &sessionRow{
			Wallet:    wallet,
			Token:     session.Token,
			TTL:       session.TTL,
			ExpireAt:  session.ExpireAt.UnixNano(),
			UpdatedAt: time.Now().Unix(),
		}
		if err := meddler.Insert(tx, "session", row); err != nil {
			return fmt.Errorf("error inserting session of %s: %w", wallet.Hex(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	shouldRollback = false

	s.logger.Debugf("stored session of %s", wallet.Hex())

	return nil
}
