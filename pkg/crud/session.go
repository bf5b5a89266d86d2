package crud

import (
	"gorm.io/gorm"
)

// CommitStrategy decides what a session checkpoint does with the open
// transaction. It is selected once at startup: a running server commits
// after each logical operation, tests only flush so the harness can roll
// everything back.
type CommitStrategy interface {
	Checkpoint(base, tx *gorm.DB) (*gorm.DB, error)
}

type commitEach struct{}

func (commitEach) Checkpoint(base, tx *gorm.DB) (*gorm.DB, error) {
	if err := tx.Commit().Error; err != nil {
		return tx, &StorageError{Op: "commit", Err: err}
	}
	return base.Begin(), nil
}

type flushOnly struct{}

func (flushOnly) Checkpoint(base, tx *gorm.DB) (*gorm.DB, error) {
	// statements are already flushed inside the open transaction
	return tx, nil
}

// CommitEach is the strategy for request-scoped sessions: every
// checkpoint is durable on its own.
func CommitEach() CommitStrategy { return commitEach{} }

// FlushOnly suits a test harness holding one session for the whole
// case: checkpoints flush, Close rolls the lot back.
func FlushOnly() CommitStrategy { return flushOnly{} }

// Session owns the request-scoped transaction every repository operation
// runs in. It is not safe for concurrent use; each request gets its own.
type Session struct {
	base     *gorm.DB
	tx       *gorm.DB
	strategy CommitStrategy
}

func NewSession(conn *gorm.DB, strategy CommitStrategy) *Session {
	return &Session{
		base:     conn,
		tx:       conn.Begin(),
		strategy: strategy,
	}
}

// DB exposes the current transaction for repository queries.
func (s *Session) DB() *gorm.DB {
	return s.tx
}

// Checkpoint finalizes the writes issued so far according to the commit
// strategy. Under CommitEach the session continues on a fresh transaction.
func (s *Session) Checkpoint() error {
	tx, err := s.strategy.Checkpoint(s.base, s.tx)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

func (s *Session) Rollback() error {
	return s.tx.Rollback().Error
}

// SavePoint / RollbackTo guard multi-statement sequences that may fail on
// a constraint: postgres aborts the whole transaction on a failed insert,
// so recovery needs a savepoint to roll back to.
func (s *Session) SavePoint(name string) error {
	return s.tx.SavePoint(name).Error
}

func (s *Session) RollbackTo(name string) error {
	return s.tx.RollbackTo(name).Error
}

// Close abandons whatever the last checkpoint did not finalize. Safe to
// defer: rolling back an already-committed transaction is a no-op error
// that is deliberately swallowed.
func (s *Session) Close() {
	_ = s.tx.Rollback()
}
