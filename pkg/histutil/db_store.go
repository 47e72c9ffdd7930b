package histutil

import (
	"errors"

	"src.shline.sh/pkg/store/storedefs"
)

// DB is the part of storedefs.Store needed for the command history.
type DB interface {
	NextCmdSeq() (int, error)
	AddCmd(cmd string) (int, error)
	CmdsWithSeq(from, upto int) ([]storedefs.Cmd, error)
	PrevCmd(upto int, prefix string) (storedefs.Cmd, error)
	NextCmd(from int, prefix string) (storedefs.Cmd, error)
}

// NewDBStore returns a Store backed by a database. The view of the database
// is frozen at creation, so commands added by other processes later are not
// seen; commands added through the returned Store are saved to the database
// and kept in memory as the session history, which comes after the frozen
// view when walking.
func NewDBStore(db DB) (Store, error) {
	upper, err := db.NextCmdSeq()
	if err != nil {
		return nil, err
	}
	return &dbStore{shared: frozenDB{db, upper}, session: &memStore{}}, nil
}

type dbStore struct {
	shared  frozenDB
	session *memStore
}

func (s *dbStore) AllCmds() ([]storedefs.Cmd, error) {
	shared, err := s.shared.db.CmdsWithSeq(0, s.shared.upper)
	if err != nil {
		return nil, err
	}
	return append(shared, s.session.cmds...), nil
}

func (s *dbStore) AddCmd(text string) (int, error) {
	seq, err := s.shared.db.AddCmd(text)
	if err != nil {
		return -1, err
	}
	return s.session.add(storedefs.Cmd{Text: text, Seq: seq}), nil
}

func (s *dbStore) Cursor(prefix string) Cursor {
	return &dbStoreCursor{
		shared:  s.shared.cursor(prefix),
		session: s.session.Cursor(prefix),
	}
}

func (s *dbStore) Walker(prefix string) *Walker {
	return NewWalker(s.Cursor(prefix), prefix)
}

// Walks the session commands first when going back, then the frozen view.
type dbStoreCursor struct {
	shared, session Cursor
	useShared       bool
}

func (c *dbStoreCursor) Prev() {
	if c.useShared {
		c.shared.Prev()
		return
	}
	c.session.Prev()
	if _, err := c.session.Get(); errors.Is(err, ErrEndOfHistory) {
		c.useShared = true
		c.shared.Prev()
	}
}

func (c *dbStoreCursor) Next() {
	if !c.useShared {
		c.session.Next()
		return
	}
	c.shared.Next()
	if _, err := c.shared.Get(); errors.Is(err, ErrEndOfHistory) {
		c.useShared = false
		c.session.Next()
	}
}

func (c *dbStoreCursor) Get() (storedefs.Cmd, error) {
	if c.useShared {
		return c.shared.Get()
	}
	return c.session.Get()
}

// A view of the commands in a DB with sequence numbers below upper.
type frozenDB struct {
	db    DB
	upper int
}

func (f frozenDB) cursor(prefix string) Cursor {
	return &frozenDBCursor{
		f.db, prefix, f.upper, storedefs.Cmd{Seq: f.upper}, ErrEndOfHistory}
}

type frozenDBCursor struct {
	db     DB
	prefix string
	upper  int
	cmd    storedefs.Cmd
	err    error
}

func (c *frozenDBCursor) Prev() {
	if c.cmd.Seq < 0 {
		return
	}
	cmd, err := c.db.PrevCmd(c.cmd.Seq, c.prefix)
	c.set(cmd, err, -1)
}

func (c *frozenDBCursor) Next() {
	if c.cmd.Seq >= c.upper {
		return
	}
	cmd, err := c.db.NextCmd(c.cmd.Seq+1, c.prefix)
	if err == nil && cmd.Seq >= c.upper {
		err = storedefs.ErrNoMatchingCmd
	}
	c.set(cmd, err, c.upper)
}

func (c *frozenDBCursor) set(cmd storedefs.Cmd, err error, endSeq int) {
	switch {
	case err == nil:
		c.cmd = cmd
		c.err = nil
	case errors.Is(err, storedefs.ErrNoMatchingCmd):
		c.cmd = storedefs.Cmd{Seq: endSeq}
		c.err = ErrEndOfHistory
	default:
		// Don't change c.cmd
		c.err = err
	}
}

func (c *frozenDBCursor) Get() (storedefs.Cmd, error) {
	return c.cmd, c.err
}
