package histutil

import (
	"strings"

	"src.shline.sh/pkg/store/storedefs"
)

// An in-memory DB whose next call can be made to fail.
type testDB struct {
	cmds        []string
	oneOffError error
}

func (s *testDB) error() error {
	err := s.oneOffError
	s.oneOffError = nil
	return err
}

func (s *testDB) NextCmdSeq() (int, error) {
	return len(s.cmds), s.error()
}

func (s *testDB) AddCmd(cmd string) (int, error) {
	if s.oneOffError != nil {
		return -1, s.error()
	}
	s.cmds = append(s.cmds, cmd)
	return len(s.cmds) - 1, nil
}

func (s *testDB) CmdsWithSeq(from, upto int) ([]storedefs.Cmd, error) {
	if err := s.error(); err != nil {
		return nil, err
	}
	var cmds []storedefs.Cmd
	for i := max(from, 0); i < upto && i < len(s.cmds); i++ {
		cmds = append(cmds, storedefs.Cmd{Text: s.cmds[i], Seq: i})
	}
	return cmds, nil
}

func (s *testDB) PrevCmd(upto int, prefix string) (storedefs.Cmd, error) {
	if s.oneOffError != nil {
		return storedefs.Cmd{}, s.error()
	}
	if upto < 0 || upto > len(s.cmds) {
		upto = len(s.cmds)
	}
	for i := upto - 1; i >= 0; i-- {
		if strings.HasPrefix(s.cmds[i], prefix) {
			return storedefs.Cmd{Text: s.cmds[i], Seq: i}, nil
		}
	}
	return storedefs.Cmd{}, storedefs.ErrNoMatchingCmd
}

func (s *testDB) NextCmd(from int, prefix string) (storedefs.Cmd, error) {
	if s.oneOffError != nil {
		return storedefs.Cmd{}, s.error()
	}
	for i := max(from, 0); i < len(s.cmds); i++ {
		if strings.HasPrefix(s.cmds[i], prefix) {
			return storedefs.Cmd{Text: s.cmds[i], Seq: i}, nil
		}
	}
	return storedefs.Cmd{}, storedefs.ErrNoMatchingCmd
}
