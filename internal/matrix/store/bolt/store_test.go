package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/sentinel"
)

type BoltStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *BoltStoreSuite) SetupTest() {
	store, err := Open(filepath.Join(s.T().TempDir(), "rbac.db"))
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *BoltStoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestBoltStoreSuite(t *testing.T) {
	suite.Run(t, new(BoltStoreSuite))
}

func testSnapshot() matrix.Snapshot {
	return matrix.Snapshot{
		Matrix: matrix.Matrix{
			{Team: "Billing", Accesses: []matrix.Access{
				{System: "Admin VTEX", Classification: "Acesso automático", Profile: "Financeiro"},
			}},
			{Team: "Segurança", Accesses: []matrix.Access{
				{System: "Okta", Classification: "Mediante request", Role: "SuperAdmin"},
			}},
		},
		UpdatedAt: time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC),
	}
}

func (s *BoltStoreSuite) TestReadBeforeWrite() {
	_, err := s.store.Read(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.LastUpdate(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *BoltStoreSuite) TestRoundTrip() {
	snap := testSnapshot()
	s.Require().NoError(s.store.Write(s.ctx, snap))

	got, err := s.store.Read(s.ctx)
	s.Require().NoError(err)
	s.Equal(snap.Matrix, got.Matrix)
	s.True(snap.UpdatedAt.Equal(got.UpdatedAt))

	last, err := s.store.LastUpdate(s.ctx)
	s.Require().NoError(err)
	s.True(snap.UpdatedAt.Equal(last))
}

func (s *BoltStoreSuite) TestWriteReplaces() {
	s.Require().NoError(s.store.Write(s.ctx, testSnapshot()))

	replacement := matrix.Snapshot{
		Matrix:    matrix.Matrix{{Team: "Dados", Accesses: []matrix.Access{{System: "Looker"}}}},
		UpdatedAt: time.Date(2026, 5, 3, 9, 30, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Write(s.ctx, replacement))

	got, err := s.store.Read(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Dados"}, got.Matrix.TeamNames())
}

func (s *BoltStoreSuite) TestClear() {
	s.Require().NoError(s.store.Write(s.ctx, testSnapshot()))
	s.Require().NoError(s.store.Clear(s.ctx))

	_, err := s.store.Read(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Clearing an already-empty store is a no-op.
	s.Require().NoError(s.store.Clear(s.ctx))
}

func (s *BoltStoreSuite) TestPersistsAcrossReopen() {
	path := filepath.Join(s.T().TempDir(), "persist.db")
	store, err := Open(path)
	s.Require().NoError(err)

	snap := testSnapshot()
	s.Require().NoError(store.Write(s.ctx, snap))
	s.Require().NoError(store.Close())

	reopened, err := Open(path)
	s.Require().NoError(err)
	defer reopened.Close()

	got, err := reopened.Read(s.ctx)
	s.Require().NoError(err)
	s.Equal(snap.Matrix, got.Matrix)
}
