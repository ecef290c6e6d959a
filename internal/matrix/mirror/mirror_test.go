package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store/memory"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }
func (failingSink) Mirror(context.Context, matrix.Snapshot) error {
	return errors.New("boom")
}

type slowSink struct{}

func (slowSink) Name() string { return "slow" }
func (slowSink) Mirror(ctx context.Context, _ matrix.Snapshot) error {
	<-ctx.Done()
	return ctx.Err()
}

func snap() matrix.Snapshot {
	return matrix.Snapshot{
		Matrix:    matrix.Matrix{{Team: "Billing", Accesses: []matrix.Access{{System: "Admin VTEX"}}}},
		UpdatedAt: time.Now(),
	}
}

func TestFanoutWritesAllSinks(t *testing.T) {
	primary := memory.New()
	secondary := memory.New()
	m := New(discard(), []Sink{
		NewStoreSink("bolt", primary),
		NewStoreSink("backup", secondary),
	})

	accepted := m.Fanout(context.Background(), snap())

	assert.Equal(t, []string{"backup", "bolt"}, accepted)

	got, err := secondary.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Billing"}, got.Matrix.TeamNames())
}

func TestFanoutToleratesFailures(t *testing.T) {
	healthy := memory.New()
	m := New(discard(), []Sink{
		failingSink{},
		NewStoreSink("bolt", healthy),
	})

	accepted := m.Fanout(context.Background(), snap())

	// The failing sink is skipped; the healthy one still gets the write.
	assert.Equal(t, []string{"bolt"}, accepted)

	_, err := healthy.Read(context.Background())
	assert.NoError(t, err)
}

func TestFanoutTimesOutSlowSinks(t *testing.T) {
	m := New(discard(), []Sink{slowSink{}}, WithTimeout(10*time.Millisecond))

	start := time.Now()
	accepted := m.Fanout(context.Background(), snap())

	assert.Empty(t, accepted)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFanoutNoSinks(t *testing.T) {
	m := New(discard(), nil)
	assert.Nil(t, m.Fanout(context.Background(), snap()))
}
