package visitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

func newTestService(st *store.Memory, today string) *Service {
	s := New(st, zap.NewNop().Sugar())
	day := dates.MustParseDate(today)
	s.now = func() time.Time { return day.Time() }
	return s
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestService(st, "2024-05-01")

	v, err := s.Create(ctx, Input{Name: "Hamza Tariq", Contact: "03001234567", Interest: "Monthly plan"})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", v.VisitDate.String())
	assert.Equal(t, types.VisitorStatusFollowUp, v.Status)
	require.Len(t, st.Visitors, 1)

	_, err = s.Create(ctx, Input{Contact: "03001234567"})
	assert.Error(t, err)

	_, err = s.Create(ctx, Input{Name: "Bad Phone", Contact: "abc"})
	assert.Error(t, err)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newTestService(st, "2024-05-01")

	v, err := s.Create(ctx, Input{Name: "Hamza Tariq"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, v.ID, Input{Name: "Hamza Tariq", Status: types.VisitorStatusJoined, Notes: "signed up"})
	require.NoError(t, err)
	assert.Equal(t, types.VisitorStatusJoined, updated.Status)
	assert.Equal(t, "signed up", updated.Notes)

	_, err = s.Update(ctx, "V404", Input{Name: "Nobody"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Delete(ctx, v.ID))
	assert.Empty(t, st.Visitors)
}
