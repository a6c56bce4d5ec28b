package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/config"
	"github.com/flexfit/gymdesk/pkg/dates"
)

func newTestService(t *testing.T, st *store.Memory, keep int) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Backup.Dir = t.TempDir()
	cfg.Backup.Keep = keep
	return New(st, cfg, zap.NewNop().Sugar())
}

func TestCreateWritesAllCollections(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.Members = append(st.Members, &models.Member{
		ID: "M1", FirstName: "Ali", LastName: "Khan",
		JoinDate: dates.MustParseDate("2024-01-01"),
	})
	st.Plans = append(st.Plans, &models.Plan{ID: "P001", Name: "Monthly", DurationMonths: 1, BasePrice: 3000})

	s := newTestService(t, st, 7)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 3, 30, 0, 0, time.UTC) }

	info, err := s.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backup_2024-05-01_03-30-00", info.Name)
	assert.Equal(t, 7, info.FileCount)

	raw, err := os.ReadFile(filepath.Join(s.dir, info.Name, "members.json"))
	require.NoError(t, err)
	var members []models.Member
	require.NoError(t, json.Unmarshal(raw, &members))
	require.Len(t, members, 1)
	assert.Equal(t, "Ali", members[0].FirstName)
	assert.Equal(t, "2024-01-01", members[0].JoinDate.String())

	for _, name := range []string{
		"membership_history.json", "payments_log.json", "plans.json",
		"trainers.json", "attendance_log.json", "visitors_log.json",
	} {
		_, err := os.Stat(filepath.Join(s.dir, info.Name, name))
		assert.NoError(t, err, name)
	}
}

func TestRotationKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, store.NewMemory(), 3)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		_, err := s.Create(ctx)
		require.NoError(t, err)
	}

	backups, err := s.List()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, "backup_2024-05-01_04-00-00", backups[0].Name)
	assert.Equal(t, "backup_2024-05-01_02-00-00", backups[2].Name)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, store.NewMemory(), 7)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	info, err := s.Create(ctx)
	require.NoError(t, err)

	backups, err := s.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "2024-05-01 12:00:00", backups[0].CreatedAt)

	require.NoError(t, s.Delete(info.Name))
	backups, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, backups)

	assert.Error(t, s.Delete(info.Name))
	assert.Error(t, s.Delete("../outside"))
}
