package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/testutil/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pg := testdb.SetupSharedPostgres(t)
	defer pg.Terminate(t)

	ctx := context.Background()
	repo := NewRepository(pg.DB)
	require.NoError(t, repo.Migrate(ctx))

	t.Run("Load_EmptyTable", func(t *testing.T) {
		pg.Truncate(t, table)

		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, hostel.ErrNoDocument)
	})

	t.Run("Save_ThenLoad", func(t *testing.T) {
		pg.Truncate(t, table)

		doc := hostel.NewDocument()
		doc.Rooms = []hostel.Room{{RoomID: "101", Floor: 1, Type: hostel.SingleSeater, Capacity: 1, Occupants: []string{"STU001"}}}
		doc.Students = []hostel.Student{{AllotmentID: "STU001", Name: "Asha", Dept: "CSE", Year: 2, RoomID: "101"}}
		doc.Notices = []hostel.Notice{{NoticeID: "N1", Title: "Water", Date: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)}}

		require.NoError(t, repo.Save(ctx, doc))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, hostel.CurrentVersion, loaded.Version)
		assert.Equal(t, doc.Rooms, loaded.Rooms)
		assert.Equal(t, doc.Students, loaded.Students)
		assert.True(t, doc.Notices[0].Date.Equal(loaded.Notices[0].Date))
	})

	t.Run("Save_Overwrites", func(t *testing.T) {
		pg.Truncate(t, table)

		doc := hostel.NewDocument()
		require.NoError(t, repo.Save(ctx, doc))

		doc.Notices = append(doc.Notices, hostel.Notice{NoticeID: "N2", Title: "Mess timings"})
		require.NoError(t, repo.Save(ctx, doc))

		count, err := pg.DB.NewSelect().Model((*documentRecord)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, loaded.Notices, 1)
	})

	t.Run("DocumentID_Isolates", func(t *testing.T) {
		pg.Truncate(t, table)

		require.NoError(t, repo.Save(ctx, hostel.NewDocument()))

		other := NewRepository(pg.DB, WithDocumentID("annex"))
		_, err := other.Load(ctx)
		assert.ErrorIs(t, err, hostel.ErrNoDocument)
	})

	t.Run("Store_OverPostgres", func(t *testing.T) {
		pg.Truncate(t, table)

		store, err := hostel.Open(ctx, repo)
		require.NoError(t, err)

		_, err = store.CreateNotice(ctx, "Fire drill", "Friday 10am")
		require.NoError(t, err)

		reopened, err := hostel.Open(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, "Fire drill", reopened.Notices()[0].Title)
		assert.Len(t, reopened.Rooms(), 19*17)
	})
}
