package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timesheet/internal/domain"
)

var testNow = time.Date(2024, 4, 3, 9, 30, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	assert.Equal(t, KindPersisted, Classify(Persisted{ID: "abc"}))
	assert.Equal(t, KindNew, Classify(New{LocalID: "1"}))
	assert.Equal(t, KindPlaceholder, Classify(Placeholder{Slot: "2024-04-01"}))
	assert.Equal(t, "placeholder", KindPlaceholder.String())
}

func TestIdentityKeysAreDisjoint(t *testing.T) {
	keys := []string{Persisted{ID: "1"}.Key(), New{LocalID: "1"}.Key(), Placeholder{Slot: "1"}.Key()}
	assert.NotEqual(t, keys[0], keys[1])
	assert.NotEqual(t, keys[0], keys[2])
	assert.NotEqual(t, keys[1], keys[2])
}

func TestIDGenerator_Monotonic(t *testing.T) {
	var g IDGenerator
	assert.Equal(t, "1", g.Next())
	assert.Equal(t, "2", g.Next())

	var other IDGenerator
	assert.Equal(t, "1", other.Next(), "generators are independent")
}

func TestNewRow_Date(t *testing.T) {
	var g IDGenerator
	april := domain.NewPeriod(2024, time.April)
	row := NewRow(&g, april, testNow, Defaults{UserID: "u2"})
	assert.Equal(t, KindNew, row.Kind())
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), row.Entry.Date)
	assert.Equal(t, "u2", row.Entry.UserID)
	assert.Empty(t, row.Entry.StartTime)
	assert.False(t, row.Entry.Duration.Valid)

	may := domain.NewPeriod(2024, time.May)
	row = NewRow(&g, may, testNow, Defaults{})
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), row.Entry.Date)
	assert.NotEqual(t, "1", row.Identity.(New).LocalID)
}

func TestDuplicateRow(t *testing.T) {
	var g IDGenerator
	origin := domain.Entry{
		ID:         "srv-1",
		UserID:     "u1",
		Date:       time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		StartTime:  "08:00",
		EndTime:    "12:00",
		Duration:   decimal.NewNullDecimal(decimal.NewFromInt(4)),
		ClientID:   "c1",
		ActivityID: "a1",
		Notes:      "standup",
		ModifiedAt: testNow,
	}
	row := DuplicateRow(&g, origin)

	assert.Equal(t, KindNew, row.Kind())
	assert.Empty(t, row.Entry.ID)
	assert.Equal(t, origin.Fields(), row.Entry.Fields())
	got, ok := row.Origin()
	require.True(t, ok)
	assert.Equal(t, origin, got)

	row.Entry.Notes = "changed"
	got, _ = row.Origin()
	assert.Equal(t, "standup", got.Notes, "origin is a snapshot")
}

func TestUnchangedFromOrigin(t *testing.T) {
	origin := domain.Entry{Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), StartTime: "08:00", EndTime: "09:00"}
	f := origin.Fields()
	f.Notes = "other notes"
	f.ClientID = "other"
	assert.True(t, unchangedFromOrigin(f, origin), "only date and times count")

	f.EndTime = "10:00"
	assert.False(t, unchangedFromOrigin(f, origin))
}
