package tenant

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/openfleet/fleetgate/internal/audit"
	"github.com/openfleet/fleetgate/internal/common/cnst"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func testTenantDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tenant.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestManagers_CreateAndLookup(t *testing.T) {
	db := testTenantDB(t)

	m := &FleetManager{Name: "alice", Password: "ciphertext", Email: "a@acme.test"}
	rights := &FleetManagerRights{Drivers: true, Vehicles: true}
	require.NoError(t, CreateManager(db, m, rights))
	assert.NotZero(t, m.ID)
	assert.Equal(t, m.ID, rights.FleetManagerID)

	got, err := GetManagerByName(db, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ciphertext", got.Password)

	missing, err := GetManagerByName(db, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestManagers_Update(t *testing.T) {
	db := testTenantDB(t)

	m := &FleetManager{Name: "alice", Password: "old"}
	require.NoError(t, CreateManager(db, m, &FleetManagerRights{}))

	m.Password = "new"
	m.Telephone = "555-1234"
	require.NoError(t, UpdateManager(db, m, &FleetManagerRights{Expenses: true}))

	got, err := GetManagerByName(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)
	assert.Equal(t, "555-1234", got.Telephone)

	var rights FleetManagerRights
	require.NoError(t, db.Where("fleet_manager_id = ?", m.ID).First(&rights).Error)
	assert.True(t, rights.Expenses)
	assert.False(t, rights.Drivers)
}

func TestFilterVehicleData(t *testing.T) {
	db := testTenantDB(t)

	van := &Vehicle{Name: "Van", Numberplate: "B-1111"}
	truck := &Vehicle{Name: "Truck", Numberplate: "B-2222"}
	require.NoError(t, db.Create(van).Error)
	require.NoError(t, db.Create(truck).Error)

	rows := []*VehicleData{
		{VehicleID: van.ID, Type: "insurance", DateStart: "2026-01-01", DateEnd: "2026-12-31"},
		{VehicleID: van.ID, Type: "tuv", DateStart: "2025-01-01", DateEnd: "2025-06-30"},
		{VehicleID: truck.ID, Type: "insurance", DateStart: "2026-03-01", DateEnd: "2027-02-28"},
	}
	for _, r := range rows {
		require.NoError(t, CreateVehicleData(db, r))
	}

	all, err := FilterVehicleData(db, VehicleDataFilter{
		From: "2025-01-01", To: "2027-12-31",
		Vehicle: cnst.Wildcard, Type: cnst.Wildcard, Status: cnst.Wildcard,
	})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	vanOnly, err := FilterVehicleData(db, VehicleDataFilter{
		From: "2025-01-01", To: "2027-12-31",
		Vehicle: itoa(van.ID), Type: cnst.Wildcard, Status: cnst.Wildcard,
	})
	require.NoError(t, err)
	assert.Len(t, vanOnly, 2)

	insurance, err := FilterVehicleData(db, VehicleDataFilter{
		From: "2025-01-01", To: "2027-12-31",
		Vehicle: cnst.Wildcard, Type: "insurance", Status: cnst.Wildcard,
	})
	require.NoError(t, err)
	assert.Len(t, insurance, 2)

	// the 2025 tuv period has ended
	expired, err := FilterVehicleData(db, VehicleDataFilter{
		From: "2025-01-01", To: "2027-12-31",
		Vehicle: cnst.Wildcard, Type: cnst.Wildcard, Status: "expired",
	})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "tuv", expired[0].Type)

	// date range excluding everything
	none, err := FilterVehicleData(db, VehicleDataFilter{
		From: "2030-01-01", To: "2030-12-31",
		Vehicle: cnst.Wildcard, Type: cnst.Wildcard, Status: cnst.Wildcard,
	})
	require.NoError(t, err)
	assert.Len(t, none, 0)
}

func TestLatestVehicleData(t *testing.T) {
	db := testTenantDB(t)
	van := &Vehicle{Name: "Van", Numberplate: "B-1111"}
	require.NoError(t, db.Create(van).Error)

	require.NoError(t, CreateVehicleData(db, &VehicleData{VehicleID: van.ID, Type: "tuv", DateStart: "2024-01-01", DateEnd: "2024-12-31"}))
	require.NoError(t, CreateVehicleData(db, &VehicleData{VehicleID: van.ID, Type: "tuv", DateStart: "2026-01-01", DateEnd: "2026-12-31"}))

	latest, err := LatestVehicleData(db, van.ID, "tuv")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2026-01-01", latest.DateStart)

	none, err := LatestVehicleData(db, van.ID, "oil")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestShiftLogs_LastKmAndPairing(t *testing.T) {
	db := testTenantDB(t)

	d := &Driver{Name: "bob", Password: "x", Active: true}
	require.NoError(t, CreateDriver(db, d))
	v := &Vehicle{Name: "Van", Numberplate: "B-1111"}
	require.NoError(t, db.Create(v).Error)

	base := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	events := []*DriverLog{
		{Time: base, DriverID: d.ID, VehicleID: v.ID, Km: 1000, Action: cnst.ShiftIn},
		{Time: base.Add(8 * time.Hour), DriverID: d.ID, VehicleID: v.ID, Km: 1200, Action: cnst.ShiftOut},
		{Time: base.Add(24 * time.Hour), DriverID: d.ID, VehicleID: v.ID, Km: 1200, Action: cnst.ShiftIn},
	}
	for _, e := range events {
		require.NoError(t, CreateDriverLog(db, e))
	}

	km, err := LastKm(db, d.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, km)

	last, err := LastDriverLog(db, d.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, cnst.ShiftIn, last.Action)

	rows, err := FilterShiftLogs(db, ShiftLogFilter{
		From: "2026-05-01", To: "2026-05-31",
		Vehicle: cnst.Wildcard, Driver: cnst.Wildcard,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// first shift is closed, second still open
	assert.NotNil(t, rows[0].OutID)
	assert.Equal(t, 1000, rows[0].KmStart)
	require.NotNil(t, rows[0].KmEnd)
	assert.Equal(t, 1200, *rows[0].KmEnd)
	assert.Equal(t, "bob", rows[0].Driver)
	assert.Nil(t, rows[1].OutID)
}

func TestAttachShiftPhotos(t *testing.T) {
	db := testTenantDB(t)

	d := &Driver{Name: "bob", Password: "x", Active: true}
	require.NoError(t, CreateDriver(db, d))
	v := &Vehicle{Name: "Van", Numberplate: "B-1111"}
	require.NoError(t, db.Create(v).Error)

	require.NoError(t, CreateDriverLog(db, &DriverLog{
		Time: time.Now(), DriverID: d.ID, VehicleID: v.ID, Km: 500, Action: cnst.ShiftIn,
	}))

	n, err := AttachShiftPhotos(db, d.ID, v.ID, 500, "a.jpg;b.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var dl DriverLog
	require.NoError(t, db.First(&dl).Error)
	assert.Equal(t, "a.jpg;b.jpg", dl.Photos)

	// no event with that km reading
	n, err = AttachShiftPhotos(db, d.ID, v.ID, 9999, "c.jpg")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFilterExpenses(t *testing.T) {
	db := testTenantDB(t)

	d := &Driver{Name: "bob", Password: "x", Active: true}
	require.NoError(t, CreateDriver(db, d))
	v := &Vehicle{Name: "Van", Numberplate: "B-1111"}
	require.NoError(t, db.Create(v).Error)

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, CreateExpense(db, &VehicleExpense{
		Time: at, DriverID: d.ID, VehicleID: v.ID, Km: 1100, Type: "fuel", Cost: 80.5,
	}))
	require.NoError(t, CreateExpense(db, &VehicleExpense{
		Time: at.AddDate(0, 1, 0), DriverID: d.ID, VehicleID: v.ID, Km: 1500, Type: "service", Cost: 300,
	}))

	all, err := FilterExpenses(db, ExpenseFilter{
		From: "2026-06-01", To: "2026-07-31",
		Vehicle: cnst.Wildcard, Type: cnst.Wildcard, Driver: cnst.Wildcard,
	})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fuel, err := FilterExpenses(db, ExpenseFilter{
		From: "2026-06-01", To: "2026-07-31",
		Vehicle: cnst.Wildcard, Type: "fuel", Driver: cnst.Wildcard,
	})
	require.NoError(t, err)
	require.Len(t, fuel, 1)
	assert.Equal(t, "bob", fuel[0].Driver)
	assert.Equal(t, "Van", fuel[0].Vehicle)
	assert.Equal(t, 80.5, fuel[0].Cost)

	june, err := FilterExpenses(db, ExpenseFilter{
		From: "2026-06-01", To: "2026-06-30",
		Vehicle: cnst.Wildcard, Type: cnst.Wildcard, Driver: cnst.Wildcard,
	})
	require.NoError(t, err)
	assert.Len(t, june, 1)
}

func TestFilterAuditLogs_ActorNames(t *testing.T) {
	db := testTenantDB(t)

	m := &FleetManager{Name: "alice", Password: "x"}
	require.NoError(t, CreateManager(db, m, &FleetManagerRights{}))

	require.NoError(t, audit.Record(db, int64(m.ID), cnst.ActionNewDriverCreated, "bob", "10.0.0.1"))
	require.NoError(t, audit.Record(db, cnst.SuperadminActorID, cnst.ActionNewVehicleCreated, "Van (B-1111)", "10.0.0.2"))
	require.NoError(t, audit.Record(db, 9876, cnst.ActionCategoryUpdated, "fuel", "10.0.0.3"))

	rows, err := FilterAuditLogs(db, AuditLogFilter{
		From: "2000-01-01", To: "2100-01-01", Manager: cnst.Wildcard,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "alice", rows[0].Manager)
	assert.Equal(t, "Superadmin", rows[1].Manager)
	// deleted or unknown manager renders as a dash
	assert.Equal(t, "-", rows[2].Manager)

	aliceOnly, err := FilterAuditLogs(db, AuditLogFilter{
		From: "2000-01-01", To: "2100-01-01", Manager: itoa(m.ID),
	})
	require.NoError(t, err)
	require.Len(t, aliceOnly, 1)
	assert.Equal(t, cnst.ActionNewDriverCreated, aliceOnly[0].Action)
	assert.Equal(t, "10.0.0.1", aliceOnly[0].ClientAddr)
}

func TestGetMasterPasswordHash(t *testing.T) {
	db := testTenantDB(t)

	hash, err := GetMasterPasswordHash(db)
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, db.Create(&MasterLogin{MasterPassword: "$2a$10$fake"}).Error)
	hash, err = GetMasterPasswordHash(db)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$fake", hash)
}
