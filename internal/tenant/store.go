package tenant

import (
	"errors"
	"strings"
	"time"

	"github.com/openfleet/fleetgate/internal/common/cnst"

	"gorm.io/gorm"
)

// predicate is one parameterized filter condition. Filters are assembled
// as predicate lists and bound through placeholders; request values never
// reach query text.
type predicate struct {
	expr string
	args []any
}

type predicates []predicate

func (ps predicates) apply(q *gorm.DB) *gorm.DB {
	for _, p := range ps {
		q = q.Where(p.expr, p.args...)
	}
	return q
}

func (ps predicates) clause() (string, []any) {
	if len(ps) == 0 {
		return "1=1", nil
	}
	exprs := make([]string, 0, len(ps))
	var args []any
	for _, p := range ps {
		exprs = append(exprs, p.expr)
		args = append(args, p.args...)
	}
	return strings.Join(exprs, " AND "), args
}

// today returns the current date in the ISO format the date columns use.
func today() string {
	return time.Now().Format("2006-01-02")
}

// --- fleet managers ---

// GetManagerByName returns a fleet manager row, or nil when absent.
// Callers must not reveal to clients which of the two happened.
func GetManagerByName(db *gorm.DB, name string) (*FleetManager, error) {
	var m FleetManager
	err := db.Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateManager inserts a manager and its rights row.
func CreateManager(tx *gorm.DB, m *FleetManager, rights *FleetManagerRights) error {
	if err := tx.Create(m).Error; err != nil {
		return err
	}
	rights.FleetManagerID = m.ID
	return tx.Create(rights).Error
}

// UpdateManager updates a manager and its rights row.
func UpdateManager(tx *gorm.DB, m *FleetManager, rights *FleetManagerRights) error {
	if err := tx.Model(&FleetManager{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":      m.Name,
		"password":  m.Password,
		"telephone": m.Telephone,
		"email":     m.Email,
	}).Error; err != nil {
		return err
	}
	return tx.Model(&FleetManagerRights{}).Where("fleet_manager_id = ?", m.ID).Updates(map[string]any{
		"superadmin":         rights.Superadmin,
		"fleet_managers":     rights.Managers,
		"drivers":            rights.Drivers,
		"vehicles":           rights.Vehicles,
		"vehicle_data":       rights.VehicleData,
		"fleet_manager_logs": rights.ManagerLogs,
		"driver_logs":        rights.DriverLogs,
		"vehicle_logs":       rights.VehicleLogs,
		"expenses":           rights.Expenses,
		"categories":         rights.Categories,
	}).Error
}

// ListManagers returns all managers with their rights.
func ListManagers(db *gorm.DB) ([]*FleetManager, error) {
	var ms []*FleetManager
	if err := db.Order("name").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// --- drivers ---

// GetDriverByName returns a driver row, or nil when absent.
func GetDriverByName(db *gorm.DB, name string) (*Driver, error) {
	var d Driver
	err := db.Where("name = ?", name).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDriver returns a driver by id.
func GetDriver(db *gorm.DB, id uint) (*Driver, error) {
	var d Driver
	if err := db.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDriver inserts a driver.
func CreateDriver(tx *gorm.DB, d *Driver) error {
	return tx.Create(d).Error
}

// UpdateDriver updates a driver. The licence path is only written when a
// new file was stored with this update.
func UpdateDriver(tx *gorm.DB, d *Driver, withLicence bool) error {
	values := map[string]any{
		"name":                       d.Name,
		"password":                   d.Password,
		"telephone":                  d.Telephone,
		"email":                      d.Email,
		"birthdate":                  d.Birthdate,
		"driving_licence_validity":   d.LicenceValidity,
		"driving_licence_categories": d.LicenceCategories,
		"active":                     d.Active,
		"remarks":                    d.Remarks,
		"vehicle_id":                 d.VehicleID,
	}
	if withLicence {
		values["driving_licence"] = d.Licence
	}
	return tx.Model(&Driver{}).Where("id = ?", d.ID).Updates(values).Error
}

// SetDriverStatus flips a driver between IN and OUT.
func SetDriverStatus(tx *gorm.DB, driverID uint, status string) error {
	return tx.Model(&Driver{}).Where("id = ?", driverID).Update("status", status).Error
}

// --- vehicles ---

// GetVehicle returns a vehicle by id.
func GetVehicle(db *gorm.DB, id uint) (*Vehicle, error) {
	var v Vehicle
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVehicles returns all vehicles ordered by name and numberplate.
func ListVehicles(db *gorm.DB) ([]*Vehicle, error) {
	var vs []*Vehicle
	if err := db.Order("name, numberplate").Find(&vs).Error; err != nil {
		return nil, err
	}
	return vs, nil
}

// CreateVehicle inserts a vehicle.
func CreateVehicle(tx *gorm.DB, v *Vehicle) error {
	return tx.Create(v).Error
}

// UpdateVehicle updates a vehicle. The certificate path is only written
// when a new file was stored with this update.
func UpdateVehicle(tx *gorm.DB, v *Vehicle, withCertificate bool) error {
	values := map[string]any{
		"name":        v.Name,
		"numberplate": v.Numberplate,
		"fuel":        v.Fuel,
		"start_date":  v.StartDate,
		"tyre_size":   v.TyreSize,
		"oil":         v.Oil,
	}
	if withCertificate {
		values["registration_certificate"] = v.RegistrationCertificate
	}
	return tx.Model(&Vehicle{}).Where("id = ?", v.ID).Updates(values).Error
}

// --- vehicle data ---

// VehicleDataFilter narrows vehicle data rows. The "all" wildcard disables
// a dimension; status active means date_end is today or later.
type VehicleDataFilter struct {
	From    string
	To      string
	Vehicle string
	Type    string
	Status  string
}

func (f VehicleDataFilter) predicates() predicates {
	ps := predicates{
		{expr: "b.date_start <= ?", args: []any{f.To}},
		{expr: "b.date_end >= ?", args: []any{f.From}},
	}
	if f.Vehicle != cnst.Wildcard {
		ps = append(ps, predicate{expr: "b.vehicle_id = ?", args: []any{f.Vehicle}})
	}
	if f.Type != cnst.Wildcard {
		ps = append(ps, predicate{expr: "b.type = ?", args: []any{f.Type}})
	}
	switch f.Status {
	case cnst.Wildcard:
	case "active":
		ps = append(ps, predicate{expr: "b.date_end >= ?", args: []any{today()}})
	default:
		ps = append(ps, predicate{expr: "b.date_end < ?", args: []any{today()}})
	}
	return ps
}

// VehicleDataRow is one filter result joined with its vehicle.
type VehicleDataRow struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Numberplate string  `json:"numberplate"`
	Type        string  `json:"type"`
	Km          int     `json:"km"`
	DateStart   string  `json:"dateStart"`
	DateEnd     string  `json:"dateEnd"`
	Remarks     string  `json:"remarks"`
	Photo       string  `json:"photo"`
}

// FilterVehicleData returns vehicle data rows matching the filter.
func FilterVehicleData(db *gorm.DB, f VehicleDataFilter) ([]*VehicleDataRow, error) {
	var rows []*VehicleDataRow
	q := db.Table("vehicles a").
		Select("b.id, a.name, a.numberplate, b.type, b.km, b.date_start, b.date_end, b.remarks, b.photo").
		Joins("JOIN vehicle_data b ON a.id = b.vehicle_id")
	if err := f.predicates().apply(q).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetVehicleData returns a vehicle data row by id.
func GetVehicleData(db *gorm.DB, id uint) (*VehicleData, error) {
	var vd VehicleData
	if err := db.Where("id = ?", id).First(&vd).Error; err != nil {
		return nil, err
	}
	return &vd, nil
}

// CreateVehicleData inserts a vehicle data row.
func CreateVehicleData(tx *gorm.DB, vd *VehicleData) error {
	return tx.Create(vd).Error
}

// UpdateVehicleData updates a vehicle data row. The photo path is only
// written when a new file was stored with this update.
func UpdateVehicleData(tx *gorm.DB, vd *VehicleData, withPhoto bool) error {
	values := map[string]any{
		"vehicle_id": vd.VehicleID,
		"type":       vd.Type,
		"km":         vd.Km,
		"date_start": vd.DateStart,
		"date_end":   vd.DateEnd,
		"remarks":    vd.Remarks,
	}
	if withPhoto {
		values["photo"] = vd.Photo
	}
	return tx.Model(&VehicleData{}).Where("id = ?", vd.ID).Updates(values).Error
}

// ClearVehicleDataPhoto blanks the photo path of a vehicle data row.
func ClearVehicleDataPhoto(tx *gorm.DB, id uint) error {
	return tx.Model(&VehicleData{}).Where("id = ?", id).Update("photo", "").Error
}

// DeleteVehicleData removes a vehicle data row.
func DeleteVehicleData(tx *gorm.DB, id uint) error {
	return tx.Where("id = ?", id).Delete(&VehicleData{}).Error
}

// LatestVehicleData returns the most recent row of a given type for a
// vehicle, or nil when the vehicle has none.
func LatestVehicleData(db *gorm.DB, vehicleID uint, dataType string) (*VehicleData, error) {
	var vd VehicleData
	err := db.Where("type = ? AND vehicle_id = ?", dataType, vehicleID).
		Order("date_start DESC").
		First(&vd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vd, nil
}

// --- driver logs (shifts) ---

// CreateDriverLog appends one IN or OUT shift event.
func CreateDriverLog(tx *gorm.DB, dl *DriverLog) error {
	return tx.Create(dl).Error
}

// LastDriverLog returns a driver's most recent shift event, or nil.
func LastDriverLog(db *gorm.DB, driverID uint) (*DriverLog, error) {
	var dl DriverLog
	err := db.Where("driver_id = ?", driverID).Order("id DESC").First(&dl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dl, nil
}

// LastKm returns the odometer reading of the most recent shift event for a
// driver and vehicle pair.
func LastKm(db *gorm.DB, driverID, vehicleID uint) (int, error) {
	var dl DriverLog
	err := db.Where("driver_id = ? AND vehicle_id = ?", driverID, vehicleID).
		Order("time DESC").
		First(&dl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return dl.Km, nil
}

// AttachShiftPhotos sets the photo list on the latest shift event matching
// the driver, vehicle and odometer reading. Returns the number of rows
// updated.
func AttachShiftPhotos(tx *gorm.DB, driverID, vehicleID uint, km int, photos string) (int64, error) {
	sub := tx.Session(&gorm.Session{NewDB: true}).
		Model(&DriverLog{}).
		Select("id").
		Where("driver_id = ? AND vehicle_id = ? AND km = ?", driverID, vehicleID, km).
		Order("id DESC").
		Limit(1)
	res := tx.Model(&DriverLog{}).Where("id = (?)", sub).Update("photos", photos)
	return res.RowsAffected, res.Error
}

// UpdateDriverLog rewrites one shift event row.
func UpdateDriverLog(tx *gorm.DB, id uint, at time.Time, driverID, vehicleID uint, km int) error {
	return tx.Model(&DriverLog{}).Where("id = ?", id).Updates(map[string]any{
		"time":       at,
		"driver_id":  driverID,
		"vehicle_id": vehicleID,
		"km":         km,
	}).Error
}

// ShiftLogFilter narrows paired shift rows by time range, vehicle and driver.
type ShiftLogFilter struct {
	From    string
	To      string
	Vehicle string
	Driver  string
}

func (f ShiftLogFilter) predicates() predicates {
	var ps predicates
	if f.Vehicle != cnst.Wildcard {
		ps = append(ps, predicate{expr: "shift_in.vehicle_id = ?", args: []any{f.Vehicle}})
	}
	if f.Driver != cnst.Wildcard {
		ps = append(ps, predicate{expr: "shift_in.driver_id = ?", args: []any{f.Driver}})
	}
	return ps
}

// ShiftRow is one IN event paired with its closing OUT event.
type ShiftRow struct {
	InID        uint   `json:"inId" gorm:"column:inid"`
	OutID       *uint  `json:"outId" gorm:"column:outid"`
	ShiftStart  string `json:"shiftStart" gorm:"column:shift_start"`
	ShiftEnd    string `json:"shiftEnd" gorm:"column:shift_end"`
	Driver      string `json:"driver"`
	Vehicle     string `json:"vehicle"`
	Numberplate string `json:"numberplate"`
	KmStart     int    `json:"kmStart" gorm:"column:km_start"`
	KmEnd       *int   `json:"kmEnd" gorm:"column:km_end"`
	PhotosIn    string `json:"photosIn" gorm:"column:photos_in"`
	PhotosOut   string `json:"photosOut" gorm:"column:photos_out"`
}

// FilterShiftLogs pairs each IN event within the range with the first OUT
// event that follows it for the same driver and vehicle.
func FilterShiftLogs(db *gorm.DB, f ShiftLogFilter) ([]*ShiftRow, error) {
	where, args := f.predicates().clause()
	query := `
SELECT
    shift_in.id AS inid,
    shift_out.id AS outid,
    shift_in.time AS shift_start,
    shift_out.time AS shift_end,
    (SELECT drivers.name FROM drivers WHERE drivers.id = shift_in.driver_id) AS driver,
    (SELECT vehicles.name FROM vehicles WHERE vehicles.id = shift_in.vehicle_id) AS vehicle,
    (SELECT vehicles.numberplate FROM vehicles WHERE vehicles.id = shift_in.vehicle_id) AS numberplate,
    shift_in.km AS km_start,
    shift_out.km AS km_end,
    shift_in.photos AS photos_in,
    shift_out.photos AS photos_out
FROM driver_logs AS shift_in
LEFT JOIN driver_logs AS shift_out
    ON shift_in.driver_id = shift_out.driver_id
    AND shift_in.vehicle_id = shift_out.vehicle_id
    AND shift_out.time = (
        SELECT MIN(time) FROM driver_logs
        WHERE action = 'OUT'
          AND driver_id = shift_in.driver_id
          AND vehicle_id = shift_in.vehicle_id
          AND time > shift_in.time
          AND time BETWEEN ? AND ?
    )
WHERE shift_in.action = 'IN'
  AND shift_in.time BETWEEN ? AND ?
  AND ` + where

	all := append([]any{f.From, f.To, f.From, f.To}, args...)
	var rows []*ShiftRow
	if err := db.Raw(query, all...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- expenses ---

// ExpenseFilter narrows expense rows by date range, vehicle, type and driver.
type ExpenseFilter struct {
	From    string
	To      string
	Vehicle string
	Type    string
	Driver  string
}

func (f ExpenseFilter) predicates() predicates {
	ps := predicates{
		{expr: "date(a.time) >= ?", args: []any{f.From}},
		{expr: "date(a.time) <= ?", args: []any{f.To}},
	}
	if f.Vehicle != cnst.Wildcard {
		ps = append(ps, predicate{expr: "a.vehicle_id = ?", args: []any{f.Vehicle}})
	}
	if f.Type != cnst.Wildcard {
		ps = append(ps, predicate{expr: "a.type = ?", args: []any{f.Type}})
	}
	if f.Driver != cnst.Wildcard {
		ps = append(ps, predicate{expr: "a.driver_id = ?", args: []any{f.Driver}})
	}
	return ps
}

// ExpenseRow is one filter result joined with driver and vehicle names.
type ExpenseRow struct {
	ID          uint      `json:"id"`
	Time        time.Time `json:"time"`
	Driver      string    `json:"driver"`
	Vehicle     string    `json:"vehicle"`
	Numberplate string    `json:"numberplate"`
	Km          int       `json:"km"`
	Type        string    `json:"type"`
	Cost        float64   `json:"cost"`
	Remarks     string    `json:"remarks"`
	Photo       string    `json:"photo"`
}

// FilterExpenses returns expense rows matching the filter.
func FilterExpenses(db *gorm.DB, f ExpenseFilter) ([]*ExpenseRow, error) {
	var rows []*ExpenseRow
	q := db.Table("vehicle_expenses a").
		Select("a.id, a.time, b.name AS driver, c.name AS vehicle, c.numberplate, a.km, a.type, a.cost, a.remarks, a.photo").
		Joins("JOIN drivers b ON a.driver_id = b.id").
		Joins("JOIN vehicles c ON a.vehicle_id = c.id")
	if err := f.predicates().apply(q).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateExpense inserts an expense row.
func CreateExpense(tx *gorm.DB, e *VehicleExpense) error {
	return tx.Create(e).Error
}

// UpdateExpense updates an expense row. The photo path is only written
// when a new file was stored with this update.
func UpdateExpense(tx *gorm.DB, e *VehicleExpense, withPhoto bool) error {
	values := map[string]any{
		"time":       e.Time,
		"driver_id":  e.DriverID,
		"vehicle_id": e.VehicleID,
		"km":         e.Km,
		"type":       e.Type,
		"cost":       e.Cost,
		"remarks":    e.Remarks,
	}
	if withPhoto {
		values["photo"] = e.Photo
	}
	return tx.Model(&VehicleExpense{}).Where("id = ?", e.ID).Updates(values).Error
}

// --- categories ---

// CreateCategory inserts a category.
func CreateCategory(tx *gorm.DB, c *Category) error {
	return tx.Create(c).Error
}

// UpdateCategory renames a category.
func UpdateCategory(tx *gorm.DB, id uint, name string) error {
	return tx.Model(&Category{}).Where("id = ?", id).Update("name", name).Error
}

// ListCategories returns all categories.
func ListCategories(db *gorm.DB) ([]*Category, error) {
	var cs []*Category
	if err := db.Order("name").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

// --- audit log reads ---

// AuditLogFilter narrows audit rows by date range and acting manager.
type AuditLogFilter struct {
	From    string
	To      string
	Manager string
}

func (f AuditLogFilter) predicates() predicates {
	ps := predicates{
		{expr: "date(logs.time) >= ?", args: []any{f.From}},
		{expr: "date(logs.time) <= ?", args: []any{f.To}},
	}
	if f.Manager != cnst.Wildcard {
		ps = append(ps, predicate{expr: "logs.fleet_manager_id = ?", args: []any{f.Manager}})
	}
	return ps
}

// AuditLogRow is one audit entry with the actor resolved to a name. The
// -1 sentinel renders as Superadmin; a deleted manager renders as "-".
type AuditLogRow struct {
	Time       time.Time `json:"time"`
	Manager    string    `json:"manager"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	ClientAddr string    `json:"clientAddr" gorm:"column:ip_address"`
}

// FilterAuditLogs returns audit rows matching the filter.
func FilterAuditLogs(db *gorm.DB, f AuditLogFilter) ([]*AuditLogRow, error) {
	var rows []*AuditLogRow
	q := db.Table("logs").
		Select(`logs.time,
			COALESCE(CASE WHEN logs.fleet_manager_id = -1 THEN 'Superadmin'
				ELSE (SELECT name FROM fleet_managers WHERE fleet_managers.id = logs.fleet_manager_id) END, '-') AS manager,
			logs.action, logs.details, logs.ip_address`).
		Order("logs.time")
	if err := f.predicates().apply(q).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- master login ---

// GetMasterPasswordHash returns the stored superadmin master password
// hash, or empty when none is provisioned.
func GetMasterPasswordHash(db *gorm.DB) (string, error) {
	var ml MasterLogin
	err := db.First(&ml).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ml.MasterPassword, nil
}
