package tenant

import (
	"time"

	"github.com/openfleet/fleetgate/internal/audit"

	"gorm.io/gorm"
)

// FleetManager is an administrative user inside one tenant database. The
// stored password is a reversible ciphertext under the system cipher, not
// a hash; login re-encrypts the presented password and compares
// ciphertexts.
type FleetManager struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"`
	Telephone string `json:"telephone" gorm:"type:varchar(32)"`
	Email     string `json:"email" gorm:"type:varchar(128)"`
}

func (FleetManager) TableName() string { return "fleet_managers" }

// FleetManagerRights is the per-manager permission matrix.
type FleetManagerRights struct {
	ID             uint `json:"id" gorm:"primaryKey;autoIncrement"`
	FleetManagerID uint `json:"fleetManagerId" gorm:"uniqueIndex;not null"`
	Superadmin     bool `json:"superadmin"`
	Managers       bool `json:"managers" gorm:"column:fleet_managers"`
	Drivers        bool `json:"drivers"`
	Vehicles       bool `json:"vehicles"`
	VehicleData    bool `json:"vehicleData" gorm:"column:vehicle_data"`
	ManagerLogs    bool `json:"managerLogs" gorm:"column:fleet_manager_logs"`
	DriverLogs     bool `json:"driverLogs" gorm:"column:driver_logs"`
	VehicleLogs    bool `json:"vehicleLogs" gorm:"column:vehicle_logs"`
	Expenses       bool `json:"expenses"`
	Categories     bool `json:"categories"`
}

func (FleetManagerRights) TableName() string { return "fleet_manager_rights" }

// Driver is a vehicle operator. Password storage follows the fleet-manager
// scheme. Status flips between IN and OUT as the driver takes and returns
// vehicles.
type Driver struct {
	ID                uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name              string `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	Password          string `json:"-" gorm:"not null"`
	Telephone         string `json:"telephone" gorm:"type:varchar(32)"`
	Email             string `json:"email" gorm:"type:varchar(128)"`
	Birthdate         string `json:"birthdate" gorm:"type:varchar(10)"`
	Licence           string `json:"licence" gorm:"column:driving_licence;type:varchar(255)"`
	LicenceValidity   string `json:"licenceValidity" gorm:"column:driving_licence_validity;type:varchar(10)"`
	LicenceCategories string `json:"licenceCategories" gorm:"column:driving_licence_categories;type:varchar(32)"`
	Active            bool   `json:"active"`
	Remarks           string `json:"remarks" gorm:"type:text"`
	VehicleID         uint   `json:"vehicleId"`
	Status            string `json:"status" gorm:"type:varchar(3);default:'OUT'"`
}

func (Driver) TableName() string { return "drivers" }

// Vehicle is a fleet vehicle.
type Vehicle struct {
	ID                      uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name                    string `json:"name" gorm:"type:varchar(64);not null"`
	Numberplate             string `json:"numberplate" gorm:"type:varchar(16);not null"`
	Fuel                    string `json:"fuel" gorm:"type:varchar(16)"`
	RegistrationCertificate string `json:"registrationCertificate" gorm:"type:varchar(255)"`
	StartDate               string `json:"startDate" gorm:"column:start_date;type:varchar(10)"`
	TyreSize                string `json:"tyreSize" gorm:"column:tyre_size;type:varchar(16)"`
	Oil                     string `json:"oil" gorm:"type:varchar(32)"`
}

func (Vehicle) TableName() string { return "vehicles" }

// VehicleData is a dated record attached to a vehicle: insurance,
// inspection (tuv), oil change and similar. Date columns hold ISO dates so
// range comparisons stay portable across drivers.
type VehicleData struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	VehicleID uint   `json:"vehicleId" gorm:"index;not null"`
	Type      string `json:"type" gorm:"type:varchar(32);not null"`
	Km        int    `json:"km"`
	DateStart string `json:"dateStart" gorm:"column:date_start;type:varchar(10)"`
	DateEnd   string `json:"dateEnd" gorm:"column:date_end;type:varchar(10)"`
	Remarks   string `json:"remarks" gorm:"type:text"`
	Photo     string `json:"photo" gorm:"type:varchar(255)"`
}

func (VehicleData) TableName() string { return "vehicle_data" }

// DriverLog is one IN or OUT shift event.
type DriverLog struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Time      time.Time `json:"time" gorm:"index;not null"`
	DriverID  uint      `json:"driverId" gorm:"index;not null"`
	VehicleID uint      `json:"vehicleId" gorm:"index;not null"`
	Km        int       `json:"km"`
	Action    string    `json:"action" gorm:"type:varchar(3);not null"`
	Photos    string    `json:"photos" gorm:"type:text"`
}

func (DriverLog) TableName() string { return "driver_logs" }

// VehicleExpense is a cost record reported against a vehicle.
type VehicleExpense struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Time      time.Time `json:"time" gorm:"index;not null"`
	DriverID  uint      `json:"driverId" gorm:"index"`
	VehicleID uint      `json:"vehicleId" gorm:"index;not null"`
	Km        int       `json:"km"`
	Type      string    `json:"type" gorm:"type:varchar(32)"`
	Cost      float64   `json:"cost"`
	Remarks   string    `json:"remarks" gorm:"type:text"`
	Photo     string    `json:"photo" gorm:"type:varchar(255)"`
}

func (VehicleExpense) TableName() string { return "vehicle_expenses" }

// Category is an expense category.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"type:varchar(64);not null"`
}

func (Category) TableName() string { return "categories" }

// MasterLogin holds the superadmin master password as a one-way hash.
type MasterLogin struct {
	ID             uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	MasterPassword string `json:"-" gorm:"column:masterpassword;not null"`
}

func (MasterLogin) TableName() string { return "masterlogin" }

// AutoMigrate creates the tenant schema on the given handle.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&FleetManager{},
		&FleetManagerRights{},
		&Driver{},
		&Vehicle{},
		&VehicleData{},
		&DriverLog{},
		&VehicleExpense{},
		&Category{},
		&MasterLogin{},
		&audit.LogEntry{},
	)
}
