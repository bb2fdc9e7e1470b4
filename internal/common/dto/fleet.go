package dto

// SaveTenantRequest provisions a tenant account in the control database
type SaveTenantRequest struct {
	DatabaseName string `json:"databaseName" binding:"required"`
	DatabaseUser string `json:"databaseUser" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Folder       string `json:"folder" binding:"required"`
}

// SaveManagerRequest creates or updates a fleet manager. ID zero means
// create.
type SaveManagerRequest struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name" binding:"required"`
	Password  string        `json:"password" binding:"required"`
	Telephone string        `json:"telephone"`
	Email     string        `json:"email"`
	Rights    ManagerRights `json:"rights"`
}

// ManagerRights mirrors the per-area permission flags of a manager
type ManagerRights struct {
	Superadmin  bool `json:"superadmin"`
	Managers    bool `json:"managers"`
	Drivers     bool `json:"drivers"`
	Vehicles    bool `json:"vehicles"`
	VehicleData bool `json:"vehicleData"`
	ManagerLogs bool `json:"managerLogs"`
	DriverLogs  bool `json:"driverLogs"`
	VehicleLogs bool `json:"vehicleLogs"`
	Expenses    bool `json:"expenses"`
	Categories  bool `json:"categories"`
}

// SaveDriverRequest creates or updates a driver. ID zero means create.
// The licence photo arrives as a multipart file alongside this form.
type SaveDriverRequest struct {
	ID                uint   `form:"id" json:"id"`
	Name              string `form:"name" json:"name" binding:"required"`
	Password          string `form:"password" json:"password" binding:"required"`
	Telephone         string `form:"telephone" json:"telephone"`
	Email             string `form:"email" json:"email"`
	Birthdate         string `form:"birthdate" json:"birthdate"`
	LicenceValidity   string `form:"licenceValidity" json:"licenceValidity"`
	LicenceCategories string `form:"licenceCategories" json:"licenceCategories"`
	Active            bool   `form:"active" json:"active"`
	Remarks           string `form:"remarks" json:"remarks"`
	VehicleID         uint   `form:"vehicleId" json:"vehicleId"`
}

// SaveVehicleRequest creates or updates a vehicle. ID zero means create.
// The registration certificate arrives as a multipart file.
type SaveVehicleRequest struct {
	ID          uint   `form:"id" json:"id"`
	Name        string `form:"name" json:"name" binding:"required"`
	Numberplate string `form:"numberplate" json:"numberplate" binding:"required"`
	Fuel        string `form:"fuel" json:"fuel"`
	StartDate   string `form:"startDate" json:"startDate"`
	TyreSize    string `form:"tyreSize" json:"tyreSize"`
	Oil         string `form:"oil" json:"oil"`
}

// SaveVehicleDataRequest creates or updates a dated vehicle record such
// as an inspection or insurance period. ID zero means create.
type SaveVehicleDataRequest struct {
	ID        uint   `form:"id" json:"id"`
	VehicleID uint   `form:"vehicleId" json:"vehicleId" binding:"required"`
	Type      string `form:"type" json:"type" binding:"required"`
	Km        int    `form:"km" json:"km"`
	DateStart string `form:"dateStart" json:"dateStart" binding:"required"`
	DateEnd   string `form:"dateEnd" json:"dateEnd" binding:"required"`
	Remarks   string `form:"remarks" json:"remarks"`
}

// VehicleDataFilterRequest narrows vehicle data queries. Vehicle, Type
// and Status accept the "all" wildcard.
type VehicleDataFilterRequest struct {
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	Vehicle string `json:"vehicle" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// SaveExpenseRequest creates or updates an expense. ID zero means create.
type SaveExpenseRequest struct {
	ID        uint    `form:"id" json:"id"`
	Time      string  `form:"time" json:"time" binding:"required"`
	DriverID  uint    `form:"driverId" json:"driverId" binding:"required"`
	VehicleID uint    `form:"vehicleId" json:"vehicleId" binding:"required"`
	Km        int     `form:"km" json:"km"`
	Type      string  `form:"type" json:"type" binding:"required"`
	Cost      float64 `form:"cost" json:"cost"`
	Remarks   string  `form:"remarks" json:"remarks"`
}

// QuickExpenseRequest records an expense from the driver panel. The
// driver is taken from the session and the time is the server clock.
// The receipt photo may arrive as a multipart "photo" file.
type QuickExpenseRequest struct {
	VehicleID uint    `form:"vehicleId" json:"vehicleId" binding:"required"`
	Km        int     `form:"km" json:"km"`
	Type      string  `form:"type" json:"type" binding:"required"`
	Cost      float64 `form:"cost" json:"cost"`
	Remarks   string  `form:"remarks" json:"remarks"`
}

// ExpenseFilterRequest narrows expense queries. Vehicle, Type and Driver
// accept the "all" wildcard.
type ExpenseFilterRequest struct {
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	Vehicle string `json:"vehicle" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Driver  string `json:"driver" binding:"required"`
}

// SaveCategoryRequest creates or renames a category. ID zero means create.
type SaveCategoryRequest struct {
	ID   uint   `json:"id"`
	Name string `json:"name" binding:"required"`
}

// ShiftLogFilterRequest narrows shift queries. Vehicle and Driver accept
// the "all" wildcard.
type ShiftLogFilterRequest struct {
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	Vehicle string `json:"vehicle" binding:"required"`
	Driver  string `json:"driver" binding:"required"`
}

// UpdateShiftLogRequest rewrites one shift event row
type UpdateShiftLogRequest struct {
	ID        uint   `json:"id" binding:"required"`
	Time      string `json:"time" binding:"required"`
	DriverID  uint   `json:"driverId" binding:"required"`
	VehicleID uint   `json:"vehicleId" binding:"required"`
	Km        int    `json:"km"`
}

// AuditLogFilterRequest narrows audit log queries. Manager accepts the
// "all" wildcard.
type AuditLogFilterRequest struct {
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	Manager string `json:"manager" binding:"required"`
}

// ShiftToggleRequest opens or closes the calling driver's shift
type ShiftToggleRequest struct {
	VehicleID uint `form:"vehicleId" json:"vehicleId" binding:"required"`
	Km        int  `form:"km" json:"km" binding:"required"`
}

// PanelVehicleDataRequest asks for the latest record of one type for a
// vehicle
type PanelVehicleDataRequest struct {
	VehicleID uint   `json:"vehicleId" binding:"required"`
	Type      string `json:"type" binding:"required"`
}
