package cnst

// Audit action names written to the tenant logs table. These are stable
// identifiers consumed by reporting tools; do not rename.
const (
	ActionNewManagerCreated = "NEW MANAGER CREATED"
	ActionManagerUpdated    = "MANAGER UPDATED"

	ActionNewDriverCreated = "NEW DRIVER CREATED"
	ActionDriverUpdated    = "DRIVER UPDATED"

	ActionNewVehicleCreated = "NEW VEHICLE CREATED"
	ActionVehicleUpdated    = "VEHICLE UPDATED"

	ActionNewVehicleDataCreated   = "NEW VEHICLE DATA CREATED"
	ActionVehicleDataUpdated      = "VEHICLE DATA UPDATED"
	ActionVehicleDataPhotoRemoved = "VEHICLE DATA - PHOTO REMOVED"
	ActionVehicleDataRowRemoved   = "VEHICLE DATA - RECORD REMOVED"

	ActionNewExpenseIntroduced = "NEW EXPENSE INTRODUCED"
	ActionExpenseUpdated       = "EXPENSE UPDATED"

	ActionNewCategoryCreated = "NEW CATEGORY CREATED"
	ActionCategoryUpdated    = "CATEGORY UPDATED"

	ActionShiftLogUpdated = "VEHICLE & DRIVER LOG UPDATED"
)

// SuperadminActorID is the sentinel actor id recorded in audit rows for
// actions performed outside any fleet-manager identity.
const SuperadminActorID = -1

// Wildcard is the filter value that disables a filter dimension.
const Wildcard = "all"

// Driver shift directions stored in driver_logs.action and drivers.status.
const (
	ShiftIn  = "IN"
	ShiftOut = "OUT"
)
