package entity

// History action constants for ClaimHistory
const (
	ActionSubmit              = "SUBMIT"
	ActionSetStatus           = "SET_STATUS"
	ActionArchive             = "ARCHIVE"
	ActionAutoVerify          = "AUTO_VERIFY"
	ActionAssignInsurerNumber = "ASSIGN_INSURER_NUMBER"
)

// Role constants issued by the identity provider
const (
	RoleClient   = "client"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// SystemActor is recorded as the actor of automatic transitions
const SystemActor = "system"
