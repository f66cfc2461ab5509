package benchmark

// Operation names one measured benchmark operation.
type Operation string

const (
	OperationWrite            Operation = "write"
	OperationRead             Operation = "read"
	OperationUpdate           Operation = "update"
	OperationDelete           Operation = "delete"
	OperationRetentionQuery   Operation = "retentionQuery"
	OperationDemographicQuery Operation = "demographicQuery"
	OperationInactivityQuery  Operation = "inactivityQuery"

	// OperationClear is only used to label failures of Backend.ClearAll, it is never measured.
	OperationClear Operation = "clear"
)

// Operations returns all measured operations in reporting order.
func Operations() []Operation {
	return []Operation{
		OperationWrite,
		OperationRead,
		OperationUpdate,
		OperationDelete,
		OperationRetentionQuery,
		OperationDemographicQuery,
		OperationInactivityQuery,
	}
}

// CRUDOperations returns the operations a virtual user performs in one concurrency cycle.
func CRUDOperations() []Operation {
	return []Operation{OperationWrite, OperationRead, OperationUpdate, OperationDelete}
}

// order returns the reporting position of the operation, unknown operations sort last.
func (o Operation) order() int {
	for i, op := range Operations() {
		if op == o {
			return i
		}
	}

	return len(Operations())
}

// QueryKind selects one of the three fixed analytical queries.
type QueryKind string

const (
	// QueryRetention groups users by signup month and counts the ones that logged in during the last month.
	QueryRetention QueryKind = "retention"

	// QueryDemographic returns average age and user count per (country, status) for active and suspended users.
	QueryDemographic QueryKind = "demographic"

	// QueryInactivity returns up to 100 active users whose last login is more than 180 days ago.
	QueryInactivity QueryKind = "inactivity"
)

// QueryKinds returns all analytical query kinds in execution order.
func QueryKinds() []QueryKind {
	return []QueryKind{QueryRetention, QueryDemographic, QueryInactivity}
}

// Operation maps the query kind to the measured operation it is reported under.
func (k QueryKind) Operation() Operation {
	switch k {
	case QueryRetention:
		return OperationRetentionQuery
	case QueryDemographic:
		return OperationDemographicQuery
	case QueryInactivity:
		return OperationInactivityQuery
	default:
		return Operation(k)
	}
}

// Valid reports whether k is one of the known query kinds.
func (k QueryKind) Valid() bool {
	switch k {
	case QueryRetention, QueryDemographic, QueryInactivity:
		return true
	default:
		return false
	}
}

// Analytical query result limits and windows shared by all engines.
const (
	InactivityThresholdDays = 180
	InactivityResultLimit   = 100
)
