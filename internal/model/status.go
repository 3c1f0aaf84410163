package model

// Status is the closed set of task states. Anything read from the outside
// world goes through NormalizeStatus exactly once, at the model boundary,
// so consumers never see an empty or unrecognized value.
type Status string

const (
	StatusToDo       Status = "to-do"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// StatusOrder is the canonical display order for statuses. Board columns,
// iteration and exports all follow this order.
var StatusOrder = []Status{StatusToDo, StatusInProgress, StatusCompleted}

// NormalizeStatus maps unset or unrecognized values to StatusToDo.
func NormalizeStatus(s string) Status {
	switch Status(s) {
	case StatusToDo, StatusInProgress, StatusCompleted:
		return Status(s)
	default:
		return StatusToDo
	}
}

// ValidStatus reports whether s is one of the three known states.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusToDo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}
