package common

import (
	"fmt"
	"time"
)

// InactiveDays returns the number of whole days between lastUsed and now.
// Both instants are compared in UTC.
func InactiveDays(now time.Time, lastUsed time.Time) int {
	elapsed := now.UTC().Sub(lastUsed.UTC())
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

type InactivityAction int

const (
	NoAction InactivityAction = iota
	WarnUser
	DeleteUser
)

func (a InactivityAction) String() string {
	switch a {
	case WarnUser:
		return "warn"
	case DeleteUser:
		return "delete"
	default:
		return "none"
	}
}

func ActionForInactivity(days int) InactivityAction {
	switch {
	case days >= DeletionDays:
		return DeleteUser
	case days >= WarningDays:
		return WarnUser
	default:
		return NoAction
	}
}

func ElemToDeleteFormattedInfos(elemName string, arraySize int, accountId string) (string, string) {
	accountString := fmt.Sprintf(" in account %s", accountId)
	if accountId == "" {
		accountString = ""
	}

	count := fmt.Sprintf("There is no %s to delete%s.", elemName, accountString)
	if arraySize == 1 {
		count = fmt.Sprintf("There is 1 %s to delete%s.", elemName, accountString)
	}
	if arraySize > 1 {
		count = fmt.Sprintf("There are %d %ss to delete%s.", arraySize, elemName, accountString)
	}

	start := fmt.Sprintf("Starting %s deletion%s.", elemName, accountString)

	return count, start
}
