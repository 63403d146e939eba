package model

import (
	"fmt"
	"strings"
)

// PendingStatus selects records by their pending flag.
type PendingStatus string

// Pending status filter values.
const (
	StatusAll     PendingStatus = "ALL"
	StatusPending PendingStatus = "PENDING"
	StatusSettled PendingStatus = "SETTLED"
)

// ParsePendingStatus parses a status filter; empty means all.
func ParsePendingStatus(s string) (PendingStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL", "TODAS":
		return StatusAll, nil
	case "PENDING", "PENDENTES":
		return StatusPending, nil
	case "SETTLED", "PAID", "RECEIVED", "PAGAS":
		return StatusSettled, nil
	default:
		return "", fmt.Errorf("invalid status %q (want all, pending or settled)", s)
	}
}

// FilterCriteria is the transient, view-local filter state of a list.
// Zero values mean "not set".
type FilterCriteria struct {
	StartDate  string
	EndDate    string
	Status     PendingStatus
	CategoryID int
}

// IsZero reports whether no filter is active.
func (c FilterCriteria) IsZero() bool {
	return c.StartDate == "" && c.EndDate == "" && c.CategoryID == 0 &&
		(c.Status == "" || c.Status == StatusAll)
}

// Page is one slice of a paginated collection.
// Number is expressed in the base of the strategy that produced it.
type Page[T any] struct {
	Content       []T `json:"content"`
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}
