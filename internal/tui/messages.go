package tui

import "github.com/Veraticus/finflow/internal/listing"

// fetchedMsg carries the outcome of one list request.
type fetchedMsg struct {
	result listing.Result
}

// deletedMsg reports the outcome of a delete.
type deletedMsg struct {
	err error
	id  int
}
