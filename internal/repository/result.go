package repository

import "authportal/internal/model"

// LookupStatus separates a missing row from an unreachable store.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// LookupResult is the outcome of a lookup by email. User is set only when
// Status is LookupFound; Err is set only when Status is LookupUnavailable.
type LookupResult struct {
	Status LookupStatus
	User   *model.User
	Err    error
}

// Found reports whether a row was returned.
func (r LookupResult) Found() bool {
	return r.Status == LookupFound && r.User != nil
}

// UpdateStatus is the outcome of a single-row update.
type UpdateStatus int

const (
	UpdateApplied UpdateStatus = iota
	UpdateNoRows
	UpdateUnavailable
)

func (s UpdateStatus) String() string {
	switch s {
	case UpdateApplied:
		return "applied"
	case UpdateNoRows:
		return "no_rows"
	case UpdateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// UpdateResult reports whether exactly the targeted row changed.
type UpdateResult struct {
	Status UpdateStatus
	Err    error
}

// OK reports whether the update touched a row.
func (r UpdateResult) OK() bool {
	return r.Status == UpdateApplied
}
