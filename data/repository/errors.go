package repository

import "errors"

// ErrAlreadyExists is returned when a purchase with the same id is already in the ledger.
var ErrAlreadyExists = errors.New("purchase already exists")
