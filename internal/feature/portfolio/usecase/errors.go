package usecase

import "errors"

// ErrPortfolioNotFound is returned when the user has no stored portfolio yet.
var ErrPortfolioNotFound = errors.New("portfolio not found")
