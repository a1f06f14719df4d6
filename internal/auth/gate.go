package auth

import (
	"errors"
	"fmt"

	"fleet_filter/internal/models"
)

// ErrAccessDenied is returned when a caller may not read a portfolio
var ErrAccessDenied = errors.New("access denied")

// Gate decides whether a caller may read a portfolio
type Gate interface {
	ValidateAccess(portfolio models.Portfolio, callerID string) error
}

// PortfolioGate allows the portfolio owner and its listed members
type PortfolioGate struct{}

func (PortfolioGate) ValidateAccess(portfolio models.Portfolio, callerID string) error {
	if callerID == "" {
		return fmt.Errorf("%w: anonymous caller for portfolio %d", ErrAccessDenied, portfolio.ID)
	}
	if portfolio.OwnerID == callerID {
		return nil
	}
	for _, member := range portfolio.Members {
		if member == callerID {
			return nil
		}
	}
	return fmt.Errorf("%w: caller %s for portfolio %d", ErrAccessDenied, callerID, portfolio.ID)
}
