package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")

	ErrItemNotFound      = errors.New("sweet not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrRequestInProgress = errors.New("a request with this idempotency key is already in progress")
)

// Argument failures wrap ErrInvalidArgument so callers can match the kind
// while still reporting the specific rule that was broken.
var (
	ErrNegativeValues      = fmt.Errorf("%w: price and quantity must be non-negative", ErrInvalidArgument)
	ErrNonPositivePurchase = fmt.Errorf("%w: purchase quantity must be positive", ErrInvalidArgument)
	ErrNonPositiveRestock  = fmt.Errorf("%w: restock quantity must be positive", ErrInvalidArgument)
	ErrStockOverflow       = fmt.Errorf("%w: restock quantity exceeds the maximum stock", ErrInvalidArgument)
)
