package structs

import "errors"

var (
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidPin         = errors.New("Le PIN doit faire 4 chiffres")
	ErrWrongPin           = errors.New("wrong PIN")
	ErrAdminLocked        = errors.New("admin session is locked")
	ErrMissingFields      = errors.New("missing required fields")
	ErrImageRejected      = errors.New("image rejected")
	ErrNotImage           = errors.New("image file required")
	ErrImageTooLarge      = errors.New("image too large (max 5MB)")
	ErrMissingTelegram    = errors.New("missing Telegram data")
	ErrWalletNotConnected = errors.New("TON wallet not connected")
	ErrRateUnavailable    = errors.New("TON rate unavailable")
	ErrMerchantMissing    = errors.New("TON payment unavailable: merchant address not configured")
	ErrPaymentCancelled   = errors.New("payment was not completed")
	ErrUnknownMethod      = errors.New("unknown payment method")
)
