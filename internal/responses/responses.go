package responses

import (
	"errors"
	"net/http"

	"stickerstreet/internal/structs"
	"stickerstreet/pkg/apiclient"
)

const (
	SuccessCode      = http.StatusOK
	BadRequestCode   = http.StatusBadRequest
	UnauthorizedCode = http.StatusUnauthorized
	ForbiddenCode    = http.StatusForbidden
	NotFoundCode     = http.StatusNotFound
	ConflictCode     = http.StatusConflict
	BadGatewayCode   = http.StatusBadGateway
	InternalErrCode  = http.StatusInternalServerError
)

var (
	Success = structs.Response{
		Status: structs.Status{Code: SuccessCode, Message: "success"},
	}
	BadRequest = structs.Response{
		Status: structs.Status{Code: BadRequestCode, Message: "bad request"},
	}
	Unauthorized = structs.Response{
		Status: structs.Status{Code: UnauthorizedCode, Message: "unauthorized"},
	}
	Forbidden = structs.Response{
		Status: structs.Status{Code: ForbiddenCode, Message: "forbidden"},
	}
	NotFound = structs.Response{
		Status: structs.Status{Code: NotFoundCode, Message: "not found"},
	}
	Conflict = structs.Response{
		Status: structs.Status{Code: ConflictCode, Message: "conflict"},
	}
	BadGateway = structs.Response{
		Status: structs.Status{Code: BadGatewayCode, Message: "upstream error"},
	}
	InternalErr = structs.Response{
		Status: structs.Status{Code: InternalErrCode, Message: "internal error"},
	}
)

var badRequests = []error{
	structs.ErrBadRequest,
	structs.ErrEmptyCart,
	structs.ErrInvalidQuantity,
	structs.ErrInvalidPin,
	structs.ErrMissingFields,
	structs.ErrImageRejected,
	structs.ErrNotImage,
	structs.ErrImageTooLarge,
	structs.ErrMissingTelegram,
	structs.ErrWalletNotConnected,
	structs.ErrUnknownMethod,
}

// FromError maps a storefront error to its HTTP status and response.
func FromError(err error) (int, structs.Response) {
	var (
		resp   structs.Response
		reqErr *apiclient.RequestError
	)

	switch {
	case err == nil:
		return SuccessCode, Success
	case errors.Is(err, structs.ErrNotFound):
		resp = NotFound
	case errors.Is(err, structs.ErrWrongPin):
		resp = Unauthorized
	case errors.Is(err, structs.ErrAdminLocked):
		resp = Forbidden
	case errors.Is(err, structs.ErrPaymentCancelled):
		resp = Conflict
	case errors.Is(err, structs.ErrRateUnavailable), errors.Is(err, structs.ErrMerchantMissing):
		resp = BadGateway
	case errors.As(err, &reqErr):
		resp = BadGateway
		resp.Error = reqErr.Message
		return resp.Status.Code, resp
	default:
		resp = InternalErr
		for _, target := range badRequests {
			if errors.Is(err, target) {
				resp = BadRequest
				break
			}
		}
	}

	resp.Error = err.Error()
	return resp.Status.Code, resp
}
