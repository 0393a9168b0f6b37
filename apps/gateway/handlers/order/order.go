package order

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/internal/catalog"
	"stickerstreet/internal/payment"
	"stickerstreet/internal/responses"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/reply"
)

var (
	Module = fx.Provide(New)
)

type (
	Handler interface {
		Checkout(c *gin.Context)
		ListOrders(c *gin.Context)
		Statuses(c *gin.Context)
		MomoOperators(c *gin.Context)
		TonQuote(c *gin.Context)
		TonQR(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger   logger.Logger
		Payments *payment.Service
	}

	handler struct {
		logger   logger.Logger
		payments *payment.Service
	}
)

func New(p Params) Handler {
	return &handler{
		logger:   p.Logger,
		payments: p.Payments,
	}
}

// invoiceStatus replays the close status the web view got from the host.
type invoiceStatus string

func (s invoiceStatus) OpenInvoice(context.Context, string) (string, error) {
	return string(s), nil
}

// signedWallet is a wallet whose transfer the web view already sent through
// its connector.
type signedWallet struct {
	address string
	sent    bool
}

func (w signedWallet) Address() string { return w.address }

func (w signedWallet) Settled() bool { return w.sent }

func (w signedWallet) SendTransaction(context.Context, structs.TonTransaction) error {
	if !w.sent {
		return structs.ErrPaymentCancelled
	}
	return nil
}

func bridges(req structs.Checkout) payment.Bridges {
	var b payment.Bridges
	if status := strings.TrimSpace(req.InvoiceStatus); status != "" {
		b.Invoices = invoiceStatus(status)
	}
	if addr := strings.TrimSpace(req.WalletAddress); addr != "" {
		b.Wallet = signedWallet{address: addr, sent: req.TxSent}
	}
	return b
}

func (h *handler) Checkout(c *gin.Context) {
	var (
		response structs.Response
		request  structs.Checkout
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	order, err := h.payments.Pay(ctx, request.Method, s.Store, bridges(request))
	if err != nil {
		if !errors.Is(err, structs.ErrEmptyCart) {
			h.logger.Warn(ctx, " err on h.payments.Pay", zap.String("method", string(request.Method)), zap.Error(err))
		}
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
	response.Payload = order
}

func (h *handler) ListOrders(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	s.Store.LoadOrders(c.Request.Context())

	response = responses.Success
	response.Payload = s.Store.Orders()
}

type statusRow struct {
	Status structs.OrderStatus `json:"status"`
	catalog.StatusInfo
}

func (h *handler) Statuses(c *gin.Context) {
	var response structs.Response
	defer middleware.Respond(c, &response)

	rows := make([]statusRow, 0, len(structs.OrderStatuses))
	for _, st := range structs.OrderStatuses {
		rows = append(rows, statusRow{Status: st, StatusInfo: catalog.Statuses[st]})
	}

	response = responses.Success
	response.Payload = rows
}

func (h *handler) MomoOperators(c *gin.Context) {
	var response structs.Response
	defer middleware.Respond(c, &response)

	response = responses.Success
	response.Payload = h.payments.MomoOperators(c.Request.Context())
}

func (h *handler) quote(ctx context.Context, totalXof float64) (structs.TonQuote, error) {
	rate, err := h.payments.TonQuote(ctx, totalXof)
	if err != nil {
		return structs.TonQuote{}, err
	}
	merchant := h.payments.Merchant()
	if merchant == "" {
		return structs.TonQuote{}, structs.ErrMerchantMissing
	}
	return structs.TonQuote{
		Rate:     rate,
		NanoTon:  payment.NanoTon(rate.AmountTon),
		Merchant: merchant,
		Link:     payment.TransferLink(merchant, rate.AmountTon),
	}, nil
}

// TonQuote prices the current cart in TON.
func (h *handler) TonQuote(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	total, _ := s.Store.Totals()
	q, err := h.quote(ctx, total)
	if err != nil {
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
	response.Payload = q
}

// TonQR renders the transfer link of the current cart as a PNG.
func (h *handler) TonQR(c *gin.Context) {
	var (
		s   = middleware.Current(c)
		ctx = c.Request.Context()
	)

	total, _ := s.Store.Totals()
	q, err := h.quote(ctx, total)
	if err != nil {
		code, response := responses.FromError(err)
		reply.Json(c.Writer, code, &response)
		return
	}

	png, err := payment.TransferQR(q.Merchant, q.Rate.AmountTon)
	if err != nil {
		h.logger.Error(ctx, " err on payment.TransferQR", zap.Error(err))
		response := responses.InternalErr
		reply.Json(c.Writer, responses.InternalErrCode, &response)
		return
	}

	reply.Blob(c.Writer, "image/png", png)
}
