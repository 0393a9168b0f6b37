package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/internal/catalog"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
)

const (
	InvoicePaid = "paid"

	tonValidity = 300 * time.Second
)

var (
	Module = fx.Provide(New)

	nanoPerTon = decimal.New(1, 9)
)

type (
	Params struct {
		fx.In
		Config config.IConfig
		Logger logger.Logger
		API    apiclient.Client
	}

	// Cart is the part of a storefront session a payment needs.
	Cart interface {
		OrderItems() []structs.OrderItem
		Totals() (totalXof float64, count int)
		Profile() structs.Profile
		Checkout(ctx context.Context) (structs.Order, error)
	}

	// InvoiceOpener shows a Stars invoice and blocks until the user closes it,
	// returning the close status.
	InvoiceOpener interface {
		OpenInvoice(ctx context.Context, url string) (status string, err error)
	}

	// Wallet is a connected TON wallet.
	Wallet interface {
		Address() string
		SendTransaction(ctx context.Context, tx structs.TonTransaction) error
	}

	// SettledWallet is a wallet whose transfer already left before checkout,
	// through the web view's connector or a scanned QR code.
	SettledWallet interface {
		Wallet
		Settled() bool
	}

	// Bridges are the host capabilities available to a session. Either may be
	// nil.
	Bridges struct {
		Invoices InvoiceOpener
		Wallet   Wallet
	}

	Service struct {
		api      apiclient.Client
		merchant string
		logger   logger.Logger
		now      func() time.Time
	}
)

func New(p Params) *Service {
	return NewService(p.API, p.Config.GetString("ton.merchant_address"), p.Logger)
}

func NewService(api apiclient.Client, merchant string, log logger.Logger) *Service {
	return &Service{
		api:      api,
		merchant: strings.TrimSpace(merchant),
		logger:   log,
		now:      time.Now,
	}
}

func (s *Service) Merchant() string {
	return s.merchant
}

// Pay runs the branch of method and ends in the cart's checkout.
func (s *Service) Pay(ctx context.Context, method structs.PaymentMethod, cart Cart, b Bridges) (structs.Order, error) {
	switch method {
	case structs.PaymentStars:
		return s.PayStars(ctx, cart, b.Invoices)
	case structs.PaymentTon:
		return s.PayTon(ctx, cart, b.Wallet)
	case structs.PaymentMomo:
		return s.PayMomo(ctx, cart)
	default:
		return structs.Order{}, structs.ErrUnknownMethod
	}
}

// PayStars checks out directly when no invoice bridge exists. Otherwise the
// order is placed only once the invoice closes as paid.
func (s *Service) PayStars(ctx context.Context, cart Cart, opener InvoiceOpener) (structs.Order, error) {
	if opener == nil {
		return cart.Checkout(ctx)
	}

	items := cart.OrderItems()
	if len(items) == 0 {
		return structs.Order{}, structs.ErrEmptyCart
	}
	total, _ := cart.Totals()
	profile := cart.Profile()

	invoice, err := s.api.CreateStarsInvoice(ctx, items, total, &profile)
	if err != nil {
		s.logger.Error(ctx, "->api.CreateStarsInvoice", zap.Error(err))
		return structs.Order{}, err
	}

	status, err := opener.OpenInvoice(ctx, invoice.URL)
	if err != nil {
		s.logger.Warn(ctx, "->opener.OpenInvoice", zap.Error(err))
		return structs.Order{}, err
	}
	if status != InvoicePaid {
		return structs.Order{}, fmt.Errorf("%w: invoice %s", structs.ErrPaymentCancelled, status)
	}

	return cart.Checkout(ctx)
}

// TonQuote converts a XOF total into TON through the rates endpoint.
func (s *Service) TonQuote(ctx context.Context, totalXof float64) (structs.TonRate, error) {
	if totalXof <= 0 {
		return structs.TonRate{}, structs.ErrRateUnavailable
	}

	rate, err := s.api.TonRate(ctx, totalXof)
	if err != nil {
		s.logger.Warn(ctx, "->api.TonRate", zap.Error(err))
		return structs.TonRate{}, fmt.Errorf("%w: %s", structs.ErrRateUnavailable, apiclient.Message(err))
	}
	if rate.AmountTon <= 0 {
		return structs.TonRate{}, structs.ErrRateUnavailable
	}
	return rate, nil
}

// PayTon needs a connected wallet, a live rate and a merchant address. The
// transfer must be accepted by the wallet before the order is placed. A
// settled wallet has paid already, so only the checkout is left.
func (s *Service) PayTon(ctx context.Context, cart Cart, wallet Wallet) (structs.Order, error) {
	if wallet == nil || strings.TrimSpace(wallet.Address()) == "" {
		return structs.Order{}, structs.ErrWalletNotConnected
	}

	if settled, ok := wallet.(SettledWallet); ok && settled.Settled() {
		s.logger.Info(ctx, "payment: ton transfer already sent", zap.String("wallet", wallet.Address()))
		return cart.Checkout(ctx)
	}

	total, _ := cart.Totals()
	rate, err := s.TonQuote(ctx, total)
	if err != nil {
		return structs.Order{}, err
	}

	if s.merchant == "" {
		return structs.Order{}, structs.ErrMerchantMissing
	}

	tx := BuildTonTransaction(s.merchant, rate.AmountTon, s.now())
	if err = wallet.SendTransaction(ctx, tx); err != nil {
		s.logger.Warn(ctx, "->wallet.SendTransaction", zap.Error(err))
		return structs.Order{}, err
	}

	return cart.Checkout(ctx)
}

// PayMomo records the order; the transfer happens outside the app.
func (s *Service) PayMomo(ctx context.Context, cart Cart) (structs.Order, error) {
	return cart.Checkout(ctx)
}

// MomoOperators lists the operators from the API, or the built-in ones when
// it is unreachable.
func (s *Service) MomoOperators(ctx context.Context) []structs.MomoOperator {
	ops, err := s.api.Momo(ctx)
	if err != nil || len(ops) == 0 {
		if err != nil {
			s.logger.Warn(ctx, "->api.Momo", zap.Error(err))
		}
		return catalog.MomoOperators()
	}
	return ops
}

// NanoTon converts an amount of TON to nanoTON, rounded to the nearest unit.
func NanoTon(amountTon float64) string {
	return decimal.NewFromFloat(amountTon).Mul(nanoPerTon).Round(0).String()
}

// BuildTonTransaction builds a single transfer valid for five minutes.
func BuildTonTransaction(merchant string, amountTon float64, now time.Time) structs.TonTransaction {
	return structs.TonTransaction{
		ValidUntil: now.Add(tonValidity).Unix(),
		Messages: []structs.TonMessage{{
			Address: merchant,
			Amount:  NanoTon(amountTon),
		}},
	}
}

// TransferLink is the ton:// deep link of a transfer, for wallets outside the
// Mini App.
func TransferLink(merchant string, amountTon float64) string {
	return "ton://transfer/" + url.PathEscape(merchant) + "?amount=" + NanoTon(amountTon)
}

// TransferQR renders the transfer link as a PNG QR code.
func TransferQR(merchant string, amountTon float64) ([]byte, error) {
	return qrcode.Encode(TransferLink(merchant, amountTon), qrcode.Medium, 256)
}
