package facades

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	pb "github.com/sbilibin2017/proto-exchange/exchange"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrRateNotFound is returned when the upstream has no rate for the requested pair.
var ErrRateNotFound = errors.New("exchange rate not found")

// ExchangeRatesGRPCFacade reads exchange rates from the exchanger gRPC service.
type ExchangeRatesGRPCFacade struct {
	client pb.ExchangeServiceClient
}

// NewExchangeRatesGRPCFacade creates a new facade with a gRPC client.
func NewExchangeRatesGRPCFacade(client pb.ExchangeServiceClient) *ExchangeRatesGRPCFacade {
	return &ExchangeRatesGRPCFacade{client: client}
}

// GetExchangeRateForCurrency fetches the rate converting fromCurrency amounts into toCurrency.
func (f *ExchangeRatesGRPCFacade) GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	req := &pb.CurrencyRequest{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
	}

	resp, err := f.client.GetExchangeRateForCurrency(ctx, req)
	if err != nil {
		logger.Log.Errorw("failed to fetch exchange rate for currency via gRPC",
			"from", fromCurrency, "to", toCurrency, "error", err)
		if status.Code(err) == codes.NotFound {
			return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrRateNotFound, fromCurrency, toCurrency)
		}
		return decimal.Zero, err
	}

	if resp.Rate <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrRateNotFound, fromCurrency, toCurrency)
	}

	return decimal.NewFromFloat32(resp.Rate), nil
}
