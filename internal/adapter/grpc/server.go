package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/aveongye/cst-case-study/internal/domain"
	"github.com/aveongye/cst-case-study/internal/usecase/analytics"
)

// Server implements the AnalyticsService gRPC server
type Server struct {
	AnalyticsService *analytics.AnalyticsService
	DefaultFund      string
}

// NewServer creates a new gRPC server instance
func NewServer(analyticsService *analytics.AnalyticsService, defaultFund string) *Server {
	return &Server{
		AnalyticsService: analyticsService,
		DefaultFund:      defaultFund,
	}
}

// RunFundAnalytics handles the RunFundAnalytics RPC
func (s *Server) RunFundAnalytics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fund := s.DefaultFund
	if v, ok := req.GetFields()["fund"]; ok {
		if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
			return nil, status.Error(codes.InvalidArgument, "fund must be a string")
		}
		fund = strings.TrimSpace(v.GetStringValue())
	}
	if fund == "" {
		return nil, status.Error(codes.InvalidArgument, "fund is required")
	}

	result, err := s.AnalyticsService.Run(ctx, fund)
	if err != nil {
		return nil, mapError(err)
	}

	doc, err := structpb.NewStruct(Document(result))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return doc, nil
}

// ListFunds handles the ListFunds RPC
func (s *Server) ListFunds(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	funds, err := s.AnalyticsService.ListFunds(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	list := make([]interface{}, len(funds))
	for i, f := range funds {
		list[i] = f
	}
	doc, err := structpb.NewStruct(map[string]interface{}{"funds": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode funds: %v", err)
	}
	return doc, nil
}

// Document converts a run into the JSON-shaped response document.
// Amounts are decimal strings with 2 decimals; rates are numbers.
func Document(result *domain.FundAnalytics) map[string]interface{} {
	rates := make([]interface{}, 0, len(result.CurrencyRates))
	for _, r := range result.CurrencyRates {
		rates = append(rates, rateDocument(r))
	}

	var fundRate interface{}
	if result.FundRate != nil {
		fundRate = rateDocument(*result.FundRate)
	}

	schedules := make(map[string]interface{}, len(result.Schedules))
	for ccy, points := range result.Schedules {
		list := make([]interface{}, len(points))
		for i, p := range points {
			list[i] = map[string]interface{}{
				"date":             p.Date.String(),
				"cashflow":         p.Cashflow.StringFixed(2),
				"pre_transaction":  p.PreTransaction.StringFixed(2),
				"post_transaction": p.PostTransaction.StringFixed(2),
			}
		}
		schedules[ccy] = list
	}

	trades := make([]interface{}, len(result.Trades))
	for i, t := range result.Trades {
		trades[i] = map[string]interface{}{
			"id":                t.ID.String(),
			"currency_pair":     t.CurrencyPair(),
			"trade_date":        t.TradeDate.String(),
			"delivery_date":     t.DeliveryDate.String(),
			"direction":         string(t.Direction),
			"notional_currency": t.Currency,
			"notional_amount":   t.Notional.StringFixed(2),
		}
	}

	failures := make([]interface{}, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = map[string]interface{}{
			"scope": f.Scope,
			"error": f.Err.Error(),
		}
	}

	return map[string]interface{}{
		"run_id":        result.RunID.String(),
		"computed_at":   result.ComputedAt.Format(time.RFC3339),
		"fund":          result.Fund,
		"base_currency": result.BaseCurrency,
		"currency_irrs": rates,
		"fund_irr":      fundRate,
		"nav_schedules": schedules,
		"fx_forwards":   trades,
		"failures":      failures,
	}
}

func rateDocument(r domain.RateResult) map[string]interface{} {
	return map[string]interface{}{
		"scope":      r.Scope,
		"rate":       r.Rate,
		"iterations": r.Iterations,
	}
}

// mapError maps domain errors to gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrFundNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidRecord),
		errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrNoSignChange),
		errors.Is(err, domain.ErrInconsistency):
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	// Divergence and storage failures are Internal
	return status.Error(codes.Internal, err.Error())
}
