package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
)

var (
	ErrFetch = errors.New("fetch error")
	ErrDB    = errors.New("database error")
)

type mockFetcher struct {
	FetchBarsFunc func(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error)
	Calls         []entity.QueryOptions
}

func (m *mockFetcher) FetchBars(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error) {
	m.Calls = append(m.Calls, opts)
	if m.FetchBarsFunc != nil {
		return m.FetchBarsFunc(ctx, opts)
	}
	return nil, errors.New("FetchBarsFunc is not implemented")
}

type mockBarRepository struct {
	UpsertBatchFunc func(ctx context.Context, bars []entity.StoredBar) error
	FindFunc        func(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error)
}

func (m *mockBarRepository) UpsertBatch(ctx context.Context, bars []entity.StoredBar) error {
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, bars)
	}
	return errors.New("UpsertBatchFunc is not implemented")
}

func (m *mockBarRepository) Find(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, q)
	}
	return nil, errors.New("FindFunc is not implemented")
}

// mockRateLimiter は待機せずに呼び出し回数だけを記録します。
type mockRateLimiter struct {
	WaitIfNeededCalls int
}

func (m *mockRateLimiter) WaitIfNeeded(ctx context.Context) error {
	m.WaitIfNeededCalls++
	return ctx.Err()
}

func ingestOptions(securities, eventTypes []string) entity.QueryOptions {
	return entity.QueryOptions{
		Securities:    securities,
		EventTypes:    eventTypes,
		BarInterval:   5,
		StartDateTime: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		EndDateTime:   time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC),
	}
}

func TestIngestUsecase_ingestOne_TagsBars(t *testing.T) {
	ctx := context.Background()
	testTime := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	bars := []entity.Bar{
		{Time: testTime, Open: 1, High: 2, Low: 0.5, Close: 1.5, NumEvents: 3, Volume: 300},
		{Time: testTime.Add(5 * time.Minute), Open: 1.5, High: 2, Low: 1, Close: 1.75, NumEvents: 2, Volume: 200},
	}

	var captured []entity.StoredBar
	fetcher := &mockFetcher{FetchBarsFunc: func(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error) {
		return bars, nil
	}}
	repo := &mockBarRepository{UpsertBatchFunc: func(ctx context.Context, b []entity.StoredBar) error {
		captured = b
		return nil
	}}

	uc := NewIngestUsecase(fetcher, repo, &mockRateLimiter{})
	n, err := uc.ingestOne(ctx, ingestOptions([]string{"IBM US Equity"}, []string{"BID"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(captured) != 2 {
		t.Fatalf("expected 2 stored bars, got n=%d captured=%d", n, len(captured))
	}
	for _, sb := range captured {
		if sb.Security != "IBM US Equity" || sb.EventType != "BID" || sb.Interval != 5 {
			t.Errorf("bar not tagged: %+v", sb)
		}
	}
	if !captured[1].Time.Equal(bars[1].Time) {
		t.Errorf("bar order changed")
	}
}

func TestIngestUsecase_IngestAll(t *testing.T) {
	ctx := context.Background()
	oneBar := []entity.Bar{{Time: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1}}

	testCases := []struct {
		name            string
		securities      []string
		eventTypes      []string
		fetchFunc       func(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error)
		upsertFunc      func(ctx context.Context, bars []entity.StoredBar) error
		expectedSummary IngestSummary
		expectedErr     error
		expectedCalls   int
	}{
		{
			name:       "success: every security and event type pair",
			securities: []string{"IBM US Equity", "MSFT US Equity"},
			eventTypes: []string{"TRADE", "BID", "ASK"},
			fetchFunc: func(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error) {
				return oneBar, nil
			},
			upsertFunc:      func(ctx context.Context, bars []entity.StoredBar) error { return nil },
			expectedSummary: IngestSummary{Succeeded: 6, Bars: 6},
			expectedCalls:   6,
		},
		{
			name:       "success: continues after a fetch failure",
			securities: []string{"IBM US Equity", "BAD Equity", "MSFT US Equity"},
			eventTypes: []string{"TRADE"},
			fetchFunc: func(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error) {
				if opts.Securities[0] == "BAD Equity" {
					return nil, ErrFetch
				}
				return oneBar, nil
			},
			upsertFunc:      func(ctx context.Context, bars []entity.StoredBar) error { return nil },
			expectedSummary: IngestSummary{Succeeded: 2, Failed: 1, Bars: 2},
			expectedCalls:   3,
		},
		{
			name:       "success: continues after an upsert failure",
			securities: []string{"IBM US Equity", "MSFT US Equity"},
			eventTypes: []string{"TRADE"},
			fetchFunc: func(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error) {
				return oneBar, nil
			},
			upsertFunc: func(ctx context.Context, bars []entity.StoredBar) error {
				if bars[0].Security == "IBM US Equity" {
					return ErrDB
				}
				return nil
			},
			expectedSummary: IngestSummary{Succeeded: 1, Failed: 1, Bars: 1},
			expectedCalls:   2,
		},
		{
			name:          "error: empty securities",
			securities:    nil,
			eventTypes:    []string{"TRADE"},
			expectedErr:   domain.ErrInvalidOptions,
			expectedCalls: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &mockFetcher{FetchBarsFunc: tc.fetchFunc}
			repo := &mockBarRepository{UpsertBatchFunc: tc.upsertFunc}
			rl := &mockRateLimiter{}

			uc := NewIngestUsecase(fetcher, repo, rl)
			sum, err := uc.IngestAll(ctx, ingestOptions(tc.securities, tc.eventTypes))

			if tc.expectedErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected %v, got %v", tc.expectedErr, err)
			}

			if sum != tc.expectedSummary {
				t.Errorf("summary mismatch: got %+v, want %+v", sum, tc.expectedSummary)
			}
			if len(fetcher.Calls) != tc.expectedCalls {
				t.Errorf("FetchBars was called %d times, expected %d", len(fetcher.Calls), tc.expectedCalls)
			}
			if rl.WaitIfNeededCalls != tc.expectedCalls {
				t.Errorf("WaitIfNeeded was called %d times, expected %d", rl.WaitIfNeededCalls, tc.expectedCalls)
			}
			for _, c := range fetcher.Calls {
				if len(c.Securities) != 1 || len(c.EventTypes) != 1 {
					t.Errorf("each request must carry exactly one security and event type, got %+v", c)
				}
			}
		})
	}
}

func TestIngestUsecase_IngestAll_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{}
	uc := NewIngestUsecase(fetcher, &mockBarRepository{}, &mockRateLimiter{})

	_, err := uc.IngestAll(ctx, ingestOptions([]string{"IBM US Equity"}, []string{"TRADE"}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(fetcher.Calls) != 0 {
		t.Errorf("FetchBars should not be called after cancellation")
	}
}

func TestHistoryUsecase_GetHistory(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		input         entity.BarQuery
		expectedQuery entity.BarQuery
		expectedErr   error
	}{
		{
			name:          "success: all parameters specified",
			input:         entity.BarQuery{Security: "IBM US Equity", EventType: "BID", Interval: 5},
			expectedQuery: entity.BarQuery{Security: "IBM US Equity", EventType: "BID", Interval: 5},
		},
		{
			name:          "success: defaults applied",
			input:         entity.BarQuery{Security: "IBM US Equity"},
			expectedQuery: entity.BarQuery{Security: "IBM US Equity", EventType: "TRADE", Interval: 60},
		},
		{
			name:        "error: missing security",
			input:       entity.BarQuery{EventType: "TRADE"},
			expectedErr: domain.ErrInvalidOptions,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got entity.BarQuery
			repo := &mockBarRepository{FindFunc: func(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error) {
				got = q
				return nil, nil
			}}

			_, err := NewHistoryUsecase(repo).GetHistory(ctx, tc.input)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expectedQuery {
				t.Errorf("Find called with %+v, want %+v", got, tc.expectedQuery)
			}
		})
	}
}
