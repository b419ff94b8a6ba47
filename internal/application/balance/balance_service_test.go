package balance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuncanbit/ses/internal/domain"
)

type fakeEarningsRepo struct {
	cached     *float64
	cachedErr  error
	entries    []domain.EarningsEntry
	entriesErr error
	orders     []domain.OrderSnapshot
	ordersErr  error
}

func (f *fakeEarningsRepo) GetCachedBalance(ctx context.Context, participantID string) (*float64, error) {
	return f.cached, f.cachedErr
}

func (f *fakeEarningsRepo) ListEntries(ctx context.Context, participantID string) ([]domain.EarningsEntry, error) {
	return f.entries, f.entriesErr
}

func (f *fakeEarningsRepo) ListDeliveredOrders(ctx context.Context, participantID string) ([]domain.OrderSnapshot, error) {
	return f.orders, f.ordersErr
}

type fakeWithdrawalSums struct {
	reserved    float64
	reservedErr error
}

func (f *fakeWithdrawalSums) Create(ctx context.Context, request *domain.WithdrawalRequest) error {
	return nil
}

func (f *fakeWithdrawalSums) GetByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error) {
	return nil, nil
}

func (f *fakeWithdrawalSums) SumByStatuses(ctx context.Context, participantID string, statuses ...domain.WithdrawalStatus) (float64, error) {
	return f.reserved, f.reservedErr
}

func (f *fakeWithdrawalSums) UpdateIfStatus(ctx context.Context, requestID string, expected domain.WithdrawalStatus, update domain.WithdrawalUpdate) (bool, error) {
	return false, nil
}

func (f *fakeWithdrawalSums) SetNote(ctx context.Context, requestID, note string) error {
	return nil
}

func (f *fakeWithdrawalSums) CountRecentByParticipant(ctx context.Context, participantID string, since time.Time) (int, error) {
	return 0, nil
}

func (f *fakeWithdrawalSums) HasRecentDuplicate(ctx context.Context, participantID, destination string, amount float64, since time.Time) (bool, error) {
	return false, nil
}

func ptr(f float64) *float64 { return &f }

func newService(earnings *fakeEarningsRepo, withdrawals *fakeWithdrawalSums) IBalanceService {
	return NewBalanceService(earnings, withdrawals, zerolog.Nop())
}

func TestComputeEarnedCachedBalanceWins(t *testing.T) {
	svc := newService(&fakeEarningsRepo{
		cached:  ptr(42.5),
		entries: []domain.EarningsEntry{{Amount: 100}},
		orders:  []domain.OrderSnapshot{{GrossTotal: ptr(100.0)}},
	}, &fakeWithdrawalSums{})

	earned, err := svc.ComputeEarned(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 42.5, earned)
}

func TestComputeEarnedLedgerEntriesWhenNoCache(t *testing.T) {
	svc := newService(&fakeEarningsRepo{
		entries: []domain.EarningsEntry{{Amount: 3.5}, {Amount: 1.5}},
		orders:  []domain.OrderSnapshot{{GrossTotal: ptr(100.0)}},
	}, &fakeWithdrawalSums{})

	earned, err := svc.ComputeEarned(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, earned)
}

func TestComputeEarnedOrderSnapshotsLastResort(t *testing.T) {
	svc := newService(&fakeEarningsRepo{
		orders: []domain.OrderSnapshot{
			{GrossTotal: ptr(12.5), PlatformFee: ptr(2.5)},
			{Price: ptr(50.0), DeliveryFee: ptr(10.0), ConversionRate: ptr(20.0)},
		},
	}, &fakeWithdrawalSums{})

	earned, err := svc.ComputeEarned(context.Background(), "p1")
	require.NoError(t, err)
	assert.InDelta(t, 13.0, earned, 1e-9)
}

func TestComputeEarnedSourceFailureFallsThrough(t *testing.T) {
	svc := newService(&fakeEarningsRepo{
		cachedErr: errors.New("cache table missing"),
		entries:   []domain.EarningsEntry{{Amount: 7}},
	}, &fakeWithdrawalSums{})

	earned, err := svc.ComputeEarned(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 7.0, earned)
}

func TestComputeEarnedAllSourcesFailing(t *testing.T) {
	svc := newService(&fakeEarningsRepo{
		cachedErr:  errors.New("down"),
		entriesErr: errors.New("down"),
		ordersErr:  errors.New("down"),
	}, &fakeWithdrawalSums{})

	_, err := svc.ComputeEarned(context.Background(), "p1")
	assert.Error(t, err)
}

func TestComputeEarnedNeverNegative(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeEarningsRepo
	}{
		{"negative cache", &fakeEarningsRepo{cached: ptr(-10.0)}},
		{"negative entries", &fakeEarningsRepo{entries: []domain.EarningsEntry{{Amount: -4}}}},
		{"fee exceeds gross", &fakeEarningsRepo{orders: []domain.OrderSnapshot{{GrossTotal: ptr(5.0), PlatformFee: ptr(9.0)}}}},
		{"NaN cache", &fakeEarningsRepo{cached: ptr(math.NaN())}},
		{"no data at all", &fakeEarningsRepo{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(tt.repo, &fakeWithdrawalSums{})
			earned, err := svc.ComputeEarned(context.Background(), "p1")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, earned, 0.0)
		})
	}
}

func TestOrderEarnings(t *testing.T) {
	tests := []struct {
		name  string
		order domain.OrderSnapshot
		want  float64
	}{
		{"gross minus platform fee", domain.OrderSnapshot{GrossTotal: ptr(12.5), PlatformFee: ptr(2.5)}, 10.0},
		{"gross without fee", domain.OrderSnapshot{GrossTotal: ptr(8.0)}, 8.0},
		{"fee exceeds gross clamps", domain.OrderSnapshot{GrossTotal: ptr(2.0), PlatformFee: ptr(5.0)}, 0},
		{"price plus delivery converted", domain.OrderSnapshot{Price: ptr(90.0), DeliveryFee: ptr(10.0), ConversionRate: ptr(50.0)}, 2.0},
		{"delivery fee alone converted", domain.OrderSnapshot{DeliveryFee: ptr(25.0), ConversionRate: ptr(50.0)}, 0.5},
		{"source total minus fee converted", domain.OrderSnapshot{SourceTotal: ptr(300.0), SourceFee: ptr(50.0), ConversionRate: ptr(50.0)}, 5.0},
		{"source fee exceeds total clamps", domain.OrderSnapshot{SourceTotal: ptr(40.0), SourceFee: ptr(60.0), ConversionRate: ptr(50.0)}, 0},
		{"price wins over source total", domain.OrderSnapshot{Price: ptr(100.0), SourceTotal: ptr(300.0), SourceFee: ptr(50.0), ConversionRate: ptr(50.0)}, 2.0},
		{"source total without rate contributes nothing", domain.OrderSnapshot{SourceTotal: ptr(300.0), SourceFee: ptr(50.0)}, 0},
		{"missing rate contributes nothing", domain.OrderSnapshot{Price: ptr(90.0), DeliveryFee: ptr(10.0)}, 0},
		{"zero rate contributes nothing", domain.OrderSnapshot{Price: ptr(90.0), ConversionRate: ptr(0.0)}, 0},
		{"empty snapshot", domain.OrderSnapshot{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, orderEarnings(tt.order), 1e-9)
		})
	}
}

func TestBreakdown(t *testing.T) {
	// Participant with one delivered order {gross 12.5, fee 2.5} and a paid
	// request for 4.0: earned 10, reserved 4, available 6.
	svc := newService(&fakeEarningsRepo{
		orders: []domain.OrderSnapshot{{GrossTotal: ptr(12.5), PlatformFee: ptr(2.5)}},
	}, &fakeWithdrawalSums{reserved: 4.0})

	breakdown, err := svc.Breakdown(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, breakdown.Earned)
	assert.Equal(t, 4.0, breakdown.Reserved)
	assert.Equal(t, 6.0, breakdown.Available)
}

func TestBreakdownClampsNegativeAvailable(t *testing.T) {
	svc := newService(&fakeEarningsRepo{cached: ptr(3.0)}, &fakeWithdrawalSums{reserved: 5.0})

	breakdown, err := svc.Breakdown(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.Available)
}

func TestBreakdownReservedError(t *testing.T) {
	svc := newService(&fakeEarningsRepo{cached: ptr(3.0)}, &fakeWithdrawalSums{reservedErr: errors.New("db down")})

	_, err := svc.Breakdown(context.Background(), "p1")
	assert.Error(t, err)
}
