package stellar

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"

	"github.com/tuncanbit/ses/internal/domain"
	"github.com/tuncanbit/ses/pkg/amount"
	"github.com/tuncanbit/ses/pkg/config"
)

// Gateway executes single-payment transfers against a Horizon endpoint.
// The custodial keypair and the paying account are shared by every
// concurrent settlement attempt; Horizon's sequence numbers serialize
// submissions from the account and surface contention as tx_bad_seq.
type Gateway struct {
	client        *horizonclient.Client
	pair          *keypair.Full
	passphrase    string
	fallbackFee   int64
	sourceReserve float64
	logger        zerolog.Logger
}

func New(cfg config.HorizonConfig, logger zerolog.Logger) (*Gateway, error) {
	pair, err := keypair.ParseFull(cfg.WalletSeed)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet seed: %w", err)
	}

	return &Gateway{
		client: &horizonclient.Client{
			HorizonURL: cfg.URL,
			HTTP:       &http.Client{Timeout: cfg.Timeout},
		},
		pair:          pair,
		passphrase:    cfg.NetworkPassphrase,
		fallbackFee:   cfg.FallbackFee,
		sourceReserve: cfg.SourceReserve,
		logger:        logger,
	}, nil
}

// ValidDestination reports whether address is a syntactically valid
// account identifier for the network.
func ValidDestination(address string) bool {
	return strkey.IsValidEd25519PublicKey(address)
}

// Execute transfers amt of the native asset to destination and returns the
// network-assigned transaction hash. Failures come back as
// *domain.PaymentError. When ctx expires mid-submission the outcome is
// unknown: the transfer may have been accepted and the confirmation lost,
// so the error is flagged non-retryable for reconciliation.
func (g *Gateway) Execute(ctx context.Context, destination string, amt float64) (string, error) {
	account, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: g.pair.Address()})
	if err != nil {
		g.logger.Error().Err(err).Str("account", g.pair.Address()).Msg("Failed to load source account")
		return "", classify(err)
	}

	if native := nativeBalance(account); native < amt+g.sourceReserve {
		g.logger.Error().
			Float64("source_balance", native).
			Float64("required", amt+g.sourceReserve).
			Msg("Source wallet underfunded")
		return "", &domain.PaymentError{
			Code:   domain.PaymentErrSourceUnderfunded,
			Detail: fmt.Sprintf("source holds %.7f, need %.7f", native, amt+g.sourceReserve),
		}
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		BaseFee:              g.networkFee(),
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(60)},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: destination,
				Amount:      amount.FormatScaled(amt),
				Asset:       txnbuild.NativeAsset{},
			},
		},
	})
	if err != nil {
		return "", &domain.PaymentError{Code: domain.PaymentErrUnknown, Detail: fmt.Sprintf("build transaction: %v", err)}
	}

	tx, err = tx.Sign(g.passphrase, g.pair)
	if err != nil {
		return "", &domain.PaymentError{Code: domain.PaymentErrUnknown, Detail: fmt.Sprintf("sign transaction: %v", err)}
	}

	type submitOutcome struct {
		tx  hProtocol.Transaction
		err error
	}
	outcomes := make(chan submitOutcome, 1)
	go func() {
		resp, err := g.client.SubmitTransaction(tx)
		outcomes <- submitOutcome{tx: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Error().
			Str("destination", destination).
			Float64("amount", amt).
			Msg("Submission deadline exceeded; transfer outcome unknown")
		return "", &domain.PaymentError{
			Code:           domain.PaymentErrUnknown,
			Detail:         "submission timed out; transfer outcome unknown",
			UnknownOutcome: true,
		}
	case out := <-outcomes:
		if out.err != nil {
			perr := classify(out.err)
			g.logger.Error().
				Err(out.err).
				Str("destination", destination).
				Str("classification", string(perr.Code)).
				Msg("Transaction submission failed")
			return "", perr
		}
		g.logger.Info().
			Str("destination", destination).
			Float64("amount", amt).
			Str("tx_hash", out.tx.Hash).
			Msg("Transfer submitted")
		return out.tx.Hash, nil
	}
}

// networkFee queries current fee statistics, falling back to a safe
// flat fee when Horizon cannot answer.
func (g *Gateway) networkFee() int64 {
	stats, err := g.client.FeeStats()
	if err != nil {
		g.logger.Warn().Err(err).Int64("fallback_fee", g.fallbackFee).Msg("Fee stats unavailable, using fallback")
		return g.fallbackFee
	}

	fee := stats.FeeCharged.Max
	if fee <= 0 {
		fee = stats.LastLedgerBaseFee
	}
	if fee < txnbuild.MinBaseFee {
		fee = txnbuild.MinBaseFee
	}
	return fee
}

func nativeBalance(account hProtocol.Account) float64 {
	for _, b := range account.Balances {
		if b.Type == "native" {
			return amount.ToFloat(b.Balance)
		}
	}
	return 0
}
