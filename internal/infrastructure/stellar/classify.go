package stellar

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"

	"github.com/tuncanbit/ses/internal/domain"
)

// classify maps a Horizon or transport error onto the payment error
// taxonomy. The classification decides user messaging and retryability.
func classify(err error) *domain.PaymentError {
	if herr := horizonclient.GetError(err); herr != nil {
		// A 404 from the endpoint itself almost always means a
		// misconfigured Horizon URL rather than a rejected transaction.
		if herr.Problem.Status == http.StatusNotFound {
			return &domain.PaymentError{
				Code:   domain.PaymentErrNetworkUnreachable,
				Detail: "horizon returned 404; check the configured horizon url",
			}
		}
		if codes, cerr := herr.ResultCodes(); cerr == nil {
			return classifyResultCodes(codes)
		}
		return &domain.PaymentError{Code: domain.PaymentErrUnknown, Detail: herr.Problem.Title}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &domain.PaymentError{Code: domain.PaymentErrNetworkUnreachable, Detail: urlErr.Error()}
	}

	return &domain.PaymentError{Code: domain.PaymentErrUnknown, Detail: err.Error()}
}

func classifyResultCodes(codes *hProtocol.TransactionResultCodes) *domain.PaymentError {
	ops := "no_op_code"
	if len(codes.OperationCodes) > 0 {
		ops = strings.Join(codes.OperationCodes, ", ")
	}
	detail := fmt.Sprintf("%s (%s)", codes.TransactionCode, ops)

	switch codes.TransactionCode {
	case "tx_insufficient_fee":
		return &domain.PaymentError{Code: domain.PaymentErrInsufficientNetworkFee, Detail: detail}
	case "tx_bad_seq":
		return &domain.PaymentError{Code: domain.PaymentErrSequenceConflict, Detail: detail}
	}

	for _, op := range codes.OperationCodes {
		switch op {
		case "op_underfunded":
			return &domain.PaymentError{Code: domain.PaymentErrSourceUnderfunded, Detail: detail}
		case "op_no_destination":
			return &domain.PaymentError{Code: domain.PaymentErrInvalidDestination, Detail: detail}
		}
	}

	return &domain.PaymentError{Code: domain.PaymentErrUnknown, Detail: detail}
}
