package domain_test

import (
	"testing"

	"github.com/shopkit/fisrv-gateway/internal/checkout/domain"
)

func TestTransitionFor(t *testing.T) {
	cases := []struct {
		status   domain.TransactionStatus
		target   domain.OrderStatus
		markPaid bool
		apply    bool
	}{
		{domain.TxWaiting, domain.StatusOnHold, false, true},
		{domain.TxPartial, domain.StatusProcessing, false, true},
		{domain.TxApproved, domain.StatusCompleted, true, true},
		{domain.TxProcessingFailed, domain.StatusFailed, false, true},
		{domain.TxValidationFailed, domain.StatusFailed, false, true},
		{domain.TxDeclined, domain.StatusCancelled, false, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			got := domain.TransitionFor(tc.status)
			if !got.Apply {
				t.Fatalf("expected transition for %s to apply", tc.status)
			}
			if got.Target != tc.target {
				t.Errorf("target = %s, want %s", got.Target, tc.target)
			}
			if got.MarkPaid != tc.markPaid {
				t.Errorf("markPaid = %v, want %v", got.MarkPaid, tc.markPaid)
			}
		})
	}

	t.Run("unrecognized status never applies", func(t *testing.T) {
		got := domain.TransitionFor("SOMETHING_NEW")
		if got.Apply {
			t.Error("expected Apply to be false for unrecognized status")
		}
		if got.MarkPaid {
			t.Error("expected MarkPaid to be false for unrecognized status")
		}
	})

	t.Run("only approved marks the order paid", func(t *testing.T) {
		statuses := []domain.TransactionStatus{
			domain.TxWaiting, domain.TxPartial, domain.TxProcessingFailed,
			domain.TxValidationFailed, domain.TxDeclined,
		}
		for _, status := range statuses {
			if domain.TransitionFor(status).MarkPaid {
				t.Errorf("expected %s not to mark paid", status)
			}
		}
	})
}
