package simulator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/paysim/internal/domain"
)

func TestFailureInjector_Check(t *testing.T) {
	injector := NewFailureInjector(true)

	tests := []struct {
		name       string
		cardNumber string
		wantCode   string
	}{
		{"success card", CardSuccess, ""},
		{"generic decline", CardDeclined, "card_declined"},
		{"insufficient funds", CardInsufficientFunds, "insufficient_funds"},
		{"lost card", CardLost, "lost_card"},
		{"stolen card", CardStolen, "stolen_card"},
		{"processing error", CardProcessingError, "processing_error"},
		{"authentication required", CardAuthenticationRequired, "authentication_required"},
		{"unknown card", "4111111111111111", ""},
		{"empty card number", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := injector.Check(tt.cardNumber)
			if tt.wantCode == "" {
				assert.Nil(t, err)
			} else {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantCode, err.Code)
				assert.True(t, errors.Is(err, domain.ErrCardDeclined))
			}
		})
	}
}

func TestFailureInjector_CheckNormalizesSpaces(t *testing.T) {
	injector := NewFailureInjector(true)

	err := injector.Check("4000 0000 0000 0002")
	require.NotNil(t, err)
	assert.Equal(t, "card_declined", err.Code)
}

func TestFailureInjector_Disabled(t *testing.T) {
	injector := NewFailureInjector(false)

	assert.Nil(t, injector.Check(CardDeclined))
	assert.Nil(t, injector.Check(CardInsufficientFunds))
}

func TestFailureInjector_Classify(t *testing.T) {
	injector := NewFailureInjector(true)

	card, ok := injector.Classify(CardSuccess)
	require.True(t, ok)
	assert.False(t, card.Declines())

	card, ok = injector.Classify(CardStolen)
	require.True(t, ok)
	assert.True(t, card.Declines())
	assert.Equal(t, "Your card was declined because it was reported stolen.", card.Reason)

	_, ok = injector.Classify("1234")
	assert.False(t, ok)
}

func TestFailureInjector_CardsReturnsCopy(t *testing.T) {
	injector := NewFailureInjector(true)

	cards := injector.Cards()
	require.NotEmpty(t, cards)
	cards[0].Number = "mutated"

	fresh := injector.Cards()
	assert.Equal(t, CardSuccess, fresh[0].Number)
}
