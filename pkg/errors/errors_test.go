package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// generateErrorFixtures creates test fixtures with sample metadata for each error type
func generateErrorFixtures() []Error {
	return []Error{
		INTERNAL_ERROR.New("something went wrong").
			WithMetadata(map[string]any{
				"component": "database",
				"operation": "upsert",
			}),

		INVALID_INPUT.New("amount must be greater than zero").
			WithMetadata(AmountMetadata{Amount: 0}),

		POLICY_VIOLATION.New("account is blacklisted").
			WithMetadata(RecipientMetadata{
				Recipient: "0x2546bcd3c84621e976d8185a91a922ae77ecec30",
			}),

		INSUFFICIENT_QUOTA.New("quota exhausted").
			WithMetadata(QuotaMetadata{
				Token:     "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",
				Requested: 1_000_000_000,
				Available: 250_000_000,
			}),

		INSUFFICIENT_FUNDS.New("vault reserve too low").
			WithMetadata(FundsMetadata{
				Token:     "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599",
				Requested: "980000000",
				Available: "100000000",
			}),

		INVALID_DELAY.New("principal delay out of bounds").
			WithMetadata(DelayMetadata{Delay: 2592100}),

		NOT_YET_ELIGIBLE.New("redeem delay not elapsed").
			WithMetadata(RedeemMetadata{
				Recipient: "0x2546bcd3c84621e976d8185a91a922ae77ecec30",
				Index:     0,
			}),

		UNAUTHORIZED.New("caller is not an operator").
			WithMetadata(RoleMetadata{Required: "operator"}),

		TOKEN_NOT_ALLOWED.New("token not on wrapped-asset list").
			WithMetadata(TokenMetadata{
				Token: "0x0000000000000000000000000000000000000001",
			}),
	}
}

func TestErrorCodes(t *testing.T) {
	for _, err := range generateErrorFixtures() {
		t.Run(err.CodeName(), func(t *testing.T) {
			require.NotEmpty(t, err.CodeName())
			require.NotEmpty(t, err.Error())
			require.GreaterOrEqual(t, err.HttpStatus(), 400)
			require.NotNil(t, err.Metadata())
		})
	}
}

func TestStableIdentifiers(t *testing.T) {
	require.Equal(t, "USR009", POLICY_VIOLATION.Name)
	require.Equal(t, "USR010", INSUFFICIENT_QUOTA.Name)
	require.Equal(t, "USR012", INVALID_DELAY.Name)
	require.Equal(t, "SYS003", TOKEN_NOT_ALLOWED.Name)
	require.Equal(t, http.StatusForbidden, POLICY_VIOLATION.HttpStatus)
}

func TestMetadataConversion(t *testing.T) {
	err := INSUFFICIENT_QUOTA.New("quota exhausted").WithMetadata(QuotaMetadata{
		Token:     "0xabc",
		Requested: 42,
		Available: 7,
	})

	metadata := err.Metadata()
	require.Equal(t, "0xabc", metadata["token"])
	require.Equal(t, "42", metadata["requested"])
	require.Equal(t, "7", metadata["available"])
}

func TestErrorsAs(t *testing.T) {
	var typed Error
	wrapped := fmt.Errorf("handler: %w", POLICY_VIOLATION.New("blocked"))
	require.True(t, errors.As(wrapped, &typed))
	require.Equal(t, "USR009", typed.CodeName())
}
