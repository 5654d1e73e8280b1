package repositories

import (
	"testing"

	"replydesk/domain"
	"replydesk/errors"

	"github.com/stretchr/testify/require"
)

func Test_Preference_DefaultsForUnknownOperator(t *testing.T) {
	req := require.New(t)
	repository := NewPreferenceRepository(openBadger(t))

	preference, err := repository.Get("morgan")
	req.NoError(err)
	req.Equal("morgan", preference.Operator)
	req.NotEmpty(preference.WritingStyle)
	req.NotEmpty(preference.Rules)
}

func Test_Preference_SaveRoundTrip(t *testing.T) {
	req := require.New(t)
	repository := NewPreferenceRepository(openBadger(t))

	preference := domain.DefaultPreference("morgan")
	preference.WritingStyle = "short and direct"
	preference.Interests = []string{"distributed systems"}
	req.NoError(repository.Save(preference))

	fetched, err := repository.Get("morgan")
	req.NoError(err)
	req.Equal("short and direct", fetched.WritingStyle)
	req.Equal([]string{"distributed systems"}, fetched.Interests)
	req.False(fetched.UpdatedAt.IsZero())
}

func Test_Operator_CreateAndFetch(t *testing.T) {
	req := require.New(t)
	repository := NewOperatorRepository(openBadger(t))

	id, err := repository.CreateOperator("morgan", "hashed-secret")
	req.NoError(err)
	req.NotEmpty(id)

	operator, err := repository.GetOperatorByName("morgan")
	req.NoError(err)
	req.Equal("morgan", operator.Name)
	req.Equal("hashed-secret", operator.PasswordHash)
	req.Equal([]string{"operator"}, operator.Roles)
}

func Test_Operator_DuplicateRejected(t *testing.T) {
	req := require.New(t)
	repository := NewOperatorRepository(openBadger(t))

	_, err := repository.CreateOperator("morgan", "hash-one")
	req.NoError(err)

	_, err = repository.CreateOperator("morgan", "hash-two")
	req.ErrorIs(err, errors.ErrOperatorExists)
}
