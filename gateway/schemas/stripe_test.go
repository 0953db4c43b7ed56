package schemas

import (
	"testing"

	"github.com/stretchr/testify/require"

	"api-gateway/gateway/domain"
)

func TestLoadCreateCheckoutSession(t *testing.T) {
	r, err := LoadCreateCheckoutSession([]byte(`{"plan":"pro","success_url":"https://app/ok","cancel_url":"https://app/no","project_id":7}`))
	require.NoError(t, err)
	require.Equal(t, "pro", r.Plan)
	require.Equal(t, int64(7), r.ProjectID)

	_, err = LoadCreateCheckoutSession([]byte(`{"plan":"pro","success_url":"https://app/ok"}`))
	require.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = LoadCreateCheckoutSession([]byte(`{broken`))
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}
