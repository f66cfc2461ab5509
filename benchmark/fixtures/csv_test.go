package fixtures_test

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/fixtures"
)

func Test_ReadCSV_When_FileWasWrittenByWriteCSV_Then_RecordsAreEqual(t *testing.T) {
	// setup
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	generator := benchmark.NewGenerator(
		benchmark.WithRandSource(rand.NewPCG(7, 7)),
		benchmark.WithClock(func() time.Time { return fixedNow }),
	)
	records, err := generator.Generate(50)
	require.NoError(t, err)
	var buf bytes.Buffer

	// act
	require.NoError(t, fixtures.WriteCSV(&buf, records))
	readBack, err := fixtures.ReadCSV(&buf)

	// assert
	require.NoError(t, err)
	require.Len(t, readBack, len(records))
	for i := range records {
		assert.Equal(t, records[i].ID, readBack[i].ID)
		assert.Equal(t, records[i].Email, readBack[i].Email)
		assert.Equal(t, records[i].Age, readBack[i].Age)
		assert.True(t, records[i].CreatedAt.Equal(readBack[i].CreatedAt))
		assert.True(t, records[i].LastLogin.Equal(readBack[i].LastLogin))
		assert.Equal(t, records[i].Status, readBack[i].Status)
		assert.Equal(t, records[i].Country, readBack[i].Country)
	}
}

func Test_WriteCSV_When_NoRecordsAreGiven_Then_OnlyTheHeaderIsWritten(t *testing.T) {
	// setup
	var buf bytes.Buffer

	// act
	err := fixtures.WriteCSV(&buf, nil)

	// assert
	require.NoError(t, err)
	assert.Equal(t, strings.Join(fixtures.Header(), ",")+"\n", buf.String())
}

func Test_ReadCSV_When_InputIsBroken_Then_ErrorIsReturned(t *testing.T) {
	header := strings.Join(fixtures.Header(), ",") + "\n"

	testCases := []struct {
		name        string
		input       string
		expectedErr error
	}{
		{name: "empty input", input: "", expectedErr: fixtures.ErrMalformedHeader},
		{name: "wrong column", input: "id,name,mail,age,created_at,last_login,status,country\n", expectedErr: fixtures.ErrMalformedHeader},
		{
			name:        "bad uuid",
			input:       header + "nope,A,a@example.com,30,2025-01-01T00:00:00Z,2025-01-01T00:00:00Z,active,USA\n",
			expectedErr: fixtures.ErrMalformedRow,
		},
		{
			name:        "bad age",
			input:       header + "0197a1b2-0000-7000-8000-000000000001,A,a@example.com,old,2025-01-01T00:00:00Z,2025-01-01T00:00:00Z,active,USA\n",
			expectedErr: fixtures.ErrMalformedRow,
		},
		{
			name:        "missing column",
			input:       header + "0197a1b2-0000-7000-8000-000000000001,A,a@example.com,30\n",
			expectedErr: fixtures.ErrMalformedRow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := fixtures.ReadCSV(strings.NewReader(tc.input))

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
