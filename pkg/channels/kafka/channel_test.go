package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokersFromEnv(t *testing.T) {
	t.Run("comma separated list", func(t *testing.T) {
		t.Setenv(brokersEnv, "kafka-1:9092,kafka-2:9092")

		brokers, err := brokersFromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, brokers)
	})

	t.Run("trailing comma and whitespace", func(t *testing.T) {
		t.Setenv(brokersEnv, " kafka-1:9092 ,")

		brokers, err := brokersFromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"kafka-1:9092"}, brokers)
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv(brokersEnv, "")

		_, err := brokersFromEnv()
		require.Error(t, err)
	})
}
