package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibratorConstantInput(t *testing.T) {
	c := NewCalibrator(DefaultCalibrationTicks)

	for i := 1; i <= DefaultCalibrationTicks; i++ {
		require.False(t, c.Observe(100), "finished early at tick %d", i)
	}
	assert.True(t, c.Observe(100), "tick 101 should finish calibration")
	assert.Equal(t, int32(106), c.Floor())
	assert.Equal(t, uint32(101), c.Ticks())
}

func TestCalibratorFloorIgnoresOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for run := 0; run < 20; run++ {
		samples := make([]ADCValue, DefaultCalibrationTicks+1)
		var max int32
		for i := range samples {
			samples[i] = ADCValue(rng.Intn(4096))
			if int32(samples[i]) > max {
				max = int32(samples[i])
			}
		}

		want := max * 17 / 16
		for shuffle := 0; shuffle < 3; shuffle++ {
			rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })

			c := NewCalibrator(DefaultCalibrationTicks)
			var done bool
			for _, s := range samples {
				done = c.Observe(s)
			}
			require.True(t, done)
			assert.Equal(t, want, c.Floor())
			assert.Equal(t, max, c.Max())
		}
	}
}

func TestCalibratorReset(t *testing.T) {
	c := NewCalibrator(2)
	c.Observe(4000)
	c.Observe(4000)

	c.Reset()

	assert.Zero(t, c.Max())
	assert.Zero(t, c.Ticks())
	assert.False(t, c.Observe(16))
	assert.False(t, c.Observe(16))
	assert.True(t, c.Observe(16))
	assert.Equal(t, int32(17), c.Floor())
}
