package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeTickerFiresOnPeriod(t *testing.T) {
	start := time.Date(2025, 12, 2, 11, 0, 0, 0, time.UTC)
	fc := NewFake(start)
	tk := fc.NewTicker(time.Minute)

	fc.Advance(30 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("ticked before period elapsed")
	default:
	}

	fc.Advance(30 * time.Second)
	select {
	case got := <-tk.C():
		assert.Equal(t, start.Add(time.Minute), got)
	default:
		t.Fatal("expected a tick")
	}
}

func TestFakeTickerStop(t *testing.T) {
	fc := NewFake(time.Date(2025, 12, 2, 11, 0, 0, 0, time.UTC))
	tk := fc.NewTicker(time.Second)
	require.Equal(t, 1, fc.Tickers())

	tk.Stop()
	assert.Equal(t, 0, fc.Tickers())
	fc.Advance(time.Minute)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}
