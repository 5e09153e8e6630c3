package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircularFloat(t *testing.T) {
	assert := assert.New(t)

	cf := NewCircularFloat(6)
	assert.Equal(6, cf.BufSize)
	assert.Equal(0, cf.Count)

	cf.Add(0.1)
	cf.Add(0.2)
	cf.Add(0.3)
	cf.Add(0.4)
	cf.Add(0.5)
	assert.Equal(6, cf.BufSize)
	assert.Equal(5, cf.Count)
	assert.False(cf.Full())
	assert.Nil(cf.FirstHalf())
	assert.Nil(cf.SecondHalf())
	assert.Equal([]float64{0.1, 0.2, 0.3, 0.4, 0.5}, cf.Values())

	cf.Add(0.6)
	assert.Equal(6, cf.Count)
	assert.True(cf.Full())

	expVals := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	idx := 0
	for iter := cf.FirstHalf(); iter.Next(); {
		assert.Equal(expVals[idx], iter.Value())
		idx++
	}
	for iter := cf.SecondHalf(); iter.Next(); {
		assert.Equal(expVals[idx], iter.Value())
		idx++
	}
	assert.Equal(6, idx)

	// .1 .2 .3 .4 .5 .6 add .8 add .9 => .8 .9 .3 .4 .5 .6
	// So first=.3,.4,.5 second=.6,.8,.9
	cf.Add(0.8)
	cf.Add(0.9)
	expVals = []float64{0.3, 0.4, 0.5, 0.6, 0.8, 0.9}
	idx = 0
	for iter := cf.FirstHalf(); iter.Next(); {
		assert.Equal(expVals[idx], iter.Value())
		idx++
	}
	for iter := cf.SecondHalf(); iter.Next(); {
		assert.Equal(expVals[idx], iter.Value())
		idx++
	}
	assert.Equal(expVals, cf.Values())
	assert.Equal(int64(8), cf.TotalSeen)
}

func TestCircularFloatOddSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(4, NewCircularFloat(5).BufSize)
	assert.Equal(2, NewCircularFloat(1).BufSize)
	assert.Equal(2, NewCircularFloat(0).BufSize)
}
