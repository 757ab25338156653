package rules

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

var DiceSides = []int{4, 6, 8, 10, 12, 20, 100}

func ValidDice(sides int) bool {
	return slices.Contains(DiceSides, sides)
}

type Dice interface {
	// Roll returns a value in [1, sides].
	Roll(sides int) int
}

type randomDice struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomDice() *randomDice {
	return &randomDice{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (d *randomDice) Roll(sides int) int {
	if sides < 1 {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rnd.Intn(sides) + 1
}

// FixedDice replays its values in order, starting over when exhausted.
type FixedDice struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewFixedDice(values ...int) *FixedDice {
	return &FixedDice{values: values}
}

func (d *FixedDice) Roll(sides int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.values) == 0 {
		return 1
	}

	v := d.values[d.next%len(d.values)]
	d.next++
	if v > sides {
		return sides
	}
	return v
}
