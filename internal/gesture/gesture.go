// Package gesture synthesizes touch message sequences, for driving a
// trackpad without a browser.
package gesture

import (
	"context"
	"math/rand"
	"time"

	"kuldippatel.dev/dargo/internal/message"
)

const (
	minPointCount   = 2
	maxMoveDistance = 10
)

type Point struct {
	X, Y int32
}

// Path returns evenly spaced points from start towards end, at most
// maxMoveDistance apart on either axis. start is included, end is not.
func Path(start, end Point) []Point {
	dX := float32(end.X) - float32(start.X)
	dY := float32(end.Y) - float32(start.Y)

	xCount := i32Abs(int32(dX) / maxMoveDistance)
	yCount := i32Abs(int32(dY) / maxMoveDistance)
	count := i32Max(xCount, yCount)
	count = i32Max(count, minPointCount)

	stepX := dX / float32(count)
	stepY := dY / float32(count)

	points := make([]Point, 0, count)
	for i := int32(0); i < count; i++ {
		points = append(points, Point{
			X: int32(float32(start.X) + stepX*float32(i)),
			Y: int32(float32(start.Y) + stepY*float32(i)),
		})
	}
	return points
}

// Swipe moves Fingers contacts in a straight line From -> To. Extra fingers
// sit Spacing units to the right of the first one.
type Swipe struct {
	From, To Point
	Fingers  int
	Spacing  int32

	// Jitter shifts every intermediate point by up to this many units on
	// each axis.
	Jitter int32
}

// Messages renders the swipe as touch updates followed by one touch end.
// rng is only used when Jitter is set and may be nil otherwise.
func (s Swipe) Messages(rng *rand.Rand) []message.Message {
	fingers := s.Fingers
	if fingers < 1 {
		fingers = 1
	}

	frame := func(p Point) message.Message {
		touches := make([]message.Touch, fingers)
		for i := range touches {
			touches[i] = message.Touch{
				ID: int32(i),
				X:  float64(p.X + int32(i)*s.Spacing),
				Y:  float64(p.Y),
			}
		}
		return message.TouchUpdate{Touches: touches}
	}

	path := Path(s.From, s.To)
	msgs := make([]message.Message, 0, len(path)+3)

	msgs = append(msgs, frame(s.From))
	for _, p := range path {
		if s.Jitter > 0 && rng != nil {
			p.X += shift(rng, s.Jitter)
			p.Y += shift(rng, s.Jitter)
		}
		msgs = append(msgs, frame(p))
	}
	msgs = append(msgs, frame(s.To))

	ids := make([]int32, fingers)
	for i := range ids {
		ids[i] = int32(i)
	}
	return append(msgs, message.TouchEnd{IDs: ids})
}

// Processor consumes messages, usually a *trackpad.Engine.
type Processor interface {
	ProcessMessage(msg message.Message) error
}

// Play feeds msgs to p one per interval. It stops at the first error.
func Play(ctx context.Context, p Processor, msgs []message.Message, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i, msg := range msgs {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if err := p.ProcessMessage(msg); err != nil {
			return err
		}
	}
	return nil
}

// shift is in [-max, max].
func shift(rng *rand.Rand, max int32) int32 {
	return rng.Int31n(2*max+1) - max
}

func i32Abs(i int32) int32 {
	if i < 0 {
		return -i
	}
	return i
}

func i32Max(a int32, b int32) int32 {
	if a < b {
		return b
	}
	return a
}
