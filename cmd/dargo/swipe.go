package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kuldippatel.dev/dargo/internal/gesture"
	"kuldippatel.dev/dargo/internal/trackpad"
	"kuldippatel.dev/dargo/internal/uinput"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Create a trackpad and play a swipe on it",
	Args:  cobra.NoArgs,
	RunE:  executeSwipe,
}

var (
	swipeWidth, swipeHeight int32
	swipeResolution         int32
	swipeFrom, swipeTo      []int32
	swipeFingers            int
	swipeSpacing            int32
	swipeJitter             int32
	swipeInterval           time.Duration
	swipeSettle             time.Duration
)

func init() {
	swipeCmd.Flags().Int32Var(&swipeWidth, "width", 1000, "Surface width")
	swipeCmd.Flags().Int32Var(&swipeHeight, "height", 600, "Surface height")
	swipeCmd.Flags().Int32Var(&swipeResolution, "resolution", 10, "Units per mm")
	swipeCmd.Flags().Int32SliceVar(&swipeFrom, "from", []int32{500, 450}, "Start point x,y")
	swipeCmd.Flags().Int32SliceVar(&swipeTo, "to", []int32{500, 150}, "End point x,y")
	swipeCmd.Flags().IntVar(&swipeFingers, "fingers", 2, "Number of contacts")
	swipeCmd.Flags().Int32Var(&swipeSpacing, "spacing", 80, "Distance between contacts")
	swipeCmd.Flags().Int32Var(&swipeJitter, "jitter", 0, "Random shift per step")
	swipeCmd.Flags().DurationVar(&swipeInterval, "interval", 8*time.Millisecond, "Delay between frames")
	swipeCmd.Flags().DurationVar(&swipeSettle, "settle", 3*time.Second, "Wait for the compositor to pick up the device")
}

func point(v []int32) (gesture.Point, error) {
	if len(v) != 2 {
		return gesture.Point{}, errPointArgs
	}
	return gesture.Point{X: v[0], Y: v[1]}, nil
}

func executeSwipe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	from, err := point(swipeFrom)
	if err != nil {
		return err
	}
	to, err := point(swipeTo)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []trackpad.Option{trackpad.WithLogger(log)}
	if cfg.Extended {
		opts = append(opts, trackpad.WithExtendedReporting())
	}

	engine, err := trackpad.New(uinput.NewRegistrar(cfg.DeviceName), trackpad.Geometry{
		Width:      swipeWidth,
		Height:     swipeHeight,
		Resolution: swipeResolution,
	}, opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	log.Infow("trackpad created, waiting", "settle", swipeSettle)
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(swipeSettle):
	}

	msgs := gesture.Swipe{
		From:    from,
		To:      to,
		Fingers: swipeFingers,
		Spacing: swipeSpacing,
		Jitter:  swipeJitter,
	}.Messages(rand.New(rand.NewSource(time.Now().UnixNano())))

	log.Infow("swiping", "from", from, "to", to, "fingers", swipeFingers, "frames", len(msgs))
	if err := gesture.Play(ctx, engine, msgs, swipeInterval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

var errPointArgs = errors.New("a point is two numbers: x,y")
