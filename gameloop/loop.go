// Package gameloop runs the game on a fixed interval from a single goroutine.
package gameloop

import (
	"context"
	"sync"
	"time"

	"github.com/hoshinonyaruko/snake-in-browser/canvas"
	"github.com/hoshinonyaruko/snake-in-browser/logger"
	"github.com/hoshinonyaruko/snake-in-browser/network"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
	"github.com/sirupsen/logrus"
)

const keyQueueSize = 16

// Runner owns the game. Only the goroutine running Run (or a caller of
// Step when Run is not running) touches the game itself.
type Runner struct {
	game     *snake.Game
	renderer *canvas.Renderer
	hub      *network.Broadcaster
	interval time.Duration
	keys     chan snake.Key

	seq uint64

	mu     sync.RWMutex
	latest structs.Frame
}

func New(game *snake.Game, renderer *canvas.Renderer, hub *network.Broadcaster, interval time.Duration) *Runner {
	r := &Runner{
		game:     game,
		renderer: renderer,
		hub:      hub,
		interval: interval,
		keys:     make(chan snake.Key, keyQueueSize),
	}
	r.latest = r.frame()
	return r
}

// Press queues a key for the next pass of the loop. It never blocks and
// reports false when the queue is full.
func (r *Runner) Press(k snake.Key) bool {
	select {
	case r.keys <- k:
		return true
	default:
		return false
	}
}

// Run ticks until ctx is cancelled. Keys are applied between ticks.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Log.WithField("interval", r.interval).Info("game loop started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("game loop stopped")
			return ctx.Err()
		case k := <-r.keys:
			r.apply(k)
		case <-ticker.C:
			r.Step()
		}
	}
}

// Drain applies every queued key without blocking.
func (r *Runner) Drain() {
	for {
		select {
		case k := <-r.keys:
			r.apply(k)
		default:
			return
		}
	}
}

func (r *Runner) apply(k snake.Key) {
	wasRunning := r.game.Running()
	if !r.game.HandleKey(k) {
		return
	}
	if !wasRunning && r.game.Running() {
		logger.Log.Info("game reset")
	}
}

// Step runs one tick, renders the result and publishes it.
func (r *Runner) Step() structs.Frame {
	res := r.game.Tick()
	if res.Ate {
		logger.Log.WithField("score", r.game.Score()).Debug("food eaten")
	}
	if res.GameOver {
		logger.Log.WithFields(logrus.Fields{
			"score":  r.game.Score(),
			"length": len(r.game.Snapshot().Snake),
		}).Info("game over")
	}

	r.seq++
	f := r.frame()

	r.mu.Lock()
	r.latest = f
	r.mu.Unlock()

	if dropped := r.hub.Broadcast(f); dropped > 0 {
		logger.Log.WithField("dropped", dropped).Debug("slow subscribers skipped a frame")
	}
	return f
}

func (r *Runner) frame() structs.Frame {
	state := r.game.Snapshot()
	f := structs.Frame{Seq: r.seq, State: state}
	data, err := r.renderer.EncodePNG(state)
	if err != nil {
		logger.Log.WithError(err).Warn("render failed")
		return f
	}
	f.PNG = data
	return f
}

// Latest returns the most recently rendered frame.
func (r *Runner) Latest() structs.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Subscribe returns a channel receiving every published frame.
func (r *Runner) Subscribe() (int, <-chan structs.Frame) {
	return r.hub.Register()
}

func (r *Runner) Unsubscribe(id int) {
	r.hub.Unregister(id)
}
