package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-in-browser/api"
	"github.com/hoshinonyaruko/snake-in-browser/canvas"
	"github.com/hoshinonyaruko/snake-in-browser/config"
	"github.com/hoshinonyaruko/snake-in-browser/gameloop"
	"github.com/hoshinonyaruko/snake-in-browser/logger"
	"github.com/hoshinonyaruko/snake-in-browser/memimg"
	"github.com/hoshinonyaruko/snake-in-browser/network"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/term"
	"github.com/sirupsen/logrus"
)

func main() {
	logger.Init()
	// Initialize the configuration
	cfg, err := config.LoadConfig("./config.json")
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load config")
	}
	EnsureFoldersExist(cfg.SkinDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 载入皮肤到内存，并检测热更新
	skins := memimg.NewStore(cfg.Blocksize - 2)
	if err := skins.Load(cfg.SkinDir); err != nil {
		logger.Log.WithError(err).Warn("failed to load skins, using plain squares")
	}
	go func() {
		if err := skins.Watch(ctx, cfg.SkinDir); err != nil {
			logger.Log.WithError(err).Warn("skin watcher stopped")
		}
	}()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	game := snake.New(snake.Options{
		TileCount:      cfg.TileCount,
		ScoreIncrement: cfg.ScoreIncrement,
	}, rand.New(rand.NewSource(seed)))

	hub := network.NewBroadcaster()
	defer hub.Close()
	loop := gameloop.New(game, canvas.New(cfg.Blocksize, cfg.ShowGrid, skins), hub, cfg.Interval())
	go loop.Run(ctx)

	logger.Log.WithFields(logrus.Fields{
		"ui":        cfg.UI,
		"tilecount": cfg.TileCount,
		"canvas":    cfg.CanvasSize(),
		"seed":      seed,
	}).Info("snake starting")

	if cfg.UI == "terminal" {
		if err := runTerminal(ctx, loop); err != nil {
			logger.Log.WithError(err).Fatal("terminal front end failed")
		}
		return
	}
	if err := runBrowser(ctx, loop, cfg.Port); err != nil {
		logger.Log.WithError(err).Fatal("http server failed")
	}
}

func runBrowser(ctx context.Context, loop *gameloop.Runner, port string) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: api.NewRouter(loop),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Log.Infof("open http://localhost:%s to play", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runTerminal(ctx context.Context, loop *gameloop.Runner) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// 终端模式下日志会弄乱画面
	logger.Log.SetOutput(os.Stderr)
	logger.Log.SetLevel(logrus.WarnLevel)
	return term.Run(ctx, screen, loop)
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			if err := os.MkdirAll(folder, 0755); err != nil {
				logger.Log.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			logger.Log.Debugf("Created %s directory", folder)
		}
	}
}
