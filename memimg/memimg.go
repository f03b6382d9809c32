// 皮肤图片缓存在内存中，加速绘图
package memimg

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/hoshinonyaruko/snake-in-browser/logger"
	"github.com/sirupsen/logrus"
)

// 皮肤文件名
const (
	SkinFood = "food.png"
	SkinHead = "head.png"
	SkinBody = "body.png"
)

// Store 保存按格子大小缩放好的皮肤
type Store struct {
	size  int
	mu    sync.RWMutex
	skins map[string]image.Image
}

// NewStore 创建缓存，图片会被缩放为 size x size
func NewStore(size int) *Store {
	return &Store{size: size, skins: make(map[string]image.Image)}
}

// Load 载入目录下所有图片，目录不存在时不报错
func (s *Store) Load(directory string) error {
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isImage(path) {
			return nil
		}
		return s.loadFile(path)
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) loadFile(path string) error {
	img, err := loadImage(path, s.size)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.skins[filepath.Base(path)] = img
	s.mu.Unlock()
	return nil
}

func loadImage(path string, size int) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load skin %s: %w", path, err)
	}
	return imaging.Resize(img, size, size, imaging.Lanczos), nil
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// Watch 监听目录，图片变化时热更新到内存，直到 ctx 结束
func (s *Store) Watch(ctx context.Context, directory string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(directory); err != nil {
		return fmt.Errorf("watch %s: %w", directory, err)
	}

	log := logger.Log.WithFields(logrus.Fields{"component": "memimg", "dir": directory})
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isImage(event.Name) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				if err := s.loadFile(event.Name); err != nil {
					// 可能文件还没写完，等下一次写事件
					log.WithError(err).Debug("skin reload failed")
					continue
				}
				log.WithField("skin", filepath.Base(event.Name)).Info("skin reloaded")
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				s.mu.Lock()
				delete(s.skins, filepath.Base(event.Name))
				s.mu.Unlock()
				log.WithField("skin", filepath.Base(event.Name)).Info("skin removed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}

// GetSkin 从内存中取出皮肤
func (s *Store) GetSkin(name string) (image.Image, bool) {
	s.mu.RLock()
	img, exists := s.skins[name]
	s.mu.RUnlock()
	return img, exists
}
