package main

import (
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"road-topology-go/internal/client"

	"github.com/sirupsen/logrus"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "базовый адрес API")
	name := flag.String("name", "feeder", "имя сессии")
	cellSize := flag.Int("cell", 0, "размер клетки, 0 - значение сервера")
	interval := flag.Duration("interval", 0, "пауза между кадрами")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if flag.NArg() == 0 {
		logger.Fatal("Использование: feeder [флаги] <каталог или файлы масок>")
	}

	files, err := collectMasks(flag.Args())
	if err != nil {
		logger.Fatalf("Ошибка чтения списка масок: %v", err)
	}
	if len(files) == 0 {
		logger.Fatal("Маски не найдены")
	}

	api := client.NewDetectorAPIClient(*apiURL, time.Minute, logger)

	health, err := api.CheckHealth()
	if err != nil {
		logger.Fatalf("API недоступно: %v", err)
	}
	logger.Infof("API доступно, версия %s", health.Version)

	session, err := api.CreateSession(*name, *cellSize)
	if err != nil {
		logger.Fatalf("Ошибка создания сессии: %v", err)
	}
	logger.WithField("session", session.ID).Info("Сессия создана")

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Errorf("Ошибка чтения файла %s: %v", path, err)
			continue
		}

		frame, err := api.SendMask(session.ID, filepath.Base(path), data)
		if err != nil {
			logger.Errorf("Ошибка отправки кадра %s: %v", path, err)
			continue
		}

		logger.WithFields(logrus.Fields{
			"frame":    frame.Index,
			"topology": frame.TopologyName,
			"offset":   frame.Offset,
			"decision": frame.DecisionName,
			"skipped":  frame.Skipped,
		}).Info(filepath.Base(path))

		if *interval > 0 {
			time.Sleep(*interval)
		}
	}

	stats, err := api.GetSession(session.ID)
	if err != nil {
		logger.Fatalf("Ошибка получения статистики: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"frames":      stats.Stats.TotalFrames,
		"skipped":     stats.Stats.SkippedFrames,
		"no_road":     stats.Stats.NoRoadFrames,
		"mean_offset": stats.Stats.MeanOffset,
	}).Info("Обработка завершена")
}

// collectMasks раскрывает каталоги в отсортированный список файлов изображений
func collectMasks(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var dir []string
		for _, e := range entries {
			if e.IsDir() || !isMaskFile(e.Name()) {
				continue
			}
			dir = append(dir, filepath.Join(arg, e.Name()))
		}
		sort.Strings(dir)
		files = append(files, dir...)
	}
	return files, nil
}

func isMaskFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
