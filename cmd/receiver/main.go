package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"road-topology-go/internal/command"
	"road-topology-go/internal/transport"

	"github.com/sirupsen/logrus"
)

// Приемник на стороне автомобиля: принимает пакеты команд и пишет изменения в лог
func main() {
	listen := flag.String("listen", "0.0.0.0:5005", "адрес UDP")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	receiver, err := transport.NewReceiver(*listen, logger)
	if err != nil {
		logger.Fatalf("Ошибка открытия UDP: %v", err)
	}
	logger.Infof("Прием команд на %s", receiver.Addr())

	var last command.Command
	first := true
	err = receiver.Listen(ctx, func(cmd command.Command) {
		if !first && cmd == last {
			return
		}
		first = false
		last = cmd
		logger.WithFields(logrus.Fields{
			"thrust":   cmd.Thrust,
			"steering": cmd.Steering,
			"blink":    cmd.Blink,
		}).Info("Новая команда")
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Ошибка приема: %v", err)
	}
}
