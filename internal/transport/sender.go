package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"road-topology-go/internal/command"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// Sender отправляет команду исполнительному устройству
type Sender interface {
	Send(cmd command.Command) error
	Close() error
}

// UDPSender шлет пакеты по UDP
type UDPSender struct {
	conn *net.UDPConn
}

// NewUDPSender создает отправителя на адрес host:port
func NewUDPSender(address string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP address: %w", err)
	}

	return &UDPSender{conn: conn}, nil
}

// Send отправляет один пакет
func (s *UDPSender) Send(cmd command.Command) error {
	_, err := s.conn.Write(Encode(cmd))
	return err
}

// Close закрывает сокет
func (s *UDPSender) Close() error {
	return s.conn.Close()
}

// SerialSender пишет пакеты в последовательный порт
type SerialSender struct {
	port serial.Port
}

// NewSerialSender открывает последовательный порт
func NewSerialSender(portName string, baudRate int) (*SerialSender, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialSender{port: port}, nil
}

// Send записывает один пакет
func (s *SerialSender) Send(cmd command.Command) error {
	_, err := s.port.Write(Encode(cmd))
	return err
}

// Close закрывает порт
func (s *SerialSender) Close() error {
	return s.port.Close()
}

// Publish отправляет текущую команду с заданным периодом до отмены контекста
func Publish(ctx context.Context, cell *command.Cell, sender Sender, interval time.Duration, logger *logrus.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.WithField("interval", interval).Info("Запуск отправки команд")

	var failures int
	for {
		select {
		case <-ctx.Done():
			logger.Info("Отправка команд остановлена")
			return ctx.Err()
		case <-ticker.C:
			if err := sender.Send(cell.Load()); err != nil {
				failures++
				// ошибки повторяются каждый тик, пишем только первую в серии
				if failures == 1 {
					logger.Errorf("Ошибка отправки команды: %v", err)
				}
				continue
			}
			if failures > 0 {
				logger.WithField("failures", failures).Info("Отправка команд восстановлена")
				failures = 0
			}
		}
	}
}
