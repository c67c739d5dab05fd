package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"road-topology-go/internal/command"

	"github.com/sirupsen/logrus"
)

// Receiver принимает пакеты команд по UDP
type Receiver struct {
	conn   *net.UDPConn
	logger *logrus.Logger
}

// NewReceiver открывает UDP сокет на адресе
func NewReceiver(address string, logger *logrus.Logger) (*Receiver, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP address: %w", err)
	}

	return &Receiver{conn: conn, logger: logger}, nil
}

// Addr адрес сокета
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Listen читает пакеты и передает команды в handle до отмены контекста.
// Пакеты с неверной контрольной суммой отбрасываются.
func (r *Receiver) Listen(ctx context.Context, handle func(command.Command)) error {
	defer r.conn.Close()

	buffer := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// дедлайн нужен, чтобы периодически проверять контекст
		_ = r.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))

		n, addr, err := r.conn.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			r.logger.Errorf("Ошибка чтения UDP: %v", err)
			continue
		}

		cmd, err := Decode(buffer[:n])
		if err != nil {
			r.logger.WithField("from", addr.String()).Warnf("Пакет отброшен: %v", err)
			continue
		}
		handle(cmd)
	}
}
