package transport

import (
	"encoding/binary"
	"errors"
	"fmt"

	"road-topology-go/internal/command"
)

// PacketSize длина пакета: crc32 и три байта команды
const PacketSize = 7

// polynomial образующий многочлен CRC-32 в прямой (MSB-first) записи
const polynomial = 0x04C11DB7

// crcTable таблица прямого многочлена. Обновление при этом идет сдвигом вправо,
// как на стороне контроллера, поэтому сумма не совпадает с IEEE из hash/crc32.
var crcTable = makeTable(polynomial)

func makeTable(poly uint32) *[256]uint32 {
	var t [256]uint32
	for i := range t {
		c := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if c&0x80000000 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return &t
}

// Checksum контрольная сумма полезной нагрузки пакета
func Checksum(data []byte) uint32 {
	crc := ^uint32(0)
	for _, b := range data {
		crc = crc>>8 ^ crcTable[byte(crc)^b]
	}
	return ^crc
}

var (
	ErrShortPacket = errors.New("short packet")
	ErrChecksum    = errors.New("checksum mismatch")
)

// Encode упаковывает команду в пакет
func Encode(cmd command.Command) []byte {
	buf := make([]byte, PacketSize)
	buf[4] = byte(cmd.Thrust)
	buf[5] = byte(cmd.Steering)
	buf[6] = byte(cmd.Blink)
	binary.LittleEndian.PutUint32(buf[:4], Checksum(buf[4:]))
	return buf
}

// Decode проверяет контрольную сумму и распаковывает команду
func Decode(buf []byte) (command.Command, error) {
	if len(buf) < PacketSize {
		return command.Command{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(buf))
	}

	payload := buf[4:PacketSize]
	want := binary.LittleEndian.Uint32(buf[:4])
	if got := Checksum(payload); got != want {
		return command.Command{}, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, want)
	}

	return command.Command{
		Thrust:   int8(payload[0]),
		Steering: int8(payload[1]),
		Blink:    int8(payload[2]),
	}, nil
}
