package edgemask

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	// форматы масок
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"road-topology-go/internal/tilemap"
)

// Threshold яркость, начиная с которой пиксель считается границей
const Threshold = 128

var ErrEmptyImage = errors.New("empty image")

// Decode читает изображение маски (PNG, BMP, TIFF) и возвращает бинарную маску границ.
// Размер проверяется по заголовку до распаковки пикселей: изображения площадью
// больше maxPixels отклоняются с tilemap.ErrTooLarge. Неположительный maxPixels
// означает tilemap.MaxPixels. Возвращает имя распознанного формата.
func Decode(r io.Reader, maxPixels int) (tilemap.EdgeMask, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return tilemap.EdgeMask{}, "", fmt.Errorf("failed to read mask: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return tilemap.EdgeMask{}, "", fmt.Errorf("failed to decode mask header: %w", err)
	}
	if err := tilemap.CheckSize(cfg.Width, cfg.Height, limit(maxPixels)); err != nil {
		return tilemap.EdgeMask{}, format, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return tilemap.EdgeMask{}, format, fmt.Errorf("failed to decode mask: %w", err)
	}

	mask, err := FromImage(img)
	if err != nil {
		return tilemap.EdgeMask{}, format, err
	}
	return mask, format, nil
}

func limit(maxPixels int) int {
	if maxPixels <= 0 || maxPixels > tilemap.MaxPixels {
		return tilemap.MaxPixels
	}
	return maxPixels
}

// FromImage переводит изображение в маску по яркости
func FromImage(img image.Image) (tilemap.EdgeMask, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return tilemap.EdgeMask{}, ErrEmptyImage
	}

	mask := tilemap.NewEdgeMask(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := (y - b.Min.Y) * mask.Width
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if gray.Y >= Threshold {
				mask.Pix[row+x-b.Min.X] = 255
			}
		}
	}
	return mask, nil
}

// FromRaw строит маску из байтов построчно, ненулевой байт считается границей.
// Ограничение maxPixels работает так же, как в Decode.
func FromRaw(data []byte, width, height, maxPixels int) (tilemap.EdgeMask, error) {
	if width <= 0 || height <= 0 {
		return tilemap.EdgeMask{}, ErrEmptyImage
	}
	if err := tilemap.CheckSize(width, height, limit(maxPixels)); err != nil {
		return tilemap.EdgeMask{}, err
	}
	if len(data) != width*height {
		return tilemap.EdgeMask{}, fmt.Errorf("%w: got %d bytes for %dx%d", tilemap.ErrMaskSize, len(data), width, height)
	}

	mask := tilemap.NewEdgeMask(width, height)
	for i, v := range data {
		if v != 0 {
			mask.Pix[i] = 255
		}
	}
	return mask, nil
}
