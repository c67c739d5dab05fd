package command

import (
	"sync"

	"road-topology-go/internal/temporal"
)

// Command команда исполнительному устройству
type Command struct {
	Thrust   int8 `json:"thrust"`
	Steering int8 `json:"steering"`
	Blink    int8 `json:"blink"`
}

// Cell текущая команда, общая для конвейера и ручного управления.
// Пока действует ручная команда, решения конвейера не применяются.
type Cell struct {
	mu       sync.RWMutex
	current  Command
	manual   bool
	detected temporal.Decision
}

// NewCell создает ячейку с нулевой командой
func NewCell() *Cell {
	return &Cell{}
}

// Load возвращает текущую команду
func (c *Cell) Load() Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetBlink записывает решение о поворотнике
func (c *Cell) SetBlink(d temporal.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detected = d
	if !c.manual {
		c.current.Blink = int8(d)
	}
}

// Override включает ручную команду
func (c *Cell) Override(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.manual = true
	c.current = cmd
}

// Release отключает ручное управление, поворотник возвращается к последнему решению
func (c *Cell) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.manual = false
	c.current = Command{Blink: int8(c.detected)}
}

// Manual сообщает, действует ли ручная команда
func (c *Cell) Manual() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manual
}
