package models

import "time"

// CreateSessionRequest представляет запрос на создание сессии
type CreateSessionRequest struct {
	Name     string `json:"name" binding:"required"` // Имя сессии
	CellSize int    `json:"cell_size"`               // Размер клетки в пикселях, 0 означает значение по умолчанию
}

// SessionStats содержит статистику сессии
type SessionStats struct {
	TotalFrames      int     `json:"total_frames"`       // Принятые кадры
	SkippedFrames    int     `json:"skipped_frames"`     // Пропущенные кадры
	NoRoadFrames     int     `json:"no_road_frames"`     // Кадры без дороги
	MeanOffset       float64 `json:"mean_offset"`        // Среднее смещение по кадрам с дорогой
	MeanEdgeFraction float64 `json:"mean_edge_fraction"` // Средняя доля границ в полосе центра
	LastDecision     int     `json:"last_decision"`      // Последнее решение о поворотнике
}

// SessionResponse представляет сессию обработки
type SessionResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	CellSize  int          `json:"cell_size"`
	Stats     SessionStats `json:"stats"`
	CreatedAt time.Time    `json:"created_at"`
}

// ListSessionsResponse ответ со списком сессий
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}

// FrameResponse содержит результат обработки кадра
type FrameResponse struct {
	Index              int     `json:"index"`                 // Номер кадра в сессии
	Topology           uint8   `json:"topology"`              // Битовая маска топологии
	TopologyName       string  `json:"topology_name"`         // Имя топологии
	Offset             float64 `json:"offset"`                // Боковое смещение кадра
	EdgeFraction       float64 `json:"edge_fraction"`         // Доля границ в полосе центра
	BoundaryEdgePixels int     `json:"boundary_edge_pixels"`  // Пиксели границы на краю дороги
	NoRoad             bool    `json:"no_road"`               // Дорога не найдена
	Skipped            bool    `json:"skipped"`               // Кадр пропущен
	SkipReason         string  `json:"skip_reason,omitempty"` // Причина пропуска
	Decision           int     `json:"decision"`              // -1 влево, 0 нет, 1 вправо
	DecisionName       string  `json:"decision_name"`         // Имя решения
	Pos                float64 `json:"pos"`                   // Сглаженное смещение
	PosDifAvg          float64 `json:"pos_dif_avg"`           // Среднее изменение смещения
	Dominant           uint8   `json:"dominant"`              // Доминирующая топология
	DurationMicros     int64   `json:"duration_us"`           // Время обработки
}

// ListFramesResponse ответ со списком кадров
type ListFramesResponse struct {
	Frames []FrameResponse `json:"frames"`
	Total  int             `json:"total"`
}

// CommandRequest представляет ручную команду
type CommandRequest struct {
	Thrust   int8 `json:"thrust"`   // Тяга
	Steering int8 `json:"steering"` // Руль
	Blink    int8 `json:"blink"`    // Поворотник: -1, 0, 1
}

// CommandResponse представляет текущую команду
type CommandResponse struct {
	Thrust   int8 `json:"thrust"`
	Steering int8 `json:"steering"`
	Blink    int8 `json:"blink"`
	Manual   bool `json:"manual"` // Действует ли ручное управление
}

// HealthResponse представляет ответ проверки здоровья сервиса
type HealthResponse struct {
	Status   string `json:"status"`   // Статус сервиса (healthy/unhealthy)
	Database string `json:"database"` // Состояние базы данных
	Version  string `json:"version"`  // Версия сервиса
}
