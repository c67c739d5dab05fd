package model

import (
	"time"

	"gorm.io/gorm"
)

// Session представляет сессию обработки потока кадров
type Session struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	CellSize int    `gorm:"not null" json:"cell_size"`

	// Общая статистика
	TotalFrames   int `gorm:"not null;default:0" json:"total_frames"`
	SkippedFrames int `gorm:"not null;default:0" json:"skipped_frames"`
	NoRoadFrames  int `gorm:"not null;default:0" json:"no_road_frames"`
	LastDecision  int `gorm:"not null;default:0" json:"last_decision"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Frames []FrameRecord `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"frames,omitempty"`
}

// FrameRecord результат обработки одного кадра
type FrameRecord struct {
	ID                 uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID          string  `gorm:"type:varchar(36);not null;index" json:"session_id"`
	FrameIndex         int     `gorm:"not null" json:"frame_index"`
	Topology           uint8   `gorm:"not null" json:"topology"`
	Offset             float64 `gorm:"not null" json:"offset"`
	EdgeFraction       float64 `gorm:"not null" json:"edge_fraction"`
	BoundaryEdgePixels int     `gorm:"not null" json:"boundary_edge_pixels"`
	Decision           int     `gorm:"not null" json:"decision"`
	Pos                float64 `gorm:"not null" json:"pos"`
	PosDifAvg          float64 `gorm:"not null" json:"pos_dif_avg"`
	Dominant           uint8   `gorm:"not null" json:"dominant"`
	NoRoad             bool    `gorm:"not null" json:"no_road"`
	Skipped            bool    `gorm:"not null" json:"skipped"`
	DurationMicros     int64   `gorm:"not null" json:"duration_us"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName указывает имя таблицы для Session
func (Session) TableName() string {
	return "sessions"
}

// TableName указывает имя таблицы для FrameRecord
func (FrameRecord) TableName() string {
	return "frames"
}
