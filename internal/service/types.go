package service

import (
	"road-topology-go/internal/model"
	"road-topology-go/internal/pipeline"
	"road-topology-go/internal/temporal"
	"road-topology-go/internal/topology"
	"road-topology-go/pkg/models"
)

// frameRecord переводит результат кадра в запись базы данных
func frameRecord(sessionID string, r pipeline.FrameResult) *model.FrameRecord {
	return &model.FrameRecord{
		SessionID:          sessionID,
		FrameIndex:         r.Index,
		Topology:           uint8(r.Sample.Topology),
		Offset:             r.Sample.Offset,
		EdgeFraction:       r.EdgeFraction,
		BoundaryEdgePixels: r.BoundaryEdgePixels,
		Decision:           int(r.Decision),
		Pos:                r.Pos,
		PosDifAvg:          r.PosDifAvg,
		Dominant:           uint8(r.Dominant),
		NoRoad:             r.NoRoad,
		Skipped:            r.Skipped,
		DurationMicros:     r.Duration.Microseconds(),
	}
}

// frameToResponse переводит запись кадра в ответ API
func frameToResponse(f *model.FrameRecord) models.FrameResponse {
	return models.FrameResponse{
		Index:              f.FrameIndex,
		Topology:           f.Topology,
		TopologyName:       topology.Mask(f.Topology).String(),
		Offset:             f.Offset,
		EdgeFraction:       f.EdgeFraction,
		BoundaryEdgePixels: f.BoundaryEdgePixels,
		NoRoad:             f.NoRoad,
		Skipped:            f.Skipped,
		Decision:           f.Decision,
		DecisionName:       temporal.Decision(f.Decision).String(),
		Pos:                f.Pos,
		PosDifAvg:          f.PosDifAvg,
		Dominant:           f.Dominant,
		DurationMicros:     f.DurationMicros,
	}
}

// sessionToResponse переводит сессию в ответ API без агрегатов по кадрам
func sessionToResponse(s *model.Session) models.SessionResponse {
	return models.SessionResponse{
		ID:       s.ID,
		Name:     s.Name,
		CellSize: s.CellSize,
		Stats: models.SessionStats{
			TotalFrames:   s.TotalFrames,
			SkippedFrames: s.SkippedFrames,
			NoRoadFrames:  s.NoRoadFrames,
			LastDecision:  s.LastDecision,
		},
		CreatedAt: s.CreatedAt,
	}
}
