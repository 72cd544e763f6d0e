package v1

import (
	"time"

	"github.com/rafael-ceotto/StormGuard/internal/models"
)

// DTOToPrediction converts the trigger request into the domain prediction.
func DTOToPrediction(dto DispatchPredictionRequest) *models.Prediction {
	return &models.Prediction{
		ID:           dto.PredictionID,
		DisasterType: models.DisasterType(dto.DisasterType),
		Probability:  dto.Probability,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		RadiusKM:     dto.RadiusKM,
		CreatedAt:    time.Now().UTC(),
	}
}

// ModelToCycleResultResponse converts the cycle aggregate for the wire.
func ModelToCycleResultResponse(result *models.CycleResult) *CycleResultResponse {
	errs := make([]DispatchErrorResponse, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = DispatchErrorResponse{UserID: e.UserID, Error: e.Error}
	}
	return &CycleResultResponse{
		Total:   result.Total,
		Sent:    result.Sent,
		Failed:  result.Failed,
		Skipped: result.Skipped,
		Errors:  errs,
	}
}

// ModelToAlertResponse converts a domain alert into the response DTO.
func ModelToAlertResponse(model *models.Alert) *AlertResponse {
	return &AlertResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		PredictionID: model.PredictionID,
		DisasterType: string(model.DisasterType),
		Title:        model.Title,
		Message:      model.Message,
		RiskLevel:    string(model.RiskLevel),
		RiskScore:    model.RiskScore,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		RadiusKM:     model.RadiusKM,
		Sent:         model.Sent,
		Read:         model.Read,
		Clicked:      model.Clicked,
		CreatedAt:    model.CreatedAt,
		SentAt:       model.SentAt,
		ReadAt:       model.ReadAt,
	}
}

// ModelsToAlertResponses converts a slice of alerts.
func ModelsToAlertResponses(alerts []*models.Alert) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = ModelToAlertResponse(alert)
	}
	return responses
}

// ModelToStatsResponse converts the stats aggregate.
func ModelToStatsResponse(stats *models.AlertStats) *AlertStatsResponse {
	byType := make(map[string]int, len(stats.ByType))
	for dt, count := range stats.ByType {
		byType[string(dt)] = count
	}
	return &AlertStatsResponse{
		TotalAlerts: stats.TotalAlerts,
		Sent:        stats.Sent,
		Read:        stats.Read,
		Clicked:     stats.Clicked,
		ByType:      byType,
	}
}
