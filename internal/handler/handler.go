// Package handler provides the HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/blocplan/blocplan/pkg/errors"
	"github.com/blocplan/blocplan/pkg/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation on it.
func decodeAndValidate(r *http.Request, dst interface{}) *apperrors.AppError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(err, apperrors.CodeValidation, "failed to parse request body")
	}
	if err := validate.Struct(dst); err != nil {
		appErr := apperrors.New(apperrors.CodeValidation, "request validation failed")
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				appErr = appErr.WithField(fe.Field(), fe.Tag())
			}
		}
		return appErr
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.GetHTTPStatus(err))

	body := map[string]interface{}{
		"error":   true,
		"code":    apperrors.GetCode(err),
		"message": err.Error(),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body["message"] = appErr.Message
		if appErr.Details != "" {
			body["details"] = appErr.Details
		}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
	}
	json.NewEncoder(w).Encode(body)
}

// AssignmentInput is one assignment in a validate or publish payload.
type AssignmentInput struct {
	ID      string `json:"id,omitempty" validate:"omitempty,uuid"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Period  string `json:"period" validate:"required,oneof=morning afternoon full_day"`
	RoomID  string `json:"room_id" validate:"required,uuid"`
	StaffID string `json:"staff_id" validate:"required,uuid"`
	Role    string `json:"role" validate:"required,oneof=supervisor secondary operator"`
}

func parseAssignments(sectorID uuid.UUID, inputs []AssignmentInput) ([]*model.Assignment, *apperrors.AppError) {
	out := make([]*model.Assignment, 0, len(inputs))
	for _, in := range inputs {
		roomID, err := uuid.Parse(in.RoomID)
		if err != nil {
			return nil, apperrors.InvalidInput("room_id", "invalid UUID: "+in.RoomID)
		}
		staffID, err := uuid.Parse(in.StaffID)
		if err != nil {
			return nil, apperrors.InvalidInput("staff_id", "invalid UUID: "+in.StaffID)
		}
		id := uuid.New()
		if in.ID != "" {
			if id, err = uuid.Parse(in.ID); err != nil {
				return nil, apperrors.InvalidInput("id", "invalid UUID: "+in.ID)
			}
		}
		out = append(out, &model.Assignment{
			BaseModel: model.BaseModel{ID: id},
			Slot: model.AssignmentSlot{
				Date:     in.Date,
				Period:   model.Period(in.Period),
				RoomID:   roomID,
				SectorID: sectorID,
			},
			StaffID: staffID,
			Role:    model.AssignmentRole(in.Role),
		})
	}
	return out, nil
}
