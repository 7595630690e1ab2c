package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/service"
)

type createExercisePayload struct {
	ExerciseData map[string]any `json:"exercise_data" binding:"required"`
}

type exercisePatchPayload struct {
	UserResponse     map[string]any     `json:"user_response"`
	Correct          *bool              `json:"correct"`
	TimeTakenSeconds *int               `json:"time_taken_seconds" binding:"omitempty,min=0"`
	Feedback         *string            `json:"feedback"`
	Errors           []db.ExerciseError `json:"errors"`
}

// CreateExercise 在指定练习会话下登记一条练习题目记录
func (a *API) CreateExercise(c *gin.Context) {
	user := currentUser(c)
	sessionID := c.Param("sessionId")

	var payload createExercisePayload
	if !bindJSON(c, &payload, "题目数据不能为空") {
		return
	}

	record, err := a.exercises.Create(user.ID, service.ExerciseInput{
		SessionPublicID: sessionID,
		ExerciseData:    payload.ExerciseData,
	})
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			respondError(c, http.StatusNotFound, "练习会话不存在")
			return
		}
		respondUpstreamError(c, http.StatusInternalServerError, "创建练习记录失败", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "exercise": serializeExercise(*record)})
}

// PatchExercise 回填练习题目的作答结果
func (a *API) PatchExercise(c *gin.Context) {
	user := currentUser(c)

	exerciseID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的练习记录ID")
		return
	}

	var payload exercisePatchPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	record, err := a.exercises.Patch(user.ID, exerciseID, service.ExercisePatch{
		UserResponse:     payload.UserResponse,
		Correct:          payload.Correct,
		TimeTakenSeconds: payload.TimeTakenSeconds,
		Feedback:         payload.Feedback,
		Errors:           payload.Errors,
	})
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			respondError(c, http.StatusNotFound, "练习记录不存在")
			return
		}
		respondUpstreamError(c, http.StatusInternalServerError, "更新练习记录失败", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "exercise": serializeExercise(*record)})
}

func serializeExercise(record db.ExerciseHistory) gin.H {
	payload := gin.H{
		"id":            record.ID,
		"session_id":    record.PracticeSessionID,
		"exercise_data": record.ExerciseData.Data(),
		"attempts":      record.Attempts,
		"feedback":      record.Feedback,
		"created_at":    record.CreatedAt.Format(time.RFC3339),
	}
	if record.Correct != nil {
		payload["correct"] = *record.Correct
	}
	if record.TimeTakenSeconds != nil {
		payload["time_taken_seconds"] = *record.TimeTakenSeconds
	}
	if response := record.UserResponse.Data(); response != nil {
		payload["user_response"] = response
	}
	if errs := record.Errors.Data(); len(errs) > 0 {
		payload["errors"] = errs
	}
	return payload
}
