package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/limbo/questlog/internal/leveling"
	"github.com/limbo/questlog/internal/projection"
	"github.com/limbo/questlog/internal/service"
	"github.com/limbo/questlog/pkg/entity"
	"github.com/limbo/questlog/pkg/httputil"
)

const dateLayout = "2006-01-02"

type CreateQuestRequest struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Goal             string  `json:"goal"`
	DueDate          *string `json:"due_date"`
	ExperienceReward int     `json:"xp_reward"`
	Priority         int     `json:"priority"`
}

type UpdateQuestRequest struct {
	Name             *string `json:"name"`
	Category         *string `json:"category"`
	Goal             *string `json:"goal"`
	DueDate          *string `json:"due_date"`
	ClearDueDate     bool    `json:"clear_due_date"`
	ExperienceReward *int    `json:"xp_reward"`
	Priority         *int    `json:"priority"`
	Progress         *int    `json:"progress"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type ProgressionResponse struct {
	Progression           *entity.UserProgression `json:"progression"`
	ExperienceToNextLevel int                     `json:"xp_to_next_level"`
}

func (s *Server) CreateQuest(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create quest error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateQuestRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create quest error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		logger.Error("create quest error: invalid due date")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid due date, expected YYYY-MM-DD", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	quest, err := s.questsService.CreateQuest(ctx, uid, service.CreateQuestRequest{
		Name:             req.Name,
		Category:         req.Category,
		Goal:             req.Goal,
		DueDate:          due,
		ExperienceReward: req.ExperienceReward,
		Priority:         req.Priority,
	}, time.Now())
	if err != nil {
		writeServiceError(w, logger, "create quest", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, quest)
	logger.Info("quest created")
}

func (s *Server) GetQuests(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get quests error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	quests, err := s.questsService.Snapshot(ctx, uid, time.Now())
	if err != nil {
		writeServiceError(w, logger, "get quests", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, quests)
	logger.Info("quests provided")
}

func (s *Server) UpdateQuest(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update quest error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update quest error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid quest id in path value", nil)
		return
	}
	var req UpdateQuestRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update quest error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		logger.Error("update quest error: invalid due date")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid due date, expected YYYY-MM-DD", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	quest, err := s.questsService.UpdateQuest(ctx, uid, id, service.UpdateQuestRequest{
		Name:             req.Name,
		Category:         req.Category,
		Goal:             req.Goal,
		DueDate:          due,
		ClearDueDate:     req.ClearDueDate,
		ExperienceReward: req.ExperienceReward,
		Priority:         req.Priority,
		Progress:         req.Progress,
	}, time.Now())
	if err != nil {
		writeServiceError(w, logger, "update quest", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, quest)
	logger.Info("quest updated")
}

func (s *Server) DeleteQuest(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("quest deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("quest deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid quest id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.questsService.DeleteQuest(ctx, uid, id)
	if err != nil {
		writeServiceError(w, logger, "quest deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusNoContent, nil)
	logger.Info("quest deleted")
}

func (s *Server) ChangeQuestStatus(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("change status error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("change status error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid quest id in path value", nil)
		return
	}
	var req ChangeStatusRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("change status error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	quest, err := s.questsService.ChangeStatus(ctx, uid, id, entity.Status(req.Status), time.Now())
	if err != nil {
		writeServiceError(w, logger, "change status", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, quest)
	logger.Info("quest status changed", slog.String("status", req.Status))
}

func (s *Server) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create subtask error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	questID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("create subtask error: invalid quest id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid quest id in path value", nil)
		return
	}
	var req CreateQuestRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create subtask error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		logger.Error("create subtask error: invalid due date")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid due date, expected YYYY-MM-DD", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	sub, err := s.questsService.AddSubtask(ctx, uid, questID, service.CreateSubtaskRequest{
		Name:             req.Name,
		Category:         req.Category,
		Goal:             req.Goal,
		DueDate:          due,
		ExperienceReward: req.ExperienceReward,
		Priority:         req.Priority,
	}, time.Now())
	if err != nil {
		writeServiceError(w, logger, "create subtask", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, sub)
	logger.Info("subtask created")
}

func (s *Server) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update subtask error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	questID, subtaskID, err := parseSubtaskPath(r)
	if err != nil {
		logger.Error("update subtask error: invalid ids in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid ids in path value", nil)
		return
	}
	var req UpdateQuestRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update subtask error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		logger.Error("update subtask error: invalid due date")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid due date, expected YYYY-MM-DD", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	sub, err := s.questsService.UpdateSubtask(ctx, uid, questID, subtaskID, service.UpdateSubtaskRequest{
		Name:             req.Name,
		Category:         req.Category,
		Goal:             req.Goal,
		DueDate:          due,
		ClearDueDate:     req.ClearDueDate,
		ExperienceReward: req.ExperienceReward,
		Priority:         req.Priority,
		Progress:         req.Progress,
	}, time.Now())
	if err != nil {
		writeServiceError(w, logger, "update subtask", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, sub)
	logger.Info("subtask updated")
}

func (s *Server) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("subtask deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	questID, subtaskID, err := parseSubtaskPath(r)
	if err != nil {
		logger.Error("subtask deletion error: invalid ids in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid ids in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.questsService.DeleteSubtask(ctx, uid, questID, subtaskID)
	if err != nil {
		writeServiceError(w, logger, "subtask deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusNoContent, nil)
	logger.Info("subtask deleted")
}

func (s *Server) ChangeSubtaskStatus(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("change subtask status error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	questID, subtaskID, err := parseSubtaskPath(r)
	if err != nil {
		logger.Error("change subtask status error: invalid ids in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid ids in path value", nil)
		return
	}
	var req ChangeStatusRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("change subtask status error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	sub, err := s.questsService.ChangeSubtaskStatus(ctx, uid, questID, subtaskID, entity.Status(req.Status), time.Now())
	if err != nil {
		writeServiceError(w, logger, "change subtask status", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, sub)
	logger.Info("subtask status changed", slog.String("status", req.Status))
}

func (s *Server) BoardView(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("board view error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	quests, err := s.questsService.Snapshot(ctx, uid, time.Now())
	if err != nil {
		writeServiceError(w, logger, "board view", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, projection.ProjectBoard(quests))
	logger.Info("board view provided")
}

func (s *Server) ListView(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("list view error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	quests, err := s.questsService.Snapshot(ctx, uid, time.Now())
	if err != nil {
		writeServiceError(w, logger, "list view", err)
		return
	}
	opts := projection.ListOptions{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("q"),
		Sort:   projection.SortKey(r.URL.Query().Get("sort")),
	}
	httputil.WriteJSONResponse(w, http.StatusOK, projection.ProjectList(quests, opts))
	logger.Info("list view provided")
}

func (s *Server) CalendarView(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("calendar view error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	now := time.Now()
	viewedMonth := now
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		viewedMonth, err = time.Parse("2006-01", monthParam)
		if err != nil {
			logger.Error("calendar view error: invalid month param")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid month, expected YYYY-MM", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	quests, err := s.questsService.Snapshot(ctx, uid, now)
	if err != nil {
		writeServiceError(w, logger, "calendar view", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, projection.ProjectCalendar(quests, viewedMonth, now))
	logger.Info("calendar view provided")
}

func (s *Server) GetProgression(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get progression error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	p, err := s.progressionService.Get(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "get progression", err)
		return
	}
	toNext, err := leveling.ExperienceToNextLevel(p.TotalExperience)
	if err != nil {
		writeServiceError(w, logger, "get progression", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, ProgressionResponse{
		Progression:           p,
		ExperienceToNextLevel: toNext,
	})
	logger.Info("progression provided")
}

func writeServiceError(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	status := httputil.StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(action+" error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, status, "internal error during "+action, nil)
		return
	}
	logger.Error(action+" error: "+err.Error(), slog.Int("status", status))
	httputil.WriteErrorResponse(w, status, err.Error(), nil)
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseSubtaskPath(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	questID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, err
	}
	subtaskID, err := uuid.Parse(r.PathValue("sid"))
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, err
	}
	return questID, subtaskID, nil
}
