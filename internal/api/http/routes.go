package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/statewise/internal/snapshot"
)

var validate = validator.New()

// Error texts the search page shows verbatim.
const (
	msgMissingState      = "Missing state"
	msgMissingWeatherKey = "Missing OPENWEATHER_API_KEY"
	msgMissingNPSKey     = "Missing NPS_API_KEY"
	msgMissingKeys       = "Missing OPENWEATHER_API_KEY or NPS_API_KEY in .env"
	msgWeatherFailed     = "Failed to fetch weather"
	msgActivitiesFailed  = "Failed to fetch activities"
	msgSnapshotFailed    = "Failed to fetch and save snapshot"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app. Routes are served both at
// the root and under /api, where the search page calls them.
func RegisterRoutes(app *fiber.App, service *snapshot.Service) {
	h := &handlers{service: service}

	for _, r := range []fiber.Router{app, app.Group("/api")} {
		r.Get("/weather", h.weather)
		r.Get("/activities", h.activities)
		r.Get("/snapshot", h.buildSnapshot)
		r.Get("/snapshots", h.listSnapshots)
		r.Get("/snapshots/:id", h.getSnapshot)
	}
}

type handlers struct {
	service *snapshot.Service
}

func (h *handlers) weather(c *fiber.Ctx) error {
	q, err := parseStateQuery(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgMissingState)
	}

	rec, err := h.service.FetchWeather(requestContext(c), q.State)
	if err != nil {
		return upstreamFailure(c, err, msgMissingWeatherKey, msgWeatherFailed)
	}
	return c.JSON(rec)
}

func (h *handlers) activities(c *fiber.Ctx) error {
	q, err := parseStateQuery(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgMissingState)
	}

	parks, err := h.service.FetchActivities(requestContext(c), q.State)
	if err != nil {
		return upstreamFailure(c, err, msgMissingNPSKey, msgActivitiesFailed)
	}
	return c.JSON(parks)
}

func (h *handlers) buildSnapshot(c *fiber.Ctx) error {
	q, err := parseStateQuery(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgMissingState)
	}

	result, err := h.service.BuildSnapshot(requestContext(c), q.State)
	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, snapshot.ErrMissingParameter):
		return errorJSON(c, fiber.StatusBadRequest, msgMissingState)
	case errors.Is(err, snapshot.ErrConfiguration):
		return errorJSON(c, fiber.StatusInternalServerError, msgMissingKeys)
	default:
		return errorJSON(c, fiber.StatusInternalServerError, msgSnapshotFailed)
	}
}

func (h *handlers) getSnapshot(c *fiber.Ctx) error {
	var p idParam
	if err := p.bind(c); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	snap, err := h.service.GetSnapshot(requestContext(c), p.ID)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Snapshot not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load snapshot")
	}

	return c.JSON(snapshotResponse{
		Snapshot: snap,
		View:     snapshot.NewView(snap),
	})
}

func (h *handlers) listSnapshots(c *fiber.Ctx) error {
	var q historyQuery
	if err := q.bind(c); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	list, err := h.service.ListSnapshots(requestContext(c), q.State, q.Limit)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list snapshots")
	}

	return c.JSON(fiber.Map{
		"state":     q.State,
		"limit":     q.Limit,
		"snapshots": list,
	})
}

type snapshotResponse struct {
	snapshot.Snapshot
	View snapshot.View `json:"view"`
}

// upstreamFailure maps a single-provider failure. Upstream statuses pass through.
func upstreamFailure(c *fiber.Ctx, err error, missingKeyMsg, failedMsg string) error {
	var upErr *snapshot.UpstreamError
	switch {
	case errors.Is(err, snapshot.ErrMissingParameter):
		return errorJSON(c, fiber.StatusBadRequest, msgMissingState)
	case errors.Is(err, snapshot.ErrConfiguration):
		return errorJSON(c, fiber.StatusInternalServerError, missingKeyMsg)
	case errors.As(err, &upErr):
		return errorJSON(c, upErr.Status, failedMsg)
	default:
		return errorJSON(c, fiber.StatusInternalServerError, failedMsg)
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// requestContext carries the request id into service logs.
func requestContext(c *fiber.Ctx) context.Context {
	return snapshot.WithRequestID(c.UserContext(), c.GetRespHeader(fiber.HeaderXRequestID))
}

// stateQuery holds the state query parameter shared by the lookup endpoints.
type stateQuery struct {
	State string `validate:"required"`
}

// Query values point into fasthttp's buffers; the state may be persisted, so copy it.
func parseStateQuery(c *fiber.Ctx) (stateQuery, error) {
	q := stateQuery{State: strings.TrimSpace(utils.CopyString(c.Query("state")))}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// historyQuery holds query parameters for the snapshot listing.
type historyQuery struct {
	State string
	Limit int `validate:"min=1,max=100"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.State = strings.TrimSpace(utils.CopyString(c.Query("state")))
	h.Limit = 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		h.Limit = n
	}
	if err := validate.Struct(h); err != nil {
		return errors.New("limit must be between 1 and 100")
	}
	return nil
}

type idParam struct {
	ID int64 `validate:"gt=0"`
}

func (p *idParam) bind(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errors.New("id must be an integer")
	}
	p.ID = id
	if err := validate.Struct(p); err != nil {
		return errors.New("id must be positive")
	}
	return nil
}
