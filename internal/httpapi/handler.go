package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/UnknownOlympus/itinera/internal/itinerary"
	"github.com/UnknownOlympus/itinera/internal/models"
	"github.com/UnknownOlympus/itinera/internal/service"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

// Itinerary is the set of operations exposed over HTTP.
type Itinerary interface {
	Itinerary(ctx context.Context) ([]itinerary.Group, error)
	Watch(ctx context.Context) (*service.Feed, error)
	Detail(ctx context.Context, placeID string) (*service.Detail, error)
	AddPlace(ctx context.Context, placeID string) (models.Place, error)
	RemovePlace(ctx context.Context, placeID string) error
	SetVisited(ctx context.Context, placeID string, visited bool) (models.Place, error)
	SetSchedule(ctx context.Context, placeID string, schedule *time.Time) (models.Place, error)
	AddTask(ctx context.Context, placeID, description string) (models.Place, error)
	UpdateTask(ctx context.Context, placeID string, index int, description string, done bool) (models.Place, error)
	RemoveTask(ctx context.Context, placeID string, index int) (models.Place, error)
	Search(ctx context.Context, input string) ([]models.Prediction, error)
	Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (*models.Photo, error)
	Location() *time.Location
}

// Options configure the API handler.
type Options struct {
	AllowedOrigins  []string // CORS and websocket origins, "*" allows any
	ClientRateLimit float64  // Requests per second per client on provider backed endpoints
	Logger          *slog.Logger
}

// maxBodyBytes bounds request bodies; they only carry small JSON documents.
const maxBodyBytes = 1 << 16

// Handler serves the itinerary API.
type Handler struct {
	itinerary Itinerary
	limiter   *ClientLimiter
	upgrader  websocket.Upgrader
	log       *slog.Logger
}

// NewHandler builds the API router wrapped with CORS, logging and panic recovery.
func NewHandler(it Itinerary, opts Options) http.Handler {
	h := &Handler{
		itinerary: it,
		limiter:   NewClientLimiter(opts.ClientRateLimit, int(opts.ClientRateLimit)+1),
		log:       opts.Logger,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(opts.AllowedOrigins)}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/itinerary", h.getItinerary).Methods(http.MethodGet)
	api.HandleFunc("/itinerary/live", h.live).Methods(http.MethodGet)
	api.HandleFunc("/search", h.limiter.Limit(h.search)).Methods(http.MethodGet)

	place := api.PathPrefix("/places/{placeId}").Subrouter()
	place.HandleFunc("", h.limiter.Limit(h.getPlace)).Methods(http.MethodGet)
	place.HandleFunc("", h.limiter.Limit(h.addPlace)).Methods(http.MethodPost)
	place.HandleFunc("", h.removePlace).Methods(http.MethodDelete)
	place.HandleFunc("/visited", h.setVisited).Methods(http.MethodPut)
	place.HandleFunc("/schedule", h.setSchedule).Methods(http.MethodPut)
	place.HandleFunc("/tasks", h.addTask).Methods(http.MethodPost)
	place.HandleFunc("/tasks/{index:[0-9]+}", h.updateTask).Methods(http.MethodPut)
	place.HandleFunc("/tasks/{index:[0-9]+}", h.removeTask).Methods(http.MethodDelete)
	place.HandleFunc("/photos/{ref}", h.limiter.Limit(h.photo)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, ErrNotFound.Status, ErrNotFound)
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)

	return logging(opts.Logger)(recoverer(opts.Logger)(corsHandler))
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

func (h *Handler) getItinerary(w http.ResponseWriter, r *http.Request) {
	groups, err := h.itinerary.Itinerary(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.itinerary.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, predictions)
}

func (h *Handler) getPlace(w http.ResponseWriter, r *http.Request) {
	placeID := mux.Vars(r)["placeId"]

	detail, err := h.itinerary.Detail(r.Context(), placeID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if detail.Details != nil {
		details := *detail.Details
		details.Photos = slices.Clone(details.Photos)
		for i := range details.Photos {
			details.Photos[i].URL = photoURL(placeID, details.Photos[i].Reference)
		}
		detail.Details = &details
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) addPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.itinerary.AddPlace(r.Context(), mux.Vars(r)["placeId"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, place)
}

func (h *Handler) removePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.itinerary.RemovePlace(r.Context(), mux.Vars(r)["placeId"]); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type visitedRequest struct {
	Visited bool `json:"visited"`
}

func (h *Handler) setVisited(w http.ResponseWriter, r *http.Request) {
	var req visitedRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	place, err := h.itinerary.SetVisited(r.Context(), mux.Vars(r)["placeId"], req.Visited)
	h.respondPlace(w, r, place, err)
}

type scheduleRequest struct {
	Schedule *string `json:"schedule"` // datetime-local value, null or "" clears
}

func (h *Handler) setSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var schedule *time.Time
	if req.Schedule != nil {
		var err error
		if schedule, err = itinerary.ParseScheduleInput(*req.Schedule, h.itinerary.Location()); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}

	place, err := h.itinerary.SetSchedule(r.Context(), mux.Vars(r)["placeId"], schedule)
	h.respondPlace(w, r, place, err)
}

type taskRequest struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

func (h *Handler) addTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	place, err := h.itinerary.AddTask(r.Context(), mux.Vars(r)["placeId"], req.Description)
	h.respondPlace(w, r, place, err)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, r, h.log, ErrInvalidInput)
		return
	}

	var req taskRequest
	if err = decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	place, err := h.itinerary.UpdateTask(r.Context(), mux.Vars(r)["placeId"], index, req.Description, req.Done)
	h.respondPlace(w, r, place, err)
}

func (h *Handler) removeTask(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, r, h.log, ErrInvalidInput)
		return
	}

	place, err := h.itinerary.RemoveTask(r.Context(), mux.Vars(r)["placeId"], index)
	h.respondPlace(w, r, place, err)
}

func (h *Handler) photo(w http.ResponseWriter, r *http.Request) {
	maxWidth, err := queryUint(r, "maxWidth")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	maxHeight, err := queryUint(r, "maxHeight")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	photo, err := h.itinerary.Photo(r.Context(), mux.Vars(r)["ref"], maxWidth, maxHeight)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(photo.Data)
}

func (h *Handler) respondPlace(w http.ResponseWriter, r *http.Request, place models.Place, err error) {
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, place)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return NewAPIError(ErrInvalidInput.Code, ErrInvalidInput.Message, ErrInvalidInput.Status, err.Error())
	}

	return nil
}

func queryUint(r *http.Request, name string) (uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, NewAPIError(ErrInvalidInput.Code, ErrInvalidInput.Message, ErrInvalidInput.Status,
			fmt.Sprintf("%s must be a positive integer", name))
	}

	return uint(value), nil
}

func photoURL(placeID, ref string) string {
	query := url.Values{}
	query.Set("maxWidth", strconv.FormatUint(uint64(service.DefaultPhotoWidth), 10))
	query.Set("maxHeight", strconv.FormatUint(uint64(service.DefaultPhotoHeight), 10))

	return "/api/places/" + url.PathEscape(placeID) + "/photos/" + url.PathEscape(ref) + "?" + query.Encode()
}
