// Package main provides the HTTP API server for the campus event map.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/eventmap/internal/auth"
	"github.com/campushub/eventmap/internal/config"
	"github.com/campushub/eventmap/internal/geo"
	"github.com/campushub/eventmap/internal/logger"
	"github.com/campushub/eventmap/internal/model"
	"github.com/campushub/eventmap/internal/repository"
	"github.com/campushub/eventmap/internal/service"
	"github.com/campushub/eventmap/internal/storage"
)

const (
	contentTypeJSON        = "Content-Type"
	applicationJSON        = "application/json"
	failedToEncodeResponse = "failed to encode response"
	userHeader             = "X-User-ID"
	maxImageBytes          = 8 << 20
	exitCode               = 1
)

// APIServer handles HTTP requests for the event lifecycle and the
// registration ledger.
type APIServer struct {
	eventService        service.EventService
	registrationService service.RegistrationService
	userRepo            repository.UserRepository
	session             *auth.Session
	campus              *geo.CampusConfig
	guard               *geo.Guard
}

// NewAPIServer creates a new API server instance.
func NewAPIServer(
	eventService service.EventService,
	registrationService service.RegistrationService,
	userRepo repository.UserRepository,
	session *auth.Session,
	campus *geo.CampusConfig,
) *APIServer {
	return &APIServer{
		eventService:        eventService,
		registrationService: registrationService,
		userRepo:            userRepo,
		session:             session,
		campus:              campus,
		guard:               campus.Guard(),
	}
}

// actor resolves the acting user from the X-User-ID header. The auth provider
// itself is an external collaborator; this server only does the role lookup.
func (s *APIServer) actor(r *http.Request) (*model.User, error) {
	uid := r.Header.Get(userHeader)
	if uid == "" {
		return nil, errors.New("missing " + userHeader + " header")
	}

	user, err := s.userRepo.GetByID(r.Context(), uid)
	if err != nil {
		return nil, err
	}

	s.session.SetUser(user)

	return user, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(contentTypeJSON, applicationJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, failedToEncodeResponse, http.StatusInternalServerError)
	}
}

// writeError maps the error taxonomy to status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		permErr    *model.PermissionError
		valErr     *model.ValidationError
		backendErr *model.BackendUnavailableError
	)

	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": valErr.Fields,
		})
		return
	case errors.As(err, &permErr):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrAlreadyRegistered):
		status = http.StatusConflict
	case errors.Is(err, model.ErrNotRegisterable), errors.Is(err, model.ErrImageLimit):
		status = http.StatusConflict
	case errors.Is(err, model.ErrEventNotFound), errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrConfirmationRequired):
		status = http.StatusPreconditionRequired
	case errors.As(err, &backendErr):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// CreateEvent handles POST /events.
func (s *APIServer) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, err := s.actor(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	var params model.EventParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	event, err := s.eventService.Create(r.Context(), actor, &params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events. With mine=1 it lists only the actor's own.
func (s *APIServer) ListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		events []*model.Event
		err    error
	)

	if r.URL.Query().Get("mine") == "1" {
		actor, actorErr := s.actor(r)
		if actorErr != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": actorErr.Error()})
			return
		}
		events, err = s.eventService.ListByOrganizer(r.Context(), actor)
	} else {
		events, err = s.eventService.List(r.Context())
	}

	if err != nil {
		writeError(w, err)
		return
	}

	if events == nil {
		events = []*model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/get?id=.
func (s *APIServer) GetEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	event, err := s.eventService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles POST /events/update?id=.
func (s *APIServer) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, err := s.actor(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	var params model.EventParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	event, err := s.eventService.Update(r.Context(), actor, id, &params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles POST /events/delete?id=. The body carries the
// confirmation acknowledgement from the destructive-action dialog.
func (s *APIServer) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, err := s.actor(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := s.eventService.Delete(r.Context(), actor, id, body.Confirmed); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AttachImage handles POST /events/image?id= with the raw image as body.
func (s *APIServer) AttachImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, err := s.actor(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		http.Error(w, "failed to read image body", http.StatusBadRequest)
		return
	}

	event, err := s.eventService.AttachImage(r.Context(), actor, id, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Register handles POST /registrations?event_id=.
func (s *APIServer) Register(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodGet:
		s.listRegistrations(w, r)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, err := s.actor(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		http.Error(w, "event_id parameter is required", http.StatusBadRequest)
		return
	}

	reg, err := s.registrationService.Register(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// listRegistrations serves GET /registrations?event_id= for the owning organizer.
func (s *APIServer) listRegistrations(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		http.Error(w, "event_id parameter is required", http.StatusBadRequest)
		return
	}

	regs, err := s.registrationService.ListByEvent(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	if regs == nil {
		regs = []*model.Registration{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// CancelRegistration handles POST /registrations/cancel?event_id=.
// Cancelling a non-existent registration succeeds.
func (s *APIServer) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, err := s.actor(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		http.Error(w, "event_id parameter is required", http.StatusBadRequest)
		return
	}

	if err := s.registrationService.Cancel(r.Context(), actor.UID, eventID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// InitialRegion handles GET /map/region, the viewport for first render.
func (s *APIServer) InitialRegion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.guard.InitialRegion())
}

// Campus handles GET /map/campus: the bounding rectangle, buffer factor and
// zoom range the map client configures itself with.
func (s *APIServer) Campus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.campus)
}

// HealthCheck handles GET /health endpoint for service health check.
func (*APIServer) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel, "api")
	slog.SetDefault(loggerInstance)

	campus, err := geo.LoadCampusConfig(cfg.CampusConfigPath)
	if err != nil {
		slog.Error("failed to load campus config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	dbPool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer dbPool.Close()

	if err := repository.RunMigration(context.Background(), dbPool, cfg.MigrationsPath); err != nil {
		slog.Error("failed to run migration", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	images, err := storage.NewLocalObjectStorage(cfg.ImageDir)
	if err != nil {
		slog.Error("failed to init image storage", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	userRepo := repository.NewUserRepositoryImpl(dbPool)
	eventRepo := repository.NewEventRepositoryImpl(dbPool)
	regRepo := repository.NewRegistrationRepositoryImpl(dbPool)
	reminderRepo := repository.NewReminderRepositoryImpl(dbPool)
	transactionMgr := repository.NewTransactionManagerImpl(dbPool)

	reminderService := service.NewReminderServiceImpl(reminderRepo)
	eventService := service.NewEventServiceImpl(eventRepo, images)
	registrationService := service.NewRegistrationServiceImpl(regRepo, eventRepo, reminderService, transactionMgr)

	session := auth.NewSession()
	defer session.Dispose()

	// Audit trail of session transitions; the actor lookup feeds this on
	// every authenticated request.
	unsubscribe := session.Subscribe(func(snap auth.Snapshot) {
		if snap.State != auth.StateAuthenticated || snap.User == nil {
			return
		}
		slog.Debug("session user resolved",
			slog.String("uid", snap.User.UID),
			slog.String("role", string(snap.User.Role)),
		)
	})
	defer unsubscribe()

	server := NewAPIServer(eventService, registrationService, userRepo, session, campus)

	http.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			server.ListEvents(w, r)
			return
		}
		server.CreateEvent(w, r)
	})
	http.HandleFunc("/events/get", server.GetEvent)
	http.HandleFunc("/events/update", server.UpdateEvent)
	http.HandleFunc("/events/delete", server.DeleteEvent)
	http.HandleFunc("/events/image", server.AttachImage)
	http.HandleFunc("/registrations", server.Register)
	http.HandleFunc("/registrations/cancel", server.CancelRegistration)
	http.HandleFunc("/map/region", server.InitialRegion)
	http.HandleFunc("/map/campus", server.Campus)
	http.HandleFunc("/health", server.HealthCheck)

	slog.Info("starting API server",
		slog.String("port", cfg.Port),
		slog.String("campus", campus.Name),
	)

	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		slog.Error("failed to start server", slog.String("error", err.Error()))
		return
	}
}
